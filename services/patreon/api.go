package patreon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	apiHostFlag    = "patreon-api-host"
	apiPortFlag    = "patreon-api-port"
	apiSecureFlag  = "patreon-api-secure"
	ApiTimeoutFlag = "patreon-api-timeout"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   apiHostFlag,
			Usage:  "patreon api host",
			EnvVar: "PATREON_API_HOST",
			Value:  "www.patreon.com",
		},
		cli.IntFlag{
			Name:   apiPortFlag,
			Usage:  "patreon api port",
			EnvVar: "PATREON_API_PORT",
			Value:  443,
		},
		cli.BoolTFlag{
			Name:   apiSecureFlag,
			Usage:  "patreon api secure (https)",
			EnvVar: "PATREON_API_SECURE",
		},
		cli.DurationFlag{
			Name:   ApiTimeoutFlag,
			Usage:  "patreon api request timeout",
			EnvVar: "PATREON_API_TIMEOUT",
			Value:  10 * time.Second,
		},
	)
}

// Credentials are the OAuth client credentials used for the token
// exchange.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Api struct {
	url string
	cl  *http.Client
}

func New(c *cli.Context, cl *http.Client) *Api {
	host := c.String(apiHostFlag)
	port := c.Int(apiPortFlag)
	secure := c.BoolT(apiSecureFlag)
	protocol := "http"
	if secure {
		protocol = "https"
	}
	u := fmt.Sprintf("%v://%v:%v", protocol, host, port)
	log.Infof("patreon api endpoint %v", u)
	return &Api{
		url: u,
		cl:  cl,
	}
}

// NewWithURL makes an Api against an explicit endpoint. Used by tests.
func NewWithURL(u string, cl *http.Client) *Api {
	return &Api{
		url: strings.TrimSuffix(u, "/"),
		cl:  cl,
	}
}

// ExchangeCode trades an OAuth authorization code for a bearer access
// token. Codes are single-use on the Patreon side, so exactly one exchange
// attempt is made per call and nothing is cached.
func (api *Api) ExchangeCode(ctx context.Context, code string, creds Credentials) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("redirect_uri", creds.RedirectURI)

	reqURL := fmt.Sprintf("%v/api/oauth2/token", api.url)

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := api.cl.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("token endpoint returned %v", resp.Status)
	}

	var tr TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if tr.AccessToken == "" {
		return "", errors.New("no access token in response")
	}
	return tr.AccessToken, nil
}

// GetIdentity fetches the caller's identity with entitled tiers and their
// campaign relationships side-loaded.
func (api *Api) GetIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	reqURL := fmt.Sprintf("%v/api/oauth2/v2/identity", api.url)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	q := req.URL.Query()
	q.Set("include", "memberships.currently_entitled_tiers.campaign")
	q.Set("fields[tier]", "title")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := api.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("identity endpoint returned %v", resp.Status)
	}

	var idn Identity
	if err := json.NewDecoder(resp.Body).Decode(&idn); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return &idn, nil
}

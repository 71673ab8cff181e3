package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/orla-io/patron-feed/services/common"
	"github.com/orla-io/patron-feed/services/config"
	"github.com/orla-io/patron-feed/services/patreon"
	"github.com/orla-io/patron-feed/services/tier"
)

const (
	tokenFailedMessage = "Token request failed"
	tierFailedMessage  = "Tier request failed"
)

type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code string, creds patreon.Credentials) (string, error)
}

type TierResolver interface {
	Resolve(ctx context.Context, accessToken string, campaignID string) (tier.Tier, error)
}

type Handler struct {
	api      TokenExchanger
	resolver TierResolver
	store    *config.Store
}

func RegisterHandler(r *gin.Engine, api TokenExchanger, resolver TierResolver, store *config.Store) {
	h := &Handler{
		api:      api,
		resolver: resolver,
		store:    store,
	}
	r.POST("/feed", h.post)
	r.POST("/api", h.post)
	r.GET("/feed", h.get)
}

// post runs the full pipeline: code -> access token -> tier -> configured
// output. Clients only ever see the fixed failure strings, details stay in
// the server log.
func (s *Handler) post(c *gin.Context) {
	code := extractCode(c)
	if code == "" {
		c.String(http.StatusBadRequest, "Bad request")
		return
	}
	cfg := s.store.Read()
	ctx := c.Request.Context()
	accessToken, err := s.api.ExchangeCode(ctx, code, cfg.Credentials())
	if err != nil {
		log.WithError(err).
			WithField("request_id", common.GetRequestID(c)).
			Error("token exchange failed")
		c.String(http.StatusUnauthorized, tokenFailedMessage)
		return
	}
	t, err := s.resolver.Resolve(ctx, accessToken, cfg.CampaignID)
	if err != nil {
		entry := log.WithError(err).WithField("request_id", common.GetRequestID(c))
		if errors.Is(err, tier.ErrNoMatch) {
			entry.Warn("no entitlement for campaign")
		} else {
			entry.Error("tier resolution failed")
		}
		c.String(http.StatusInternalServerError, tierFailedMessage)
		return
	}
	c.String(http.StatusOK, cfg.Output(t))
}

// get is the legacy variant: exchanges the code and echoes the access
// token as a JSON string.
func (s *Handler) get(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "Bad request")
		return
	}
	cfg := s.store.Read()
	accessToken, err := s.api.ExchangeCode(c.Request.Context(), code, cfg.Credentials())
	if err != nil {
		log.WithError(err).
			WithField("request_id", common.GetRequestID(c)).
			Error("token exchange failed")
		c.JSON(http.StatusOK, tokenFailedMessage)
		return
	}
	c.JSON(http.StatusOK, accessToken)
}

type codeRequest struct {
	Code string `json:"code"`
}

// extractCode accepts {"code": "..."}, a JSON string, or the raw code as
// the request body.
func extractCode(c *gin.Context) string {
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	var cr codeRequest
	if err := json.Unmarshal(b, &cr); err == nil && cr.Code != "" {
		return cr.Code
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err == nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(string(b))
}

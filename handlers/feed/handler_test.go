package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/orla-io/patron-feed/services/config"
	"github.com/orla-io/patron-feed/services/patreon"
	"github.com/orla-io/patron-feed/services/tier"
)

type mockExchanger struct {
	token string
	err   error
	codes []string
	creds []patreon.Credentials
}

func (m *mockExchanger) ExchangeCode(_ context.Context, code string, creds patreon.Credentials) (string, error) {
	m.codes = append(m.codes, code)
	m.creds = append(m.creds, creds)
	return m.token, m.err
}

type mockResolver struct {
	tier  tier.Tier
	err   error
	calls int
	token string
}

func (m *mockResolver) Resolve(_ context.Context, accessToken string, _ string) (tier.Tier, error) {
	m.calls++
	m.token = accessToken
	return m.tier, m.err
}

func testStore() *config.Store {
	return config.NewStore(&config.Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "https://example.com/callback",
		CampaignID:   "42",
		Outputs: &config.Outputs{
			Bronze: "bronze.mp3",
			Silver: "silver.mp3",
			Gold:   "gold.mp3",
		},
	})
}

func setup(api TokenExchanger, resolver TierResolver, store *config.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHandler(r, api, resolver, store)
	return r
}

func doPost(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	r.ServeHTTP(w, req)
	return w
}

func TestPost_TierOutputs(t *testing.T) {
	cases := []struct {
		tier tier.Tier
		want string
	}{
		{tier.Bronze, "bronze.mp3"},
		{tier.Silver, "silver.mp3"},
		{tier.Gold, "gold.mp3"},
	}
	for _, c := range cases {
		api := &mockExchanger{token: "tok"}
		res := &mockResolver{tier: c.tier}
		r := setup(api, res, testStore())

		w := doPost(r, "/feed", `{"code": "the-code"}`)
		if w.Code != http.StatusOK {
			t.Errorf("tier %v: status = %d, want 200", c.tier, w.Code)
		}
		if w.Body.String() != c.want {
			t.Errorf("tier %v: body = %q, want %q", c.tier, w.Body.String(), c.want)
		}
	}
}

func TestPost_ApiRoute(t *testing.T) {
	api := &mockExchanger{token: "tok"}
	res := &mockResolver{tier: tier.Gold}
	r := setup(api, res, testStore())

	w := doPost(r, "/api", `{"code": "the-code"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "gold.mp3" {
		t.Errorf("body = %q, want %q", w.Body.String(), "gold.mp3")
	}
}

func TestPost_BodyVariants(t *testing.T) {
	for name, body := range map[string]string{
		"object":      `{"code": "the-code"}`,
		"json string": `"the-code"`,
		"raw":         "the-code",
	} {
		api := &mockExchanger{token: "tok"}
		res := &mockResolver{tier: tier.Bronze}
		r := setup(api, res, testStore())

		w := doPost(r, "/feed", body)
		if w.Code != http.StatusOK {
			t.Errorf("%v: status = %d, want 200", name, w.Code)
			continue
		}
		if len(api.codes) != 1 || api.codes[0] != "the-code" {
			t.Errorf("%v: exchanged codes = %v", name, api.codes)
		}
	}
}

func TestPost_EmptyBody(t *testing.T) {
	api := &mockExchanger{token: "tok"}
	res := &mockResolver{tier: tier.Bronze}
	r := setup(api, res, testStore())

	w := doPost(r, "/feed", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(api.codes) != 0 {
		t.Error("exchanger must not be called without a code")
	}
}

func TestPost_TokenFailure(t *testing.T) {
	api := &mockExchanger{err: errors.New("connection refused")}
	res := &mockResolver{tier: tier.Bronze}
	r := setup(api, res, testStore())

	w := doPost(r, "/feed", `{"code": "the-code"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if w.Body.String() != "Token request failed" {
		t.Errorf("body = %q", w.Body.String())
	}
	if res.calls != 0 {
		t.Error("resolver must not be called after a failed exchange")
	}
}

func TestPost_TierFailures(t *testing.T) {
	for name, err := range map[string]error{
		"transport":     errors.New("identity endpoint returned 502 Bad Gateway"),
		"no match":      tier.ErrNoMatch,
		"unknown title": &tier.UnknownTitleError{Title: "Diamond membership"},
	} {
		api := &mockExchanger{token: "tok"}
		res := &mockResolver{err: err}
		r := setup(api, res, testStore())

		w := doPost(r, "/feed", `{"code": "the-code"}`)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%v: status = %d, want 500", name, w.Code)
			continue
		}
		if w.Body.String() != "Tier request failed" {
			t.Errorf("%v: body = %q", name, w.Body.String())
		}
	}
}

func TestPost_PassesTokenAndCredentials(t *testing.T) {
	api := &mockExchanger{token: "tok-xyz"}
	res := &mockResolver{tier: tier.Silver}
	r := setup(api, res, testStore())

	doPost(r, "/feed", `{"code": "the-code"}`)
	if res.token != "tok-xyz" {
		t.Errorf("resolver token = %q, want %q", res.token, "tok-xyz")
	}
	if len(api.creds) != 1 || api.creds[0].ClientID != "cid" {
		t.Errorf("exchanger creds = %+v", api.creds)
	}
}

func TestPost_UsesCurrentStoreSnapshot(t *testing.T) {
	api := &mockExchanger{token: "tok"}
	res := &mockResolver{tier: tier.Bronze}
	store := testStore()
	r := setup(api, res, store)

	store.Replace(&config.Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "https://example.com/callback",
		CampaignID:   "42",
		Outputs: &config.Outputs{
			Bronze: "bronze-v2.mp3",
			Silver: "silver-v2.mp3",
			Gold:   "gold-v2.mp3",
		},
	})

	w := doPost(r, "/feed", `{"code": "the-code"}`)
	if w.Body.String() != "bronze-v2.mp3" {
		t.Errorf("body = %q, want output from replaced config", w.Body.String())
	}
}

func TestGet_EchoesToken(t *testing.T) {
	api := &mockExchanger{token: "tok-123"}
	res := &mockResolver{}
	r := setup(api, res, testStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/feed?code=the-code", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != `"tok-123"` {
		t.Errorf("body = %q, want %q", w.Body.String(), `"tok-123"`)
	}
	if res.calls != 0 {
		t.Error("legacy GET must not resolve a tier")
	}
}

func TestGet_TokenFailure(t *testing.T) {
	api := &mockExchanger{err: errors.New("boom")}
	r := setup(api, &mockResolver{}, testStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/feed?code=the-code", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != `"Token request failed"` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestGet_MissingCode(t *testing.T) {
	r := setup(&mockExchanger{}, &mockResolver{}, testStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/feed", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

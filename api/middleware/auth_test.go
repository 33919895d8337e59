package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/kaizerhaus/kaizerhaus-backend/pkg/auth"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/auth/session"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
)

type fakeSessions struct {
	records map[string]*session.Record
}

func (f *fakeSessions) Load(ctx context.Context, accessID string) (*session.Record, error) {
	record, ok := f.records[accessID]
	if !ok {
		return nil, session.ErrNoSession
	}
	return record, nil
}

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "kaizerhaus-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 30,
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, jti string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID:     "42",
		Nome:       "Maria",
		Hierarquia: enums.HierarquiaUsuario,
		JTI:        jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSeedsContextFromSession(t *testing.T) {
	cfg := jwtTestConfig()
	sessions := &fakeSessions{records: map[string]*session.Record{
		"jti-1": {
			UserID:        "42",
			Hierarquia:    enums.HierarquiaUsuario,
			UpstreamToken: "upstream-token",
		},
	}}

	var gotUser, gotToken, gotAccess string
	handler := Auth(cfg, sessions, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotToken = UpstreamTokenFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/sacola", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "jti-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUser != "42" || gotToken != "upstream-token" || gotAccess != "jti-1" {
		t.Fatalf("context not seeded: user=%q token=%q access=%q", gotUser, gotToken, gotAccess)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := jwtTestConfig()
	handler := Auth(cfg, &fakeSessions{records: map[string]*session.Record{}}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/sacola", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "gone"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsMissingAndMalformedCredentials(t *testing.T) {
	cfg := jwtTestConfig()
	handler := Auth(cfg, &fakeSessions{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Bearer ", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/sacola", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

package auth

import (
	"context"
	"errors"
	"testing"

	pkgauth "github.com/kaizerhaus/kaizerhaus-backend/pkg/auth"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/auth/session"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
	"github.com/rs/zerolog"
)

type stubUpstream struct {
	loginResult *upstream.LoginResult
	loginErr    error
	registered  *upstream.Usuario
}

func (s *stubUpstream) Login(ctx context.Context, creds upstream.Credentials) (*upstream.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubUpstream) Register(ctx context.Context, req upstream.RegisterRequest) (*upstream.Usuario, error) {
	return s.registered, nil
}

type stubSessions struct {
	created map[string]session.Record
	revoked []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{created: make(map[string]session.Record)}
}

func (s *stubSessions) Create(ctx context.Context, accessID string, record session.Record) error {
	s.created[accessID] = record
	return nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubCart struct {
	cleared []string
	err     error
}

func (s *stubCart) Clear(ctx context.Context, userID string) error {
	s.cleared = append(s.cleared, userID)
	return s.err
}

func jwtCfg() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "kaizerhaus-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
}

func newTestService(t *testing.T, up *stubUpstream, sessions *stubSessions, cart *stubCart) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
	svc, err := NewService(up, sessions, cart, jwtCfg(), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginMintsTokenAndStoresSession(t *testing.T) {
	up := &stubUpstream{loginResult: &upstream.LoginResult{
		Token: "upstream-tok",
		Usuario: upstream.Usuario{
			ID:         "42",
			Nome:       "Maria",
			Email:      "maria@example.com",
			Hierarquia: "funcionario",
		},
	}}
	sessions := newStubSessions()
	svc := newTestService(t, up, sessions, &stubCart{})

	out, err := svc.Login(context.Background(), LoginInput{Email: "maria@example.com", Senha: "x"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.Usuario.Hierarquia != enums.HierarquiaFuncionario {
		t.Fatalf("expected funcionario, got %q", out.Usuario.Hierarquia)
	}

	claims, err := pkgauth.ParseAccessToken(jwtCfg(), out.Token)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != "42" || claims.Hierarquia != enums.HierarquiaFuncionario {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	record, ok := sessions.created[claims.ID]
	if !ok {
		t.Fatalf("session must be stored under the token jti")
	}
	if record.UpstreamToken != "upstream-tok" {
		t.Fatalf("session must hold the upstream token, got %q", record.UpstreamToken)
	}
}

func TestLoginNormalizesUnknownHierarquia(t *testing.T) {
	up := &stubUpstream{loginResult: &upstream.LoginResult{
		Token:   "tok",
		Usuario: upstream.Usuario{ID: "7", Hierarquia: "gerente"},
	}}
	svc := newTestService(t, up, newStubSessions(), &stubCart{})

	out, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Senha: "x"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.Usuario.Hierarquia != enums.HierarquiaUsuario {
		t.Fatalf("unknown hierarquia must default to usuario, got %q", out.Usuario.Hierarquia)
	}
}

func TestLoginPropagatesUpstreamError(t *testing.T) {
	up := &stubUpstream{loginErr: errors.New("credenciais invalidas")}
	svc := newTestService(t, up, newStubSessions(), &stubCart{})

	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Senha: "x"}); err == nil {
		t.Fatalf("expected upstream error")
	}
}

func TestLogoutClearsCartAndRevokesSession(t *testing.T) {
	sessions := newStubSessions()
	cart := &stubCart{}
	svc := newTestService(t, &stubUpstream{}, sessions, cart)

	if err := svc.Logout(context.Background(), "access-1", "42"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(cart.cleared) != 1 || cart.cleared[0] != "42" {
		t.Fatalf("logout must clear the user's cart, got %v", cart.cleared)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("logout must revoke the session, got %v", sessions.revoked)
	}
}

func TestLogoutSurvivesCartFailure(t *testing.T) {
	sessions := newStubSessions()
	cart := &stubCart{err: errors.New("storage down")}
	svc := newTestService(t, &stubUpstream{}, sessions, cart)

	if err := svc.Logout(context.Background(), "access-1", "42"); err != nil {
		t.Fatalf("cart failure must not block logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("session must still be revoked")
	}
}

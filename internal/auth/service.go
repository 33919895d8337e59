package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/auth"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/auth/session"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
)

type upstreamAuth interface {
	Login(ctx context.Context, creds upstream.Credentials) (*upstream.LoginResult, error)
	Register(ctx context.Context, req upstream.RegisterRequest) (*upstream.Usuario, error)
}

type sessionManager interface {
	Create(ctx context.Context, accessID string, record session.Record) error
	Revoke(ctx context.Context, accessID string) error
}

type cartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// Profile is the user snapshot returned to clients.
type Profile struct {
	ID         string           `json:"id"`
	Nome       string           `json:"nome"`
	Email      string           `json:"email"`
	Hierarquia enums.Hierarquia `json:"hierarquia"`
}

// LoginInput carries the credentials.
type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

// RegisterInput creates a new customer account.
type RegisterInput struct {
	Nome     string `json:"nome" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Senha    string `json:"senha" validate:"required,min=6"`
	Telefone string `json:"telefone,omitempty"`
}

// LoginOutput is the session handed to the client.
type LoginOutput struct {
	Token   string  `json:"token"`
	Usuario Profile `json:"usuario"`
}

// Service owns login, registration, and logout.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	Register(ctx context.Context, input RegisterInput) (*Profile, error)
	Logout(ctx context.Context, accessID, userID string) error
}

type service struct {
	upstream upstreamAuth
	sessions sessionManager
	cart     cartClearer
	jwtCfg   config.JWTConfig
	logger   *logger.Logger
	now      func() time.Time
}

// NewService wires the auth service. Logout clears the user's cart through
// the cart service's own API, keeping each manager's encapsulation.
func NewService(up upstreamAuth, sessions sessionManager, cart cartClearer, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if up == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		upstream: up,
		sessions: sessions,
		cart:     cart,
		jwtCfg:   jwtCfg,
		logger:   logg,
		now:      time.Now,
	}, nil
}

// Login authenticates against the restaurant backend, stores its token in a
// server-side session, and mints the local JWT handed to the client.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	result, err := s.upstream.Login(ctx, upstream.Credentials{
		Email: strings.TrimSpace(input.Email),
		Senha: input.Senha,
	})
	if err != nil {
		return nil, err
	}

	userID := result.Usuario.ID.String()
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "login response carried no user id")
	}
	hierarquia := enums.NormalizeHierarquia(result.Usuario.Hierarquia)

	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID:     userID,
		Nome:       result.Usuario.Nome,
		Hierarquia: hierarquia,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	record := session.Record{
		UserID:        userID,
		Nome:          result.Usuario.Nome,
		Email:         result.Usuario.Email,
		Hierarquia:    hierarquia,
		UpstreamToken: result.Token,
	}
	if err := s.sessions.Create(ctx, accessID, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "storing session")
	}

	ctx = s.logger.WithUserID(ctx, userID)
	s.logger.Info(s.logger.WithHierarquia(ctx, hierarquia.String()), "user logged in")

	return &LoginOutput{
		Token: token,
		Usuario: Profile{
			ID:         userID,
			Nome:       result.Usuario.Nome,
			Email:      result.Usuario.Email,
			Hierarquia: hierarquia,
		},
	}, nil
}

// Register proxies account creation to the restaurant backend.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Profile, error) {
	usuario, err := s.upstream.Register(ctx, upstream.RegisterRequest{
		Nome:     strings.TrimSpace(input.Nome),
		Email:    strings.TrimSpace(input.Email),
		Senha:    input.Senha,
		Telefone: strings.TrimSpace(input.Telefone),
	})
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:         usuario.ID.String(),
		Nome:       usuario.Nome,
		Email:      usuario.Email,
		Hierarquia: enums.NormalizeHierarquia(usuario.Hierarquia),
	}, nil
}

// Logout empties the user's cart and revokes the session. A cart failure is
// logged but does not keep the session alive.
func (s *service) Logout(ctx context.Context, accessID, userID string) error {
	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logger.Error(s.logger.WithUserID(ctx, userID), "clearing cart on logout", err)
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "revoking session")
	}
	s.logger.Info(s.logger.WithUserID(ctx, userID), "user logged out")
	return nil
}

package cards

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
)

type cardAPI interface {
	CreateCartao(ctx context.Context, token string, req upstream.CreateCartaoRequest) (*upstream.Cartao, error)
	ListCartoes(ctx context.Context, token string) ([]upstream.Cartao, error)
}

// CreateInput carries a new card to store with the backend. The full
// number only transits here; the backend returns it masked.
type CreateInput struct {
	Numero   string `json:"numero" validate:"required"`
	Nome     string `json:"nome" validate:"required"`
	Validade string `json:"validade" validate:"required"`
	CVV      string `json:"cvv" validate:"required,len=3"`
}

// Service proxies saved payment cards.
type Service interface {
	List(ctx context.Context, token string) ([]upstream.Cartao, error)
	Create(ctx context.Context, token string, input CreateInput) (*upstream.Cartao, error)
}

type service struct {
	upstream cardAPI
	logger   *logger.Logger
}

func NewService(up cardAPI, logg *logger.Logger) (Service, error) {
	if up == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{upstream: up, logger: logg}, nil
}

func (s *service) List(ctx context.Context, token string) ([]upstream.Cartao, error) {
	return s.upstream.ListCartoes(ctx, token)
}

func (s *service) Create(ctx context.Context, token string, input CreateInput) (*upstream.Cartao, error) {
	numero := strings.ReplaceAll(strings.TrimSpace(input.Numero), " ", "")
	if !isCardNumber(numero) {
		return nil, errors.New(errors.CodeValidation, "numero de cartao invalido")
	}
	cartao, err := s.upstream.CreateCartao(ctx, token, upstream.CreateCartaoRequest{
		Numero:   numero,
		Nome:     strings.TrimSpace(input.Nome),
		Validade: strings.TrimSpace(input.Validade),
		CVV:      strings.TrimSpace(input.CVV),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(s.logger.WithField(ctx, "cartao_id", cartao.ID.String()), "card stored")
	return cartao, nil
}

func isCardNumber(numero string) bool {
	if len(numero) < 13 || len(numero) > 19 {
		return false
	}
	for _, r := range numero {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

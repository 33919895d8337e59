package upstream

import (
	"context"
	"encoding/json"
	"strings"

	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
)

// loginEnvelope tolerates both field spellings the backend has used for the
// token and the user snapshot.
type loginEnvelope struct {
	Token       string          `json:"token"`
	AccessToken string          `json:"access_token"`
	Usuario     json.RawMessage `json:"usuario"`
	User        json.RawMessage `json:"user"`
}

// Login authenticates against the restaurant backend and returns the bearer
// token plus the user snapshot.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var envelope loginEnvelope
	if err := c.post(ctx, "login", "/usuarios/login", "", creds, &envelope); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(envelope.Token)
	if token == "" {
		token = strings.TrimSpace(envelope.AccessToken)
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "login response carried no token")
	}

	result := &LoginResult{Token: token}
	rawUser := envelope.Usuario
	if len(rawUser) == 0 || string(rawUser) == "null" {
		rawUser = envelope.User
	}
	if len(rawUser) > 0 && string(rawUser) != "null" {
		if err := json.Unmarshal(rawUser, &result.Usuario); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding login user snapshot")
		}
	}
	return result, nil
}

// Register creates a new customer account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Usuario, error) {
	var usuario Usuario
	if err := c.post(ctx, "register", "/usuarios", "", req, &usuario); err != nil {
		return nil, err
	}
	return &usuario, nil
}

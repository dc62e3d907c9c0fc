package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"biovault/internal/platform/httpclient"
	"biovault/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("wallet auth client not configured")
	ErrUnauthorized  = errors.New("wallet auth unauthorized")
	ErrUpstream      = errors.New("wallet auth upstream error")
)

// Config del cliente de wallet auth.
// BaseURL y APIKey normalmente vendrán de env vars en el servicio que lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	// Timeout HTTP.
	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// VerifySession valida un token de sesión de wallet y trae claims.
// El proveedor externo resuelve firma y ownership de la address; acá solo
// confiamos en su veredicto.
func (c *Client) VerifySession(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	const verifyPath = "/v1/sessions/verify"

	headers := map[string]string{
		c.apiKeyHeader:  c.apiKey,
		"Authorization": "Bearer " + token,
	}

	var out struct {
		UserID        string `json:"user_id"`
		Email         string `json:"email"`
		WalletAddress string `json:"wallet_address"`
	}

	err := c.http.DoJSON(ctx, "POST", verifyPath, headers, map[string]string{"token": token}, &out)
	if err != nil {
		var herr *httpclient.HTTPError
		if errors.As(err, &herr) {
			if herr.StatusCode == 401 || herr.StatusCode == 403 {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, herr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("wallet auth response missing user_id")
	}

	return auth.Claims{
		UserID:        out.UserID,
		Email:         strings.TrimSpace(out.Email),
		WalletAddress: strings.TrimSpace(out.WalletAddress),
	}, nil
}

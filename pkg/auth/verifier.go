package auth

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidToken is returned for missing, malformed or expired credentials.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier resolves a bearer token to the owning user id.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// IdentityClient verifies tokens against the identity provider's
// user-info endpoint.
type IdentityClient struct {
	logger     *log.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Verifier = (*IdentityClient)(nil)

func NewIdentityClient(logger *log.Logger, baseURL string, apiKey string) *IdentityClient {
	return &IdentityClient{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *IdentityClient) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", errors.Wrap(err, "building user-info request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling identity provider")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading user-info response")
	}

	userID := gjson.GetBytes(body, "id").String()
	if userID == "" {
		c.logger.Error("user-info response missing id field")
		return "", ErrInvalidToken
	}

	return userID, nil
}

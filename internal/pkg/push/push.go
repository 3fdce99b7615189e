package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/manas-swain-001/cms/internal/config"
)

// Service sends push messages through an external gateway. Delivery is
// best-effort; the gateway owns retries.
type Service interface {
	Send(ctx context.Context, userID, title, message string, data map[string]interface{}) error
}

type pushServiceImpl struct {
	gatewayURL string
	client     *http.Client
}

type noopService struct{}

func (noopService) Send(context.Context, string, string, string, map[string]interface{}) error {
	return nil
}

// NewPushService creates a gateway client authenticated with OAuth2
// client credentials. Returns a no-op sender when the gateway is not
// configured, so callers never branch.
func NewPushService(cfg config.PushConfig) Service {
	if cfg.GatewayURL == "" || cfg.TokenURL == "" {
		return noopService{}
	}

	ccfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	client := ccfg.Client(context.Background())
	client.Timeout = 10 * time.Second

	return &pushServiceImpl{
		gatewayURL: cfg.GatewayURL,
		client:     client,
	}
}

type pushPayload struct {
	UserID  string                 `json:"user_id"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Send posts one message to the gateway.
func (s *pushServiceImpl) Send(ctx context.Context, userID, title, message string, data map[string]interface{}) error {
	body, err := json.Marshal(pushPayload{
		UserID:  userID,
		Title:   title,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway rejected message: %s", resp.Status)
	}

	return nil
}

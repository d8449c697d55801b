package notifyclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	pushPath  = "/notification/push/"
	inAppPath = "/notification/in-app/"

	// DefaultTimeout bounds a single call to the notification service
	DefaultTimeout = 10 * time.Second
)

// PushPayload is the body of a push notification request
type PushPayload struct {
	Tokens           []string          `json:"tokens"`
	Title            string            `json:"title"`
	Body             string            `json:"body"`
	Data             map[string]string `json:"data"`
	NotificationType string            `json:"notification_type"`
}

// InAppPayload is the body of an in-app notification request
type InAppPayload struct {
	Tokens           []string          `json:"tokens"`
	Title            string            `json:"title"`
	Body             string            `json:"body"`
	NotifType        string            `json:"notif_type"`
	NotificationType string            `json:"notification_type"`
	ExtraData        map[string]string `json:"extra_data"`
}

// Response is the decoded reply of the notification service
type Response map[string]any

// Client sends notifications through the notification service
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a notification service client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// SendPush posts a push notification
func (c *Client) SendPush(ctx context.Context, payload PushPayload) (Response, error) {
	return c.post(ctx, pushPath, payload, len(payload.Tokens))
}

// SendInApp posts an in-app notification
func (c *Client) SendInApp(ctx context.Context, payload InAppPayload) (Response, error) {
	return c.post(ctx, inAppPath, payload, len(payload.Tokens))
}

func (c *Client) post(ctx context.Context, path string, payload any, tokenCount int) (Response, error) {
	c.logger.Debug("Calling notification service",
		zap.String("path", path),
		zap.Int("token_count", tokenCount))

	var result Response
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("failed to call notification service: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("notification service returned status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	if result == nil {
		// Non-JSON replies are kept as text
		result = Response{"status": resp.StatusCode(), "text": resp.String()}
	}

	c.logger.Debug("Notification service accepted request",
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode()))

	return result, nil
}

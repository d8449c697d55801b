package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/suvidhaen/railsathi-be/pkg/utils"
)

// Client wraps the Gmail API client
type Client struct {
	service      *gmail.Service
	sender       string
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a Gmail client that sends as sender using a service account
// with domain-wide delegation
func NewClient(ctx context.Context, serviceAccountFile, sender string) (*Client, error) {
	httpClient, err := utils.ServiceAccountClient(ctx, serviceAccountFile, sender)
	if err != nil {
		return nil, fmt.Errorf("failed to get service account client: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Client{
		service: service,
		sender:  sender,
	}, nil
}

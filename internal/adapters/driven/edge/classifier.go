package edge

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.ClassificationService = (*Classifier)(nil)

// FunctionClassifyIntent is the intent classification function name.
const FunctionClassifyIntent = "classify-intent"

// Classifier calls the classify-intent edge function.
type Classifier struct {
	client *Client
}

// NewClassifier creates a classifier over an edge client.
func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify posts the request and returns the raw reply. Deadlines and
// 408/504 replies are reported as timeouts, any other non-2xx reply as a
// malformed classification.
func (c *Classifier) Classify(ctx context.Context, req driven.ClassificationRequest) (string, error) {
	body, err := c.client.Invoke(ctx, FunctionClassifyIntent, req)
	if err == nil {
		return string(body), nil
	}

	var statusErr *StatusError
	switch {
	case errors.Is(err, context.Canceled):
		return "", err
	case errors.Is(err, context.DeadlineExceeded):
		return "", fmt.Errorf("%w: %v", domain.ErrClassificationTimeout, err)
	case errors.As(err, &statusErr) && isTimeoutStatus(statusErr.Status):
		return "", fmt.Errorf("%w: %v", domain.ErrClassificationTimeout, err)
	case errors.As(err, &statusErr):
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedClassification, err)
	default:
		return "", err
	}
}

func isTimeoutStatus(status int) bool {
	return status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout
}

// Name identifies the backend in logs.
func (c *Classifier) Name() string {
	return "edge:" + FunctionClassifyIntent
}

// Ping checks the function is deployed.
func (c *Classifier) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, FunctionClassifyIntent)
}

// Close releases resources.
func (c *Classifier) Close() error {
	return nil
}

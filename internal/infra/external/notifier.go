package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
)

type notificationResponse struct {
	Status string `json:"status"`
}

// NotificationClient posts final statuses to the notification sink.
type NotificationClient struct {
	url    string
	client *http.Client
}

var _ gateway.Notifier = (*NotificationClient)(nil)

func NewNotificationClient(url string, timeout time.Duration) *NotificationClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &NotificationClient{url: url, client: &http.Client{Timeout: timeout}}
}

// Send succeeds on 204 or on a 2xx whose body reports status "success".
func (c *NotificationClient) Send(ctx context.Context, n gateway.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, c.client.Timeout)
	defer cancel()

	payload, err := json.Marshal(n)
	if err != nil {
		return &gateway.NotificationFailedError{EntityID: n.EntityID, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return &gateway.NotificationFailedError{EntityID: n.EntityID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &gateway.NotificationFailedError{EntityID: n.EntityID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &gateway.NotificationFailedError{EntityID: n.EntityID, StatusCode: resp.StatusCode}
	}

	var body notificationResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return &gateway.NotificationFailedError{
			EntityID:   n.EntityID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("undecodable response: %w", err),
		}
	}
	if body.Status != "success" {
		return &gateway.NotificationFailedError{EntityID: n.EntityID, StatusCode: resp.StatusCode}
	}
	return nil
}

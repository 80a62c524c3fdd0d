// Package external holds the HTTP clients for the authorization oracle and the
// notification sink.
package external

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 5 * time.Second

type authorizationResponse struct {
	Status string `json:"status"`
	Data   struct {
		Authorization *bool `json:"authorization"`
	} `json:"data"`
}

// AuthorizationClient asks the oracle whether a movement may proceed. It never retries.
type AuthorizationClient struct {
	url    string
	client *http.Client
}

var _ gateway.Authorizer = (*AuthorizationClient)(nil)

func NewAuthorizationClient(url string, timeout time.Duration) *AuthorizationClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AuthorizationClient{url: url, client: &http.Client{Timeout: timeout}}
}

func (c *AuthorizationClient) Authorize(ctx context.Context) gateway.Decision {
	ctx, cancel := context.WithTimeout(ctx, c.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to build authorization request")
		return gateway.DecisionUnavailable
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("authorization service unreachable")
		return gateway.DecisionUnavailable
	}
	defer resp.Body.Close()

	var body authorizationResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	switch {
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Warn().Int("http_status", resp.StatusCode).Msg("authorization service returned an error")
		return gateway.DecisionUnavailable
	case decodeErr != nil:
		log.Warn().Err(decodeErr).Msg("undecodable authorization response")
		return gateway.DecisionUnavailable
	case body.Data.Authorization != nil && *body.Data.Authorization:
		return gateway.DecisionAuthorized
	default:
		return gateway.DecisionDenied
	}
}

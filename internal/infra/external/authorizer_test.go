package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizationClient_Authorize(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   gateway.Decision
	}{
		{"authorized", http.StatusOK, `{"status":"success","data":{"authorization":true}}`, gateway.DecisionAuthorized},
		{"explicit denial", http.StatusOK, `{"status":"fail","data":{"authorization":false}}`, gateway.DecisionDenied},
		{"missing flag", http.StatusOK, `{"status":"success","data":{}}`, gateway.DecisionDenied},
		{"server error", http.StatusInternalServerError, `{}`, gateway.DecisionUnavailable},
		{"forbidden", http.StatusForbidden, `{"status":"fail","data":{"authorization":false}}`, gateway.DecisionUnavailable},
		{"undecodable body", http.StatusOK, `<html>`, gateway.DecisionUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewAuthorizationClient(server.URL, time.Second)
			assert.Equal(t, tt.want, client.Authorize(context.Background()))
		})
	}
}

func TestAuthorizationClient_TimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewAuthorizationClient(server.URL, 50*time.Millisecond)
	assert.Equal(t, gateway.DecisionUnavailable, client.Authorize(context.Background()))
}

func TestAuthorizationClient_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewAuthorizationClient(url, time.Second)
	assert.Equal(t, gateway.DecisionUnavailable, client.Authorize(context.Background()))
}

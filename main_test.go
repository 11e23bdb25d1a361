package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-services/framework/config"
	"github.com/km-arc/go-services/framework/container"
	"github.com/km-arc/go-services/framework/extension"
	gohttp "github.com/km-arc/go-services/framework/http"
	"github.com/km-arc/go-services/framework/logging"
)

func TestGreeter(t *testing.T) {
	reg := extension.NewRegistry()
	cfg := &config.Config{Values: map[string]any{"greeting": "Hi"}}
	c, err := container.New(greeter(),
		container.WithRegistry(reg),
		container.WithConfig(cfg),
		container.WithLogger(logging.Discard()))
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())

	srv, ok := extension.Lookup[*gohttp.Server](reg, c, "")
	require.True(t, ok)

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		wantStatus  int
		wantBody    string
	}{
		{"hello", http.MethodGet, "/hello/ada", "", "", http.StatusOK, `{"data":{"message":"Hi, ada!"}}`},
		{"hello with query", http.MethodGet, "/hello/ada?punctuation=.", "", "", http.StatusOK, `{"data":{"message":"Hi, ada."}}`},
		{"greet json", http.MethodPost, "/greetings", "application/json", `{"name":"lin"}`, http.StatusOK, `{"data":{"message":"Hi, lin!"}}`},
		{"greet form", http.MethodPost, "/greetings", "application/x-www-form-urlencoded", "name=bo", http.StatusOK, `{"data":{"message":"Hi, bo!"}}`},
		{"greet without name", http.MethodPost, "/greetings", "application/json", `{}`, http.StatusUnprocessableEntity, `{"message":"name is required"}`},
		{"health", http.MethodGet, "/health", "", "", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				require.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

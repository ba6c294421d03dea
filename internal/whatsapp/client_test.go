package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientWithoutURL(t *testing.T) {
	c := NewClient(&config.Config{}, nil)
	assert.Nil(t, c)
	assert.NoError(t, c.SendMessage(context.Background(), "11999990000", "oi"))
}

func TestSendMessage(t *testing.T) {
	var (
		got     sendRequest
		auth    string
		device  string
		reqPath string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath = r.URL.Path
		auth = r.Header.Get("Authorization")
		device = r.Header.Get("X-Device-Id")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(&config.Config{WhatsAppURL: srv.URL + "/", WhatsAppKey: "user:pass", WhatsAppDeviceID: "dev-1"},
		logger.NewWithWriter("test", io.Discard))
	require.NoError(t, c.SendMessage(context.Background(), "(11) 99999-0000", "Olá"))

	assert.Equal(t, "/send/message", reqPath)
	assert.Equal(t, "5511999990000", got.Phone)
	assert.Equal(t, "Olá", got.Message)
	assert.Equal(t, "Basic dXNlcjpwYXNz", auth)
	assert.Equal(t, "dev-1", device)
}

func TestSendMessageGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "device offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(&config.Config{WhatsAppURL: srv.URL}, nil)
	err := c.SendMessage(context.Background(), "5511999990000", "oi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "device offline")
}

func TestSendMessageEmptyRecipient(t *testing.T) {
	c := NewClient(&config.Config{WhatsAppURL: "http://unused"}, nil)
	assert.ErrorIs(t, c.SendMessage(context.Background(), "  ", "oi"), ErrNoRecipient)
}

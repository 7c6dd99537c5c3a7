package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentacar-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSender_BuildMessage(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "user", "pass", "noreply@rentacar.test", "Rent a Car")

	m := s.buildMessage(Message{To: "jane@example.com", Subject: "Rental accepted", Body: "See you soon"})
	assert.Equal(t, []string{"jane@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Rental accepted"}, m.GetHeader("Subject"))
	require.Len(t, m.GetHeader("From"), 1)
	assert.Contains(t, m.GetHeader("From")[0], "noreply@rentacar.test")
}

func TestSendGridSender_Send(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("test-key", "noreply@rentacar.test", "Rent a Car")
	s.baseURL = srv.URL

	err := s.Send(context.Background(), Message{To: "jane@example.com", Subject: "Hello", Body: "Body"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", payload["subject"])
}

func TestSendGridSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := NewSendGridSender("bad", "noreply@rentacar.test", "")
	s.baseURL = srv.URL

	err := s.Send(context.Background(), Message{To: "jane@example.com", Subject: "Hello", Body: "Body"})
	assert.ErrorContains(t, err, "status 401")
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@example.com"}))
}

func TestNewSender(t *testing.T) {
	cfg := &config.Config{}
	cfg.Email.Provider = "log"
	s, err := NewSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	cfg.Email.Provider = "sendgrid"
	s, err = NewSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	cfg.Email.Provider = "smtp"
	s, err = NewSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	cfg.Email.Provider = "pigeon"
	_, err = NewSender(cfg)
	assert.Error(t, err)
}

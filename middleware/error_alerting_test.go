package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAlertSender struct {
	mock.Mock
}

func (m *mockAlertSender) Send(kind, url string, msg *slack.WebhookMessage) {
	m.Called(kind, url, msg)
}

const testAlertWebhook = "https://hooks.slack.test/alerts"

func newTestAlertMiddleware(sender AlertSender) *ErrorAlertMiddleware {
	return NewErrorAlertMiddleware(SlackAlertConfig{
		WebhookURL:  testAlertWebhook,
		Environment: "dev",
		AppName:     "biketowork",
		LogsURL:     "https://logs.example.com",
	}, sender)
}

func TestErrorAlertMiddleware_RecoversPanic(t *testing.T) {
	sender := &mockAlertSender{}
	sender.On("Send", "alert", testAlertWebhook, mock.MatchedBy(func(msg *slack.WebhookMessage) bool {
		return msg.Text == "🚨 [dev] [biketowork] Error Alert" && len(msg.Blocks.BlockSet) == 4
	})).Once()

	m := newTestAlertMiddleware(sender)
	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/new/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	sender.AssertExpectations(t)
}

func TestErrorAlertMiddleware_AlertsOnServerError(t *testing.T) {
	sender := &mockAlertSender{}
	sender.On("Send", "alert", testAlertWebhook, mock.Anything).Once()

	m := newTestAlertMiddleware(sender)
	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	sender.AssertExpectations(t)
}

func TestErrorAlertMiddleware_IgnoresClientErrors(t *testing.T) {
	sender := &mockAlertSender{}

	m := newTestAlertMiddleware(sender)
	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/new/", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestErrorAlertMiddleware_Cooldown(t *testing.T) {
	sender := &mockAlertSender{}
	sender.On("Send", "alert", testAlertWebhook, mock.Anything).Twice()

	m := newTestAlertMiddleware(sender)
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	serve := func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	serve()
	current = current.Add(5 * time.Minute)
	serve()
	current = current.Add(6 * time.Minute)
	serve()

	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestErrorAlertMiddleware_RethrowsAbortHandler(t *testing.T) {
	sender := &mockAlertSender{}

	m := newTestAlertMiddleware(sender)
	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

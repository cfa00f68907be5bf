package middleware

import (
	"crypto/md5"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

type SlackAlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
	LogsURL     string
}

// AlertSender delivers Slack webhook messages
type AlertSender interface {
	Send(kind, url string, msg *slack.WebhookMessage)
}

type ErrorAlertMiddleware struct {
	config        SlackAlertConfig
	sender        AlertSender
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration
	now           func() time.Time
}

func NewErrorAlertMiddleware(config SlackAlertConfig, sender AlertSender) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		sender:        sender,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute, // same error alerts at most once per 10min
		now:           time.Now,
	}
}

// HTTPMiddleware recovers panics as 500 responses and alerts on every 5xx response
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		context := fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
		rw := newStatusRecorder(w)

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("❌ %s: PANIC - %v", context, rec)
				m.alertOnError(fmt.Errorf("PANIC - %v", rec), context+" (PANIC)")
				if !rw.wroteHeader {
					http.Error(rw, "internal server error", http.StatusInternalServerError)
				}
				return
			}

			if rw.status >= http.StatusInternalServerError {
				m.alertOnError(fmt.Errorf("responded with status %d", rw.status), context)
			}
		}()

		next.ServeHTTP(rw, r)
	})
}

// alertOnError sends an alert unless the same error was alerted within the cooldown
func (m *ErrorAlertMiddleware) alertOnError(err error, context string) {
	errorMsg := fmt.Sprintf("%s: %v", context, err)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	if lastAlert, exists := m.alertedErrors[hash]; exists && now.Sub(lastAlert) < m.alertCooldown {
		return
	}
	m.alertedErrors[hash] = now

	m.sender.Send("alert", m.config.WebhookURL, m.buildAlert(errorMsg, context))
}

func (m *ErrorAlertMiddleware) buildAlert(errorMsg, context string) *slack.WebhookMessage {
	envPrefix := ""
	if m.config.Environment == "dev" {
		envPrefix = "[dev] "
	}
	title := fmt.Sprintf("🚨 %s[%s] Error Alert", envPrefix, m.config.AppName)

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", m.config.AppName), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", m.config.Environment), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Context:* %s", context), false, false),
		}, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Error:*\n```%s```", errorMsg), false, false),
			nil,
			nil,
		),
	}
	if m.config.LogsURL != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("🔗 <%s|View Logs>", m.config.LogsURL), false, false),
			nil,
			nil,
		))
	}

	return &slack.WebhookMessage{
		Text:   title,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}

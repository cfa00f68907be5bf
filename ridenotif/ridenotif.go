package ridenotif

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"biketowork/models"
)

var (
	instance *RideNotifier
	mu       sync.RWMutex
)

// Sender delivers a Slack webhook message
type Sender interface {
	Send(kind, url string, msg *slack.WebhookMessage)
}

type RideNotifier struct {
	sender      Sender
	webhookURL  string
	environment string
	appName     string
}

// Init sets the global ride notifier used by New
func Init(sender Sender, webhookURL, environment string) {
	mu.Lock()
	defer mu.Unlock()

	instance = &RideNotifier{
		sender:      sender,
		webhookURL:  webhookURL,
		environment: environment,
		appName:     "Bike to Work",
	}
}

// New announces a freshly logged ride to the rides Slack channel
func New(ride *models.Ride) {
	mu.RLock()
	notifier := instance
	mu.RUnlock()

	if notifier == nil {
		log.Printf("⚠️ Ride notifier not initialized, skipping notification for ride: %s", ride.ID)
		return
	}

	notifier.send(ride)
}

func (n *RideNotifier) send(ride *models.Ride) {
	if n.webhookURL == "" {
		return // Ride notifications disabled
	}

	n.sender.Send("ride", n.webhookURL, n.buildMessage(ride))
}

func (n *RideNotifier) buildMessage(ride *models.Ride) *slack.WebhookMessage {
	text := fmt.Sprintf("🚲 New ride: %s", ride.Description())

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", n.appName), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", n.environment), false, false),
		slack.NewTextBlockObject(
			slack.MarkdownType,
			fmt.Sprintf("*Started:* %s", ride.StartTime.UTC().Format("2006-01-02 15:04 UTC")),
			false,
			false,
		),
	}

	return &slack.WebhookMessage{
		Text: text,
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
				slack.NewSectionBlock(nil, fields, nil),
				slack.NewContextBlock("", slack.NewTextBlockObject(
					slack.MarkdownType,
					fmt.Sprintf("Logged at %s", time.Now().UTC().Format(time.RFC3339)),
					false,
					false,
				)),
			},
		},
	}
}

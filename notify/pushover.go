package notify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gregdel/pushover"
)

type Notifier interface {
	Notify(title, message string) error
}

// Pushover delivers notifications to a single recipient. A Pushover without
// credentials quietly drops everything.
type Pushover struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
}

func NewPushover(token, recipient string) *Pushover {
	if token == "" || recipient == "" {
		slog.Debug("Pushover is not configured. Notifications are disabled.")
		return &Pushover{}
	}
	return &Pushover{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(recipient),
	}
}

func (p *Pushover) Enabled() bool {
	return p.app != nil
}

func (p *Pushover) Notify(title, message string) error {
	if !p.Enabled() {
		return nil
	}
	msg := &pushover.Message{
		Message:    message,
		Title:      title,
		Priority:   pushover.PriorityNormal,
		Timestamp:  time.Now().Unix(),
		DeviceName: "Spotilocal",
	}
	if _, err := p.app.SendMessage(msg, p.recipient); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

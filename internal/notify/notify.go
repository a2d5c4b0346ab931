// Package notify raises desktop notifications for upcoming prayers.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// AppName is shown as the notification source where the platform supports it.
const AppName = "Prayer Tracker"

// Sender delivers a notification.
type Sender func(title, message string, icon any) error

// Notifier formats and sends prayer notifications.
type Notifier struct {
	send Sender
}

// New returns a Notifier backed by beeep.
func New() *Notifier {
	beeep.AppName = AppName
	return &Notifier{send: beeep.Notify}
}

// NewWithSender returns a Notifier that delivers through send.
func NewWithSender(send Sender) *Notifier {
	return &Notifier{send: send}
}

// Title builds the notification title, e.g. "Asr at 15:02".
func Title(prayer, at string) string {
	return fmt.Sprintf("%s at %s", prayer, at)
}

// Message builds the body, e.g. "in 2h 15m".
func Message(remaining string) string {
	if remaining == "" {
		return "now"
	}
	return "in " + remaining
}

// Upcoming announces the next prayer.
func (n *Notifier) Upcoming(prayer, at, remaining string) error {
	if err := n.send(Title(prayer, at), Message(remaining), ""); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}

// Package notify tells the shared chat, and any configured event sinks,
// that an expense was recorded. Delivery is best-effort: failures are
// logged and never reach the dialog.
package notify

import (
	"context"
	"fmt"
	"time"

	"ledgerbot/internal/core"
	applog "ledgerbot/internal/log"
)

const EventEntryAdded = "entry.added"

// Event describes a ledger change for external consumers.
type Event struct {
	Type     string
	Category string
	Amount   core.Money
	Total    core.Money
	At       time.Time
}

// Sink receives ledger events, e.g. a message broker publisher.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Sender delivers a plain text message to a chat.
type Sender interface {
	SendBroadcast(ctx context.Context, chatID int64, text string) error
}

type Dispatcher struct {
	sender Sender
	target int64
	sinks  []Sink
	now    func() time.Time
	logger *applog.Logger
}

// NewDispatcher broadcasts to target through sender. A zero target disables
// the chat broadcast; sinks still receive events.
func NewDispatcher(sender Sender, target int64, logger *applog.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Dispatcher{
		sender: sender,
		target: target,
		sinks:  sinks,
		now:    time.Now,
		logger: logger.WithComponent(applog.ComponentNotify),
	}
}

// Enabled reports whether notifications go anywhere at all.
func (d *Dispatcher) Enabled() bool {
	return (d.target != 0 && d.sender != nil) || len(d.sinks) > 0
}

// BroadcastText is the message the shared chat receives for a new entry.
func BroadcastText(category string, amount, total core.Money) string {
	return fmt.Sprintf("📢 %s $%s was added. Total is now $%s", category, amount, total)
}

func (d *Dispatcher) NotifyAdded(ctx context.Context, category string, amount, total core.Money) {
	if !d.Enabled() {
		return
	}
	fields := applog.NewFields().
		WithOperation(applog.OpBroadcast).
		WithEntry(category, amount.String(), total.String())

	if d.target != 0 && d.sender != nil {
		if err := d.sender.SendBroadcast(ctx, d.target, BroadcastText(category, amount, total)); err != nil {
			d.logger.WarnContext(ctx, "Broadcast failed", append(fields.ToSlice(), applog.FieldChatID, d.target, applog.FieldError, err)...)
		}
	}

	ev := Event{
		Type:     EventEntryAdded,
		Category: category,
		Amount:   amount,
		Total:    total,
		At:       d.now(),
	}
	for _, s := range d.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			d.logger.WarnContext(ctx, "Event publish failed", append(fields.ToSlice(), applog.FieldError, err)...)
		}
	}
}

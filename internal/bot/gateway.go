package bot

import (
	"context"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

// ChatKind tells private conversations apart from shared group chats.
type ChatKind int

const (
	ChatPrivate ChatKind = iota
	ChatGroup
)

func (k ChatKind) String() string {
	if k == ChatGroup {
		return "group"
	}
	return "private"
}

// Inbound is one text message received from a chat.
type Inbound struct {
	ChatID int64
	Text   string
	Kind   ChatKind
}

// Gateway delivers replies to a chat. A nil keyboard leaves the chat's
// current buttons alone.
type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard Keyboard) error
	SendAudio(ctx context.Context, chatID int64, audio []byte) error
}

// Ledger is the part of ledger.Store the dialog drives.
type Ledger interface {
	AddEntry(ctx context.Context, category string, amount core.Money) (ledger.Result, error)
	ListEntries(ctx context.Context) []core.Entry
	DeleteEntry(ctx context.Context, index int) (ledger.Result, error)
	EditEntry(ctx context.Context, index int, amount core.Money) (ledger.Result, error)
	Reset(ctx context.Context) (core.Money, error)
	AddCategory(ctx context.Context, name string) error
	DeleteCategory(ctx context.Context, name string) error
	Categories(ctx context.Context) []string
	Total(ctx context.Context) core.Money
}

// Notifier is told about every expense that was recorded.
type Notifier interface {
	NotifyAdded(ctx context.Context, category string, amount, total core.Money)
}

// Synthesizer turns reply text into a voice note.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

var _ Ledger = (*ledger.Store)(nil)

// Package bot drives the per-chat dialog: it decodes each message against
// the chat's session state, applies the resulting ledger operation and sends
// the replies. Whatever the outcome, a finished step leaves the chat at the
// root menu.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ledgerbot/internal/core"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/session"
)

const defaultVoiceTimeout = 15 * time.Second

// Deps are the collaborators of a Controller. Notifier and Voice are optional.
type Deps struct {
	Ledger       Ledger
	Sessions     *session.Store
	Gateway      Gateway
	Notifier     Notifier
	Voice        Synthesizer
	Logger       *applog.Logger
	VoiceTimeout time.Duration
}

type Controller struct {
	ledger       Ledger
	sessions     *session.Store
	gateway      Gateway
	notifier     Notifier
	voice        Synthesizer
	logger       *applog.Logger
	voiceTimeout time.Duration
}

func NewController(d Deps) *Controller {
	logger := d.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	timeout := d.VoiceTimeout
	if timeout <= 0 {
		timeout = defaultVoiceTimeout
	}
	return &Controller{
		ledger:       d.Ledger,
		sessions:     d.Sessions,
		gateway:      d.Gateway,
		notifier:     d.Notifier,
		voice:        d.Voice,
		logger:       logger.WithComponent(applog.ComponentBot),
		voiceTimeout: timeout,
	}
}

// turn collects the replies of one inbound message. Send failures do not
// stop the dialog; they are joined and reported by Handle.
type turn struct {
	ctx  context.Context
	c    *Controller
	in   Inbound
	errs []error
}

func (t *turn) say(text string, kb Keyboard) {
	if err := t.c.gateway.SendText(t.ctx, t.in.ChatID, text, kb); err != nil {
		t.errs = append(t.errs, err)
	}
}

// menu presents the root menu and returns the root session.
func (t *turn) menu() session.Session {
	t.say(msgMenu, MenuKeyboard(t.c.ledger.Categories(t.ctx), t.in.Kind))
	return session.Root(t.in.ChatID)
}

// fail reports err to the user and falls back to the root menu.
func (t *turn) fail(op string, err error) session.Session {
	level := t.c.logger.InfoContext
	if !isUserError(err) {
		level = t.c.logger.ErrorContext
	}
	fields := applog.NewFields().
		WithChat(t.in.ChatID, t.in.Kind.String()).
		WithOperation(op).
		WithError(err)
	level(t.ctx, "Operation rejected", fields.ToSlice()...)

	t.say(errorText(err), nil)
	return t.menu()
}

func (t *turn) cancelled() session.Session {
	t.say(msgCancelled, nil)
	return t.menu()
}

// Handle processes one message. It returns the joined delivery errors, if
// any; ledger and input errors are answered in the chat instead.
func (c *Controller) Handle(ctx context.Context, in Inbound) error {
	t := &turn{ctx: ctx, c: c, in: in}
	text := strings.TrimSpace(in.Text)

	if strings.HasPrefix(text, "/") {
		switch commandName(text) {
		case "start", "menu":
			c.sessions.Reset(in.ChatID)
			t.menu()
		default:
			c.logger.DebugContext(ctx, "Ignoring unknown command", "command", text, applog.FieldChatID, in.ChatID)
		}
		return errors.Join(t.errs...)
	}

	sess, _ := c.sessions.Lookup(in.ChatID)
	next := c.step(t, sess, text)
	c.sessions.Put(next)

	if next.State != sess.State {
		c.logger.DebugContext(ctx, "Session transition",
			applog.FieldChatID, in.ChatID,
			"from", sess.State.String(),
			applog.FieldState, next.State.String())
	}
	return errors.Join(t.errs...)
}

func (c *Controller) step(t *turn, sess session.Session, text string) session.Session {
	switch sess.State {
	case session.EnteringAmount:
		return c.onAmount(t, sess, text, true)
	case session.ManualAmount:
		return c.onAmount(t, sess, text, false)
	case session.AddingCategory:
		return c.onNewCategory(t, text)
	case session.DeletingCategory:
		return c.onDeleteCategory(t, text)
	case session.DeletingEntry:
		return c.onDeleteIndex(t, sess, text)
	case session.EditingEntrySelect:
		return c.onEditIndex(t, sess, text)
	case session.EditingEntryAmount:
		return c.onEditAmount(t, sess, text)
	default:
		return c.onRoot(t, text)
	}
}

func (c *Controller) onRoot(t *turn, text string) session.Session {
	ctx := t.ctx
	action, isAction := ActionFromLabel(text)

	if t.in.Kind == ChatGroup {
		// Group chats share the ledger but not its management.
		switch action {
		case ActionShowExpenses:
			return c.showExpenses(t)
		case ActionPaid:
			return c.paid(t)
		}
		return session.Root(t.in.ChatID)
	}

	if isAction {
		switch action {
		case ActionAddCategory:
			t.say(msgAskCategoryName, CancelKeyboard())
			return session.Session{ChatID: t.in.ChatID, State: session.AddingCategory}
		case ActionDeleteCategory:
			t.say(msgChooseDeleteCat, CategoryDeleteKeyboard(c.ledger.Categories(ctx)))
			return session.Session{ChatID: t.in.ChatID, State: session.DeletingCategory}
		case ActionDeleteEntry:
			return c.pickEntry(t, msgAskDeleteNumber, msgNoEntriesDelete, session.DeletingEntry)
		case ActionEditEntry:
			return c.pickEntry(t, msgAskEditNumber, msgNoEntriesEdit, session.EditingEntrySelect)
		case ActionShowExpenses:
			return c.showExpenses(t)
		case ActionPaid:
			return c.paid(t)
		}
		return t.menu()
	}

	name := StripCategoryLabel(text)
	for _, cat := range c.ledger.Categories(ctx) {
		if cat == name {
			t.say(categorySelectedText(cat), AmountKeyboard())
			return session.Session{ChatID: t.in.ChatID, State: session.EnteringAmount, PendingCategory: cat}
		}
	}
	return t.menu()
}

// pickEntry shows the numbered entries and waits for an index. The list is
// kept as the session snapshot.
func (c *Controller) pickEntry(t *turn, header, empty string, next session.State) session.Session {
	entries := c.ledger.ListEntries(t.ctx)
	if len(entries) == 0 {
		t.say(empty, nil)
		return t.menu()
	}
	t.say(numberedList(header, entries), CancelKeyboard())
	return session.Session{ChatID: t.in.ChatID, State: next, Snapshot: entries}
}

func (c *Controller) showExpenses(t *turn) session.Session {
	entries := c.ledger.ListEntries(t.ctx)
	if len(entries) == 0 {
		t.say(msgNoExpenses, nil)
		return t.menu()
	}
	t.say(reportText(entries), nil)
	c.speak(t, totalSpeech(c.ledger.Total(t.ctx)))
	return t.menu()
}

func (c *Controller) paid(t *turn) session.Session {
	amount, err := c.ledger.Reset(t.ctx)
	if err != nil {
		return t.fail(applog.OpReset, err)
	}
	c.logger.InfoContext(t.ctx, "Ledger paid",
		applog.FieldChatID, t.in.ChatID,
		applog.FieldTotal, amount.String())
	t.say(msgPaid, nil)
	c.speak(t, paidSpeech(amount))
	return t.menu()
}

func (c *Controller) onAmount(t *turn, sess session.Session, text string, offerManual bool) session.Session {
	switch action, _ := ActionFromLabel(text); action {
	case ActionCancel:
		return t.cancelled()
	case ActionManualInput:
		if offerManual {
			t.say(msgAskManualAmount, CancelKeyboard())
			return session.Session{ChatID: t.in.ChatID, State: session.ManualAmount, PendingCategory: sess.PendingCategory}
		}
	}

	amount, err := core.ParseAmount(text)
	if err != nil {
		return t.fail(applog.OpAddEntry, err)
	}
	res, err := c.ledger.AddEntry(t.ctx, sess.PendingCategory, amount)
	if err != nil {
		return t.fail(applog.OpAddEntry, err)
	}

	t.say(addedText(res.Entry.Category, res.Entry.Amount, res.Total), nil)
	if c.notifier != nil {
		c.notifier.NotifyAdded(t.ctx, res.Entry.Category, res.Entry.Amount, res.Total)
	}
	return t.menu()
}

func (c *Controller) onNewCategory(t *turn, text string) session.Session {
	if action, _ := ActionFromLabel(text); action == ActionCancel {
		return t.cancelled()
	}
	if err := c.ledger.AddCategory(t.ctx, text); err != nil {
		return t.fail(applog.OpAddCategory, err)
	}
	t.say(msgCategoryAdded, nil)
	return t.menu()
}

func (c *Controller) onDeleteCategory(t *turn, text string) session.Session {
	if action, _ := ActionFromLabel(text); action == ActionCancel {
		return t.cancelled()
	}
	name := StripCategoryLabel(text)
	if err := c.ledger.DeleteCategory(t.ctx, name); err != nil {
		return t.fail(applog.OpDeleteCategory, err)
	}
	t.say(categoryDeletedText(name), nil)
	return t.menu()
}

func (c *Controller) onDeleteIndex(t *turn, sess session.Session, text string) session.Session {
	if action, _ := ActionFromLabel(text); action == ActionCancel {
		return t.cancelled()
	}
	idx, err := parseIndex(text, len(sess.Snapshot))
	if err != nil {
		return t.fail(applog.OpDeleteEntry, err)
	}
	// The store checks idx against the ledger as it is now, not as listed.
	res, err := c.ledger.DeleteEntry(t.ctx, idx)
	if err != nil {
		return t.fail(applog.OpDeleteEntry, err)
	}
	t.say(deletedText(res.Entry, res.Total), nil)
	return t.menu()
}

func (c *Controller) onEditIndex(t *turn, sess session.Session, text string) session.Session {
	if action, _ := ActionFromLabel(text); action == ActionCancel {
		return t.cancelled()
	}
	idx, err := parseIndex(text, len(sess.Snapshot))
	if err != nil {
		return t.fail(applog.OpEditEntry, err)
	}
	current := c.ledger.ListEntries(t.ctx)
	if idx > len(current) {
		return t.fail(applog.OpEditEntry, indexError(idx, len(current)))
	}
	t.say(askEditAmountText(current[idx-1]), CancelKeyboard())
	return session.Session{
		ChatID:           t.in.ChatID,
		State:            session.EditingEntryAmount,
		PendingEditIndex: idx,
	}
}

func (c *Controller) onEditAmount(t *turn, sess session.Session, text string) session.Session {
	if action, _ := ActionFromLabel(text); action == ActionCancel {
		return t.cancelled()
	}
	amount, err := core.ParseAmount(text)
	if err != nil {
		return t.fail(applog.OpEditEntry, err)
	}
	res, err := c.ledger.EditEntry(t.ctx, sess.PendingEditIndex, amount)
	if err != nil {
		return t.fail(applog.OpEditEntry, err)
	}
	t.say(editedText(res.Entry.Amount, res.Total), nil)
	return t.menu()
}

// speak sends a voice note. Synthesis or delivery failures are logged and
// otherwise ignored.
func (c *Controller) speak(t *turn, text string) {
	if c.voice == nil {
		return
	}
	ctx, cancel := context.WithTimeout(t.ctx, c.voiceTimeout)
	defer cancel()

	audio, err := c.voice.Synthesize(ctx, text)
	if err == nil {
		err = c.gateway.SendAudio(ctx, t.in.ChatID, audio)
	}
	if err != nil {
		c.logger.WarnContext(t.ctx, "Voice reply skipped",
			applog.FieldChatID, t.in.ChatID,
			applog.FieldOperation, applog.OpSynthesize,
			applog.FieldError, err)
	}
}

func parseIndex(text string, listed int) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", core.ErrIndexOutOfRange, text)
	}
	if idx < 1 || idx > listed {
		return 0, indexError(idx, listed)
	}
	return idx, nil
}

func indexError(idx, n int) error {
	return fmt.Errorf("%w: %d not in [1, %d]", core.ErrIndexOutOfRange, idx, n)
}

func commandName(text string) string {
	cmd, _, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	// Group chats address commands as /menu@botname.
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}

func isUserError(err error) bool {
	return errors.Is(err, core.ErrParse) || errors.Is(err, core.ErrIndexOutOfRange)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, core.ErrIndexOutOfRange):
		return msgInvalidNumber
	case errors.Is(err, core.ErrEmptyCategory):
		return msgEmptyCategory
	case errors.Is(err, core.ErrCategoryTooLong):
		return msgCategoryTooLong
	case errors.Is(err, core.ErrCategoryChars):
		return msgCategoryChars
	case errors.Is(err, core.ErrParse):
		return msgInvalidAmount
	case errors.Is(err, core.ErrStorage):
		return msgSaveFailed
	default:
		return msgSomethingWrong
	}
}

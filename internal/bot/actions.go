package bot

import "strings"

// Action is a menu command decoded from a button label.
type Action int

const (
	ActionNone Action = iota
	ActionAddCategory
	ActionDeleteCategory
	ActionDeleteEntry
	ActionEditEntry
	ActionShowExpenses
	ActionPaid
	ActionManualInput
	ActionCancel
)

type actionDef struct {
	action Action
	emoji  string
	text   string
}

var actionDefs = []actionDef{
	{ActionAddCategory, "➕", "Add Category"},
	{ActionDeleteCategory, "🗑️", "Delete Category"},
	{ActionDeleteEntry, "🗑️", "Delete Entry"},
	{ActionEditEntry, "✏️", "Edit Entry"},
	{ActionShowExpenses, "📋", "Show Expenses"},
	{ActionPaid, "💵", "Paid"},
	{ActionManualInput, "", "Manual Input"},
	{ActionCancel, "", "Cancel"},
}

// Label returns the button text shown for a.
func (a Action) Label() string {
	for _, d := range actionDefs {
		if d.action == a {
			if d.emoji == "" {
				return d.text
			}
			return d.emoji + " " + d.text
		}
	}
	return ""
}

// ActionFromLabel maps a button label, with or without its emoji, to an
// action. Anything else is not a command.
func ActionFromLabel(text string) (Action, bool) {
	text = strings.TrimSpace(text)
	for _, d := range actionDefs {
		if text == d.text || text == d.action.Label() {
			return d.action, true
		}
	}
	return ActionNone, false
}

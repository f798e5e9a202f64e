package bot

import "strings"

// Keyboard is a set of suggested reply rows. A nil keyboard leaves whatever
// the chat is currently showing.
type Keyboard [][]string

const defaultCategoryEmoji = "🍱"

var categoryEmoji = map[string]string{
	"Lunch":     "🍽️",
	"Dinner":    "🍽️",
	"Groceries": "🛒",
}

// Prefixes stripped from incoming category labels. Some clients drop the
// variation selector, so both spellings of the plate emoji are accepted.
var categoryPrefixes = []string{"🍽️", "🍽", "🛒", defaultCategoryEmoji}

// CategoryLabel decorates a category name for display.
func CategoryLabel(name string) string {
	emoji, ok := categoryEmoji[name]
	if !ok {
		emoji = defaultCategoryEmoji
	}
	return emoji + " " + name
}

// StripCategoryLabel undoes CategoryLabel.
func StripCategoryLabel(text string) string {
	text = strings.TrimSpace(text)
	for _, p := range categoryPrefixes {
		if rest, ok := strings.CutPrefix(text, p+" "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return text
}

func pairs(labels []string) Keyboard {
	var kb Keyboard
	for i := 0; i < len(labels); i += 2 {
		end := min(i+2, len(labels))
		kb = append(kb, append([]string(nil), labels[i:end]...))
	}
	return kb
}

func categoryLabels(categories []string) []string {
	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = CategoryLabel(c)
	}
	return labels
}

// MenuKeyboard is the root menu. Group chats only get the shared actions.
func MenuKeyboard(categories []string, kind ChatKind) Keyboard {
	if kind == ChatGroup {
		return Keyboard{
			{ActionShowExpenses.Label()},
			{ActionPaid.Label()},
		}
	}
	kb := pairs(categoryLabels(categories))
	return append(kb,
		[]string{ActionAddCategory.Label(), ActionDeleteCategory.Label()},
		[]string{ActionDeleteEntry.Label(), ActionEditEntry.Label()},
		[]string{ActionShowExpenses.Label()},
		[]string{ActionPaid.Label()},
	)
}

// CategoryDeleteKeyboard lists categories plus a cancel button.
func CategoryDeleteKeyboard(categories []string) Keyboard {
	return append(pairs(categoryLabels(categories)), []string{ActionCancel.Label()})
}

// QuickAmounts are offered right after a category is picked.
var QuickAmounts = []string{"10", "12", "15", "20"}

func AmountKeyboard() Keyboard {
	return append(pairs(QuickAmounts), []string{ActionManualInput.Label()})
}

// CancelKeyboard is shown while the bot waits for free text.
func CancelKeyboard() Keyboard {
	return Keyboard{{ActionCancel.Label()}}
}

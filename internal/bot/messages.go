package bot

import (
	"fmt"
	"strings"

	"ledgerbot/internal/core"
)

const (
	msgMenu            = "🤔 What will you like to do?"
	msgAskCategoryName = "✏️ Send me the new category name:"
	msgCategoryAdded   = "✅ Category added."
	msgChooseDeleteCat = "🗑️ Choose a category to delete:"
	msgCancelled       = "❌ Cancelled."
	msgAskManualAmount = "💰 Enter the amount spent (e.g. 12.50):"
	msgInvalidAmount   = "❌ Invalid amount."
	msgInvalidNumber   = "❌ Invalid number."
	msgEmptyCategory   = "❌ Category name cannot be empty."
	msgCategoryTooLong = "❌ Category name is too long."
	msgCategoryChars   = "❌ Category name cannot contain $, : or | or line breaks."
	msgSaveFailed      = "⚠️ Could not save that change. Nothing was modified, please try again."
	msgNoEntriesDelete = "📭 No entries to delete."
	msgNoEntriesEdit   = "📭 No entries to edit."
	msgNoExpenses      = "📭 No expenses recorded yet."
	msgPaid            = "✅ All paid. Total reset to $0.00"
	msgAskDeleteNumber = "🗑️ Send me the number of the entry to delete:"
	msgAskEditNumber   = "✏️ Send me the number of the entry to edit:"
	msgSomethingWrong  = "❌ Something went wrong."
	undatedGroupLabel  = "Undated"
)

func categorySelectedText(category string) string {
	return fmt.Sprintf("🍱 %s selected. Choose amount or Manual Input:", category)
}

func addedText(category string, amount, total core.Money) string {
	return fmt.Sprintf("✅ Added: %s – $%s\n🧾 Current Total: $%s", category, amount, total)
}

func deletedText(e core.Entry, total core.Money) string {
	return fmt.Sprintf("🗑️ Deleted: %s\n🧾 Current Total: $%s", e.Line(), total)
}

func editedText(amount, total core.Money) string {
	return fmt.Sprintf("✏️ Updated entry to $%s\n🧾 Current Total: $%s", amount, total)
}

func categoryDeletedText(name string) string {
	return fmt.Sprintf("🗑️ Category %s deleted.", name)
}

func askEditAmountText(e core.Entry) string {
	return "💰 Enter the new amount for:\n" + e.Line()
}

// numberedList renders a snapshot as "1. <line>" rows under header.
func numberedList(header string, entries []core.Entry) string {
	var b strings.Builder
	b.WriteString(header)
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s", i+1, e.Line())
	}
	return b.String()
}

// reportText groups entries by date label, in order of first appearance.
func reportText(entries []core.Entry) string {
	var order []string
	groups := map[string][]string{}
	for _, e := range entries {
		date := e.DateLabel
		if date == "" {
			date = undatedGroupLabel
		}
		if _, ok := groups[date]; !ok {
			order = append(order, date)
		}
		groups[date] = append(groups[date], e.Description())
	}

	var b strings.Builder
	b.WriteString("📋 Expenses by Date:\n")
	for _, date := range order {
		fmt.Fprintf(&b, "\n📅 %s\n", date)
		for i, item := range groups[date] {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(" - " + item)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\n💵 Current Total: $%s", core.Sum(entries))
	return b.String()
}

func totalSpeech(total core.Money) string {
	return fmt.Sprintf("The current total is %s dollars", total)
}

func paidSpeech(paid core.Money) string {
	return fmt.Sprintf("%s dollars has been paid. Total reset to zero.", paid)
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

type (
	// Money is an amount in cents. Ledger amounts are never negative.
	Money struct {
		Cents int64
	}

	// Entry is one recorded expense. Entries keep the exact line they were
	// read from so legacy or hand-edited lines survive a rewrite untouched.
	Entry struct {
		DateLabel string
		Category  string
		Amount    Money

		line string
	}
)

// Error taxonomy shared by the ledger, the storage backends and the bot.
var (
	ErrParse           = errors.New("parse error")
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrParse)
	ErrEmptyCategory   = fmt.Errorf("%w: empty category", ErrParse)
	ErrIndexOutOfRange = errors.New("entry index out of range")
	ErrStorage         = errors.New("storage failure")
	ErrCategoryTooLong = fmt.Errorf("%w: category too long (max %d characters)", ErrParse, MaxCategoryLength)
	ErrCategoryChars   = fmt.Errorf("%w: category contains a reserved character", ErrParse)
)

// reservedCategoryChars delimit the fields of a persisted entry line.
const reservedCategoryChars = "$:|"

// MaxCategoryLength bounds category names so keyboard labels stay usable.
const MaxCategoryLength = 64

// DefaultCategories seeds an empty category list.
var DefaultCategories = []string{"Lunch", "Dinner", "Groceries"}

// DateLabel renders t as "DD-MM (Mon)".
func DateLabel(t time.Time) string {
	return t.Format("02-01") + " (" + t.Format("Mon") + ")"
}

// NewEntry builds an entry with its canonical line.
func NewEntry(dateLabel, category string, amount Money) Entry {
	return Entry{DateLabel: dateLabel, Category: category, Amount: amount}
}

// Line returns the persisted form "<dateLabel> | <category>: $<amount>".
func (e Entry) Line() string {
	if e.line != "" {
		return e.line
	}
	return fmt.Sprintf("%s | %s: $%s", e.DateLabel, e.Category, e.Amount)
}

// Description is the part of the line after the date label.
func (e Entry) Description() string {
	_, desc := splitLine(e.Line())
	return desc
}

// WithAmount returns a copy of e carrying amount. Date and category are kept;
// an entry that never had a date label gets fallbackDate.
func (e Entry) WithAmount(amount Money, fallbackDate string) Entry {
	date := e.DateLabel
	if date == "" {
		date = fallbackDate
	}
	return NewEntry(date, e.Category, amount)
}

// ParseEntryLine recovers an entry from a persisted line. It never fails:
// a line without a "$<number>" token yields a zero amount.
func ParseEntryLine(line string) Entry {
	line = strings.TrimSpace(line)
	date, desc := splitLine(line)
	category := desc
	if i := strings.Index(desc, ":"); i >= 0 {
		category = desc[:i]
	}
	return Entry{
		DateLabel: date,
		Category:  strings.TrimSpace(category),
		Amount:    ExtractAmount(line),
		line:      line,
	}
}

func splitLine(line string) (date, desc string) {
	parts := strings.SplitN(line, "|", 2)
	if len(parts) != 2 {
		return "", strings.TrimSpace(line)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// ValidateCategory normalises a category name. Empty names, names longer than
// MaxCategoryLength and names that would not survive the entry line grammar
// (line separators, control characters, "$", ":" or "|") are rejected.
func ValidateCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyCategory
	}
	if len([]rune(name)) > MaxCategoryLength {
		return "", ErrCategoryTooLong
	}
	if strings.ContainsAny(name, reservedCategoryChars) || strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", ErrCategoryChars
	}
	return name, nil
}

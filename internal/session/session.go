// Package session keeps per-chat dialog state in memory. Sessions are never
// persisted: an evicted or lost session just sends the chat back to the
// root menu.
package session

import (
	"slices"
	"time"

	"ledgerbot/internal/cache"
	"ledgerbot/internal/core"
)

// State is a dialog state.
type State int

const (
	MenuRoot State = iota
	SelectingCategory
	EnteringAmount
	ManualAmount
	AddingCategory
	DeletingCategory
	DeletingEntry
	EditingEntrySelect
	EditingEntryAmount
)

var stateNames = [...]string{
	MenuRoot:           "menu_root",
	SelectingCategory:  "selecting_category",
	EnteringAmount:     "entering_amount",
	ManualAmount:       "manual_amount",
	AddingCategory:     "adding_category",
	DeletingCategory:   "deleting_category",
	DeletingEntry:      "deleting_entry",
	EditingEntrySelect: "editing_entry_select",
	EditingEntryAmount: "editing_entry_amount",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Session is the dialog state of one chat.
type Session struct {
	ChatID           int64
	State            State
	PendingCategory  string
	Snapshot         []core.Entry
	PendingEditIndex int
}

// Root returns a fresh session at the root menu.
func Root(chatID int64) Session {
	return Session{ChatID: chatID, State: MenuRoot}
}

// Store maps chat IDs to sessions and forgets chats idle longer than the TTL.
type Store struct {
	cache *cache.LRUCache[int64, Session]
}

// NewStore keeps at most maxChats sessions, each for ttl after its last use.
func NewStore(maxChats int, ttl time.Duration) *Store {
	return &Store{cache: cache.NewLRUCache[int64, Session](maxChats, ttl)}
}

// Lookup returns the chat's session and whether one existed.
func (s *Store) Lookup(chatID int64) (Session, bool) {
	sess, ok := s.cache.Get(chatID)
	if !ok {
		return Root(chatID), false
	}
	sess.Snapshot = slices.Clone(sess.Snapshot)
	return sess, true
}

// Put replaces the chat's session.
func (s *Store) Put(sess Session) {
	sess.Snapshot = slices.Clone(sess.Snapshot)
	s.cache.Set(sess.ChatID, sess)
}

// Reset puts the chat back at the root menu.
func (s *Store) Reset(chatID int64) Session {
	sess := Root(chatID)
	s.cache.Set(chatID, sess)
	return sess
}

func (s *Store) Delete(chatID int64) {
	s.cache.Delete(chatID)
}

func (s *Store) Size() int {
	return s.cache.Size()
}

// Cleaner exposes the backing cache so a cache.Manager can evict idle chats.
func (s *Store) Cleaner() cache.Cleaner {
	return s.cache
}

package bot

import (
	"context"
	"sync"

	applog "ledgerbot/internal/log"
)

// HandlerFunc processes one inbound message.
type HandlerFunc func(ctx context.Context, in Inbound) error

// Serializer runs messages of the same chat one after another, in arrival
// order, while different chats proceed concurrently. A chat's goroutine
// exits as soon as its queue drains.
type Serializer struct {
	handle HandlerFunc
	logger *applog.Logger

	mu     sync.Mutex
	queues map[int64]*chatQueue
	wg     sync.WaitGroup
}

type chatQueue struct {
	pending []Inbound
}

func NewSerializer(handle HandlerFunc, logger *applog.Logger) *Serializer {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Serializer{
		handle: handle,
		logger: logger.WithComponent(applog.ComponentBot),
		queues: make(map[int64]*chatQueue),
	}
}

// Dispatch queues in for its chat. It never blocks on the handler.
func (s *Serializer) Dispatch(ctx context.Context, in Inbound) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.queues[in.ChatID]; ok {
		q.pending = append(q.pending, in)
		return
	}
	q := &chatQueue{pending: []Inbound{in}}
	s.queues[in.ChatID] = q
	s.wg.Add(1)
	go s.drain(ctx, in.ChatID, q)
}

func (s *Serializer) drain(ctx context.Context, chatID int64, q *chatQueue) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if len(q.pending) == 0 {
			delete(s.queues, chatID)
			s.mu.Unlock()
			return
		}
		in := q.pending[0]
		q.pending = q.pending[1:]
		s.mu.Unlock()

		if err := s.handle(ctx, in); err != nil {
			s.logger.ErrorContext(ctx, "Failed to reply",
				applog.FieldChatID, chatID,
				applog.FieldError, err)
		}
	}
}

// Active reports how many chats currently have a running queue.
func (s *Serializer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}

// Wait blocks until every queued message has been handled.
func (s *Serializer) Wait() {
	s.wg.Wait()
}

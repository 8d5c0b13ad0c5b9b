// Package scheduler owns the recurring per-chat timers. Every chat gets its
// own set of task goroutines, so a slow handler in one chat delays only its
// own next firing and never another chat's.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskKind names one recurring task bound to a chat.
type TaskKind string

const (
	TaskQuiz   TaskKind = "quiz"
	TaskSalary TaskKind = "salary"
	TaskDecay  TaskKind = "decay"
	TaskEvent  TaskKind = "event"
	TaskIncome TaskKind = "income"
)

// Handler executes one tick of one task for one chat.
type Handler func(chatID int64, kind TaskKind)

// TaskSpec binds a task kind to its interval and initial delay.
type TaskSpec struct {
	Kind  TaskKind
	Every time.Duration
	After time.Duration
}

// Scheduler keeps the registry mapping chat id to its active task handles.
type Scheduler struct {
	handler Handler
	specs   []TaskSpec

	mu      sync.Mutex
	chats   map[int64]map[TaskKind]*taskHandle
	stopped bool
	wg      sync.WaitGroup
}

type taskHandle struct {
	id   uuid.UUID
	kind TaskKind
	stop chan struct{}
}

// New creates a scheduler that invokes handler for every fired task.
func New(handler Handler, specs []TaskSpec) *Scheduler {
	return &Scheduler{
		handler: handler,
		specs:   specs,
		chats:   make(map[int64]map[TaskKind]*taskHandle),
	}
}

// AddChat registers a chat for all task specs. Adding an already-scheduled
// chat is a no-op and never creates duplicate timers. Reports whether the
// chat was newly added.
func (s *Scheduler) AddChat(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if _, ok := s.chats[chatID]; ok {
		return false
	}

	handles := make(map[TaskKind]*taskHandle, len(s.specs))
	for _, spec := range s.specs {
		h := &taskHandle{
			id:   uuid.New(),
			kind: spec.Kind,
			stop: make(chan struct{}),
		}
		handles[spec.Kind] = h
		s.wg.Add(1)
		go s.run(chatID, spec, h)
	}
	s.chats[chatID] = handles

	slog.Info("chat scheduled", "chat", chatID, "tasks", len(handles))
	return true
}

// RemoveChat stops every timer of a chat and drops it from the registry.
func (s *Scheduler) RemoveChat(chatID int64) {
	s.mu.Lock()
	handles, ok := s.chats[chatID]
	delete(s.chats, chatID)
	s.mu.Unlock()

	if !ok {
		return
	}
	for _, h := range handles {
		close(h.stop)
	}
	slog.Info("chat unscheduled", "chat", chatID)
}

// Chats lists the currently scheduled chat ids.
func (s *Scheduler) Chats() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.chats))
	for id := range s.chats {
		ids = append(ids, id)
	}
	return ids
}

// Scheduled reports whether a chat is registered.
func (s *Scheduler) Scheduled(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chats[chatID]
	return ok
}

// Stop halts all timers and waits for running handlers to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	chats := s.chats
	s.chats = make(map[int64]map[TaskKind]*taskHandle)
	s.mu.Unlock()

	for _, handles := range chats {
		for _, h := range handles {
			close(h.stop)
		}
	}
	s.wg.Wait()
}

// run is one task goroutine: an initial delay, then a fixed-interval loop.
// Handler panics are contained so a bad tick never kills future ones.
func (s *Scheduler) run(chatID int64, spec TaskSpec, h *taskHandle) {
	defer s.wg.Done()

	delay := time.NewTimer(spec.After)
	defer delay.Stop()
	select {
	case <-h.stop:
		return
	case <-delay.C:
	}
	s.fire(chatID, spec.Kind, h)

	ticker := time.NewTicker(spec.Every)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			s.fire(chatID, spec.Kind, h)
		}
	}
}

func (s *Scheduler) fire(chatID int64, kind TaskKind, h *taskHandle) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tick handler panicked", "chat", chatID, "task", kind, "handle", h.id, "panic", r)
		}
	}()
	s.handler(chatID, kind)
}

package toasts

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const DefaultHistory = 50

// Toast is one transient notification shown to the operator.
type Toast struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Retryable bool      `json:"retryable,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is the process-wide notification channel every view publishes to.
type Service struct {
	mu          sync.Mutex
	history     []Toast
	limit       int
	subscribers map[int]chan Toast
	nextSub     int
	logg        *logger.Logger
	now         func() time.Time
}

func New(limit int, logg *logger.Logger) *Service {
	if limit <= 0 {
		limit = DefaultHistory
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		limit:       limit,
		subscribers: make(map[int]chan Toast),
		logg:        logg,
		now:         time.Now,
	}
}

func (s *Service) Success(message string) { s.publish(LevelSuccess, message, "", false) }
func (s *Service) Info(message string)    { s.publish(LevelInfo, message, "", false) }
func (s *Service) Warning(message string) { s.publish(LevelWarning, message, "", false) }
func (s *Service) Error(message string)   { s.publish(LevelError, message, "", false) }

// FromError publishes err with operator-facing wording. Malformed local data is only
// ever a warning; everything else is an error.
func (s *Service) FromError(err error) Toast {
	if err == nil {
		return Toast{}
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return s.publish(LevelError, pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage, string(pkgerrors.CodeInternal), false)
	}
	meta := pkgerrors.MetadataFor(typed.Code())
	level := LevelError
	if typed.Code() == pkgerrors.CodeMalformedLocalData {
		level = LevelWarning
	}
	return s.publish(level, Message(typed), string(typed.Code()), meta.Retryable)
}

// Message picks the text shown for a typed error.
func Message(err *pkgerrors.Error) string {
	switch err.Code() {
	case pkgerrors.CodeMissingField, pkgerrors.CodeValidation, pkgerrors.CodeStateConflict, pkgerrors.CodeRemoteCall:
		if err.Message() != "" {
			return err.Message()
		}
	}
	return pkgerrors.MetadataFor(err.Code()).PublicMessage
}

func (s *Service) publish(level Level, message, code string, retryable bool) Toast {
	toast := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Code:      code,
		Retryable: retryable,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.history = append(s.history, toast)
	if overflow := len(s.history) - s.limit; overflow > 0 {
		s.history = append([]Toast(nil), s.history[overflow:]...)
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- toast:
		default:
		}
	}
	s.mu.Unlock()

	ctx := s.logg.WithFields(context.Background(), map[string]any{"toast_level": string(level), "toast_code": code})
	s.logg.Debug(ctx, message)
	return toast
}

// Recent returns the retained history, oldest first.
func (s *Service) Recent() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Toast(nil), s.history...)
}

// Drain returns the retained history and clears it.
func (s *Service) Drain() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.history
	s.history = nil
	if out == nil {
		out = []Toast{}
	}
	return out
}

// Subscribe streams new toasts. Slow subscribers miss toasts rather than block publishers.
func (s *Service) Subscribe(buffer int) (<-chan Toast, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Toast, buffer)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

package notifications

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/jewelry-admin/internal/remote"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

// Remote is the backend surface for header notifications.
type Remote interface {
	Notifications(ctx context.Context) ([]remote.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Service keeps the last fetched notification list for the header bell.
type Service struct {
	remote Remote
	logg   *logger.Logger

	mu        sync.RWMutex
	items     []remote.Notification
	fetchedAt time.Time
}

// Snapshot is what the header renders.
type Snapshot struct {
	Items     []remote.Notification `json:"items"`
	Unread    int                   `json:"unread"`
	FetchedAt *time.Time            `json:"fetchedAt,omitempty"`
}

// NewService wires notifications dependencies.
func NewService(r Remote, logg *logger.Logger) (*Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications remote required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{remote: r, logg: logg, items: []remote.Notification{}}, nil
}

// Refresh fetches the list from the backend. On failure the previous list is kept.
func (s *Service) Refresh(ctx context.Context) error {
	items, err := s.remote.Notifications(ctx)
	if err != nil {
		return err
	}
	if items == nil {
		items = []remote.Notification{}
	}
	s.mu.Lock()
	s.items = items
	s.fetchedAt = time.Now().UTC()
	s.mu.Unlock()
	return nil
}

// List returns the cached list with the unread count.
func (s *Service) List() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]remote.Notification, len(s.items))
	copy(items, s.items)
	snap := Snapshot{Items: items, Unread: countUnread(items)}
	if !s.fetchedAt.IsZero() {
		at := s.fetchedAt
		snap.FetchedAt = &at
	}
	return snap
}

// UnreadCount is the badge number.
func (s *Service) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countUnread(s.items)
}

// MarkRead flags id as read remotely, then locally.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	if err := s.remote.MarkNotificationRead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID.String() == id {
			s.items[i].IsRead = true
			return nil
		}
	}
	s.logg.Warn(s.logg.WithField(ctx, "notification_id", id), "marked notification not in cached list")
	return nil
}

func countUnread(items []remote.Notification) int {
	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	return unread
}

package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/safar/maison-store/internal/models"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type CursorPage struct {
	Items      []models.Order `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// OrderCursor points at the last order of the previous page.
type OrderCursor struct {
	Date time.Time `json:"date"`
	ID   string    `json:"id"`
}

func EncodeCursor(cursor OrderCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

func DecodeCursor(encoded string) (OrderCursor, error) {
	var cursor OrderCursor

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(data, &cursor); err != nil {
		return cursor, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return cursor, nil
}

// ListOrders pages through the history newest first. An empty cursor starts
// at the most recent order.
func (s *Store) ListOrders(cursor string, limit int) (*CursorPage, error) {
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if cursor != "" {
		c, err := DecodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		start = s.cursorStartLocked(c)
	}

	end := start + limit
	hasMore := end < len(s.orders)
	if end > len(s.orders) {
		end = len(s.orders)
	}

	items := make([]models.Order, 0, end-start)
	for _, o := range s.orders[start:end] {
		items = append(items, o.Clone())
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = EncodeCursor(OrderCursor{Date: last.Date, ID: last.ID})
	}

	return &CursorPage{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// cursorStartLocked resumes right after the cursor order. If that order is
// gone it resumes at the first order older than the cursor date.
func (s *Store) cursorStartLocked(c OrderCursor) int {
	if i, ok := s.findOrderLocked(c.ID); ok {
		return i + 1
	}
	for i, o := range s.orders {
		if o.Date.Before(c.Date) {
			return i
		}
	}
	return len(s.orders)
}

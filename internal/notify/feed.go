package notify

import (
	"sync"
	"time"
)

// Level is the severity shown to the user.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Notification is a transient user-facing message.
type Notification struct {
	ID        uint64    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feed keeps notifications until they expire.
type Feed struct {
	mu    sync.Mutex
	ttl   time.Duration
	items []Notification
	seq   uint64
	now   func() time.Time
}

// NewFeed creates a Feed. A ttl <= 0 uses DefaultTTL.
func NewFeed(ttl time.Duration) *Feed {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Feed{ttl: ttl, now: time.Now}
}

// Notify appends a notification.
func (f *Feed) Notify(level Level, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	now := f.now()
	f.pruneLocked(now)
	f.items = append(f.items, Notification{
		ID:        f.seq,
		Level:     level,
		Message:   msg,
		CreatedAt: now,
	})
}

// Active returns the notifications that have not yet expired, oldest first.
func (f *Feed) Active() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pruneLocked(f.now())
	return append([]Notification(nil), f.items...)
}

func (f *Feed) pruneLocked(now time.Time) {
	cutoff := now.Add(-f.ttl)
	i := 0
	for ; i < len(f.items); i++ {
		if f.items[i].CreatedAt.After(cutoff) {
			break
		}
	}
	if i > 0 {
		f.items = append(f.items[:0], f.items[i:]...)
	}
}

package clock

import (
	"sync"
	"time"
)

// DateLayout is how calendar dates travel to the inventory service.
const DateLayout = time.DateOnly

type Clock interface {
	// Now is always UTC so deadlines compare the same way the database stores them.
	Now() time.Time
	// Today is the calendar date at the store, which may differ from the UTC date near midnight.
	Today() string
}

type RealClock struct {
	store *time.Location
}

func NewRealClock(store *time.Location) Clock {
	if store == nil {
		store = time.UTC
	}
	return &RealClock{store: store}
}

// LoadStoreLocation resolves an IANA zone name; empty means UTC.
func LoadStoreLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

func (c *RealClock) Today() string {
	return time.Now().In(c.store).Format(DateLayout)
}

// MockClock is safe for concurrent use; enrichment fans out across goroutines.
type MockClock struct {
	mu          sync.RWMutex
	currentTime time.Time
	store       *time.Location
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t.UTC(), store: time.UTC}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

func (c *MockClock) Today() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime.In(c.store).Format(DateLayout)
}

func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t.UTC()
}

func (c *MockClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}

// InStore changes the zone Today reports in.
func (c *MockClock) InStore(loc *time.Location) *MockClock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = loc
	return c
}

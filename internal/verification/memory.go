package verification

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// MemoryRegistry keeps codes in process memory. Only suitable for a single
// instance: codes issued by one process cannot be verified by another.
type MemoryRegistry struct {
	entries *ccache.Cache[Entry]
	now     func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: ccache.New(ccache.Configure[Entry]().MaxSize(100_000)),
		now:     time.Now,
	}
}

func (m *MemoryRegistry) Put(_ context.Context, email string, entry Entry) error {
	m.entries.Set(email, entry, retentionFor(entry, m.now()))
	return nil
}

func (m *MemoryRegistry) Get(_ context.Context, email string) (*Entry, error) {
	item := m.entries.Get(email)
	if item == nil || item.Expired() {
		return nil, nil
	}
	entry := item.Value()
	return &entry, nil
}

func (m *MemoryRegistry) Delete(_ context.Context, email string) error {
	m.entries.Delete(email)
	return nil
}

// Stop releases the cache's background worker.
func (m *MemoryRegistry) Stop() {
	m.entries.Stop()
}

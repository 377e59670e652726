package cache

import (
	"context"
	"sync"
	"time"

	"lecture-sync/pkg/models"
)

type memoryEntry struct {
	job       *models.Job
	expiresAt time.Time
}

type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[models.JobID]memoryEntry
	now     func() time.Time
}

// NewMemoryCache crée un cache en mémoire ; ttl <= 0 signifie sans expiration
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[models.JobID]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(ctx context.Context, id models.JobID) (*models.Job, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.job.Clone(), true, nil
}

func (m *MemoryCache) Set(ctx context.Context, job *models.Job) error {
	if job == nil || job.ID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[job.ID] = m.entry(job)
	return nil
}

func (m *MemoryCache) SetMany(ctx context.Context, jobs []models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range jobs {
		if jobs[i].ID == "" {
			continue
		}
		m.entries[jobs[i].ID] = m.entry(&jobs[i])
	}
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, id models.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryCache) entry(job *models.Job) memoryEntry {
	e := memoryEntry{job: job.Clone()}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	return e
}

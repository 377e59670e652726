package tracking

import (
	"context"
	"sort"
	"sync"
	"time"

	"lecture-sync/internal/client"
	"lecture-sync/internal/jobs"
	"lecture-sync/pkg/models"
)

// Registry garde un Tracker par job ouvert. Les pollers vivent aussi longtemps
// que le contexte du registre, pas celui de la requête qui les a ouverts.
type Registry struct {
	ctx     context.Context
	service jobs.JobService
	opts    []Option
	now     func() time.Time

	mu       sync.Mutex
	trackers map[models.JobID]*Tracker
}

func NewRegistry(ctx context.Context, service jobs.JobService, opts ...Option) *Registry {
	return &Registry{
		ctx:      ctx,
		service:  service,
		opts:     opts,
		now:      time.Now,
		trackers: make(map[models.JobID]*Tracker),
	}
}

// Open retourne le tracker du job, en le créant et l'activant si besoin.
// Pendant le premier fetch d'un tracker, les appels concurrents attendent son
// résultat.
func (r *Registry) Open(ctx context.Context, id models.JobID, initial *models.Job) (*Tracker, error) {
	r.mu.Lock()
	t, ok := r.trackers[id]
	if ok && !t.Active() && t.Snapshot().Terminal() {
		r.mu.Unlock()
		return t, nil
	}
	if !ok {
		t = NewTracker(r.service, id, r.opts...)
		r.trackers[id] = t
	}
	r.mu.Unlock()

	if err := t.Activate(r.ctx, initial); err != nil {
		if client.IsNotFound(err) {
			r.mu.Lock()
			if r.trackers[id] == t {
				delete(r.trackers, id)
			}
			r.mu.Unlock()
		}
		return t, err
	}
	return t, nil
}

func (r *Registry) Get(id models.JobID) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[id]
	return t, ok
}

// Close désactive et oublie le tracker du job
func (r *Registry) Close(id models.JobID) bool {
	r.mu.Lock()
	t, ok := r.trackers[id]
	delete(r.trackers, id)
	r.mu.Unlock()

	if ok {
		t.Deactivate()
	}
	return ok
}

// PruneFinished retire les trackers terminés depuis plus de maxAge
func (r *Registry) PruneFinished(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)

	r.mu.Lock()
	var pruned []*Tracker
	for id, t := range r.trackers {
		finished := t.FinishedAt()
		if !finished.IsZero() && finished.Before(cutoff) {
			pruned = append(pruned, t)
			delete(r.trackers, id)
		}
	}
	r.mu.Unlock()

	for _, t := range pruned {
		t.Deactivate()
	}
	return len(pruned)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

func (r *Registry) Snapshots() []TrackerSnapshot {
	r.mu.Lock()
	trackers := make([]*Tracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		trackers = append(trackers, t)
	}
	r.mu.Unlock()

	out := make([]TrackerSnapshot, 0, len(trackers))
	for _, t := range trackers {
		out = append(out, t.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	trackers := r.trackers
	r.trackers = make(map[models.JobID]*Tracker)
	r.mu.Unlock()

	for _, t := range trackers {
		t.Deactivate()
	}
}

package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lecture-sync/internal/client"
	"lecture-sync/internal/jobs"
	"lecture-sync/internal/poller"
	"lecture-sync/pkg/models"
)

// TrackerSnapshot est l'état courant d'un job suivi
type TrackerSnapshot struct {
	ID          models.JobID `json:"id"`
	Job         *models.Job  `json:"job,omitempty"`
	Provisional bool         `json:"provisional"`
	Polling     bool         `json:"polling"`
	Active      bool         `json:"active"`
	Gone        bool         `json:"gone"`
	LastError   string       `json:"last_error,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Err         error        `json:"-"`
}

// Terminal est vrai quand plus aucune mise à jour n'est attendue
func (s TrackerSnapshot) Terminal() bool {
	return s.Gone || (s.Job != nil && !s.Provisional && s.Job.IsTerminal())
}

// Tracker suit un job unique jusqu'à son état terminal, indépendamment de
// tout Aggregate qui interroge le même backend.
type Tracker struct {
	service jobs.JobService
	id      models.JobID
	opts    options

	mu          sync.Mutex
	active      bool
	session     uint64
	job         *models.Job
	provisional bool
	gone        bool
	lastErr     error
	updatedAt   time.Time
	finishedAt  time.Time
	poller      *poller.Poller[*models.Job]
	listeners   []func(TrackerSnapshot)
	// activation est non nil tant que le premier fetch d'Activate est en vol
	activation *activation
}

// activation est fermée quand le premier fetch d'une session est terminé
type activation struct {
	done chan struct{}
	err  error
}

func NewTracker(service jobs.JobService, id models.JobID, opts ...Option) *Tracker {
	o := newOptions(opts)
	o.logger = o.logger.WithName("tracker").WithValues("job", id)
	return &Tracker{
		service: service,
		id:      id,
		opts:    o,
	}
}

func (t *Tracker) ID() models.JobID {
	return t.id
}

func (t *Tracker) OnUpdate(fn func(TrackerSnapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Activate affiche initial (ou le snapshot en cache) puis récupère immédiatement
// l'enregistrement faisant autorité. En cas d'échec de ce premier fetch,
// l'erreur est retournée et aucun polling ne démarre. Sur un tracker déjà
// actif, Activate attend la fin du premier fetch et retourne son résultat.
func (t *Tracker) Activate(ctx context.Context, initial *models.Job) error {
	if initial != nil && initial.ID != t.id {
		initial = nil
	}
	// Le cache peut être distant (redis) : lu hors verrou
	var cached *models.Job
	if initial == nil {
		t.mu.Lock()
		needCache := !t.active && t.job == nil
		t.mu.Unlock()
		if needCache {
			cached, _ = t.service.CachedJob(ctx, t.id)
		}
	}

	t.mu.Lock()
	if t.active {
		act := t.activation
		t.mu.Unlock()
		if act == nil {
			return nil
		}
		select {
		case <-act.done:
			return act.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	t.active = true
	t.session++
	t.gone = false
	t.finishedAt = time.Time{}
	session := t.session
	act := &activation{done: make(chan struct{})}
	t.activation = act

	switch {
	case initial != nil:
		t.job = initial.Clone()
		t.provisional = true
	case cached != nil && t.job == nil:
		t.job = cached
		t.provisional = true
	}
	t.mu.Unlock()

	err := t.activate(ctx, session)

	t.mu.Lock()
	act.err = err
	if t.activation == act {
		t.activation = nil
	}
	t.mu.Unlock()
	close(act.done)
	return err
}

func (t *Tracker) activate(ctx context.Context, session uint64) error {
	fetchCtx, cancel := context.WithTimeout(ctx, t.opts.fetchTimeout)
	defer cancel()

	job, err := t.service.GetJob(fetchCtx, t.id)
	if err != nil {
		t.mu.Lock()
		if t.session == session {
			t.active = false
			t.lastErr = err
			t.gone = client.IsNotFound(err)
			if t.gone {
				t.finishedAt = t.opts.now()
			}
		}
		t.mu.Unlock()
		t.opts.logger.Info("Tracker.Activate: initial fetch failed", "error", err.Error())
		return fmt.Errorf("failed to load job %s: %w", t.id, err)
	}

	if !t.apply(session, job) {
		return ErrNotActive
	}
	if job.IsTerminal() {
		return nil
	}

	t.startPolling(ctx, session)
	return nil
}

// Refresh refait un fetch immédiat sans toucher au poller en cours : une erreur
// transitoire est enregistrée mais n'arrête pas le suivi. Sur un tracker
// inactif il équivaut à Activate.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	active, session, pending := t.active, t.session, t.activation != nil
	t.mu.Unlock()

	if !active || pending {
		return t.Activate(ctx, nil)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, t.opts.fetchTimeout)
	defer cancel()

	job, err := t.service.GetJob(fetchCtx, t.id)
	t.onPollResult(session, job, err)
	if err != nil {
		return fmt.Errorf("failed to refresh job %s: %w", t.id, err)
	}
	return nil
}

func (t *Tracker) startPolling(ctx context.Context, session uint64) {
	p := poller.New(
		func(ctx context.Context) (*models.Job, error) {
			return t.service.GetJob(ctx, t.id)
		},
		func(job *models.Job) bool {
			return job != nil && job.IsTerminal()
		},
		func(job *models.Job, err error) {
			t.onPollResult(session, job, err)
		},
		poller.WithName("tracker:"+t.id.String()),
		poller.WithInterval(t.opts.interval),
		poller.WithInitialDelay(t.opts.interval),
		poller.WithFetchTimeout(t.opts.fetchTimeout),
		poller.WithLogger(t.opts.logger),
	)

	t.mu.Lock()
	if !t.active || t.session != session {
		t.mu.Unlock()
		return
	}
	old := t.poller
	t.poller = p
	p.Start(ctx)
	t.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}

func (t *Tracker) onPollResult(session uint64, job *models.Job, err error) {
	if err == nil {
		t.apply(session, job)
		return
	}

	t.mu.Lock()
	if !t.active || t.session != session {
		t.mu.Unlock()
		return
	}
	t.lastErr = err
	var p *poller.Poller[*models.Job]
	if client.IsNotFound(err) {
		t.gone = true
		t.active = false
		t.finishedAt = t.opts.now()
		p = t.poller
		t.poller = nil
	}
	snap := t.snapshotLocked()
	listeners := append([]func(TrackerSnapshot){}, t.listeners...)
	t.mu.Unlock()

	if p != nil {
		t.opts.logger.Info("Tracker: job no longer exists, polling stopped")
		p.Stop()
		for _, fn := range listeners {
			fn(snap)
		}
	}
}

// apply remplace l'enregistrement en entier
func (t *Tracker) apply(session uint64, job *models.Job) bool {
	t.mu.Lock()
	if !t.active || t.session != session {
		t.mu.Unlock()
		return false
	}

	var changes []statusChange
	if t.job != nil && !t.provisional && t.job.Status != job.Status {
		changes = append(changes, statusChange{job: *job.Clone(), from: t.job.Status})
	}
	t.job = job.Clone()
	t.provisional = false
	t.lastErr = nil
	t.updatedAt = t.opts.now()
	if job.IsTerminal() && t.finishedAt.IsZero() {
		t.finishedAt = t.updatedAt
	}
	snap := t.snapshotLocked()
	listeners := append([]func(TrackerSnapshot){}, t.listeners...)
	t.mu.Unlock()

	for _, c := range changes {
		t.opts.logger.Info("Tracker: status changed", "from", c.from, "to", c.job.Status)
	}
	t.opts.publish(changes, "tracker")
	for _, fn := range listeners {
		fn(snap)
	}
	return true
}

func (t *Tracker) Snapshot() TrackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// FinishedAt retourne l'instant où le job est devenu terminal (ou a disparu)
func (t *Tracker) FinishedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finishedAt
}

// Deactivate arrête uniquement le poller de ce tracker
func (t *Tracker) Deactivate() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	t.session++
	p := t.poller
	t.poller = nil
	t.mu.Unlock()

	if p != nil {
		p.Stop()
	}
}

func (t *Tracker) snapshotLocked() TrackerSnapshot {
	snap := TrackerSnapshot{
		ID:          t.id,
		Job:         t.job.Clone(),
		Provisional: t.provisional,
		Polling:     t.poller != nil && t.poller.Running(),
		Active:      t.active,
		Gone:        t.gone,
		UpdatedAt:   t.updatedAt,
		Err:         t.lastErr,
	}
	if t.lastErr != nil {
		snap.LastError = t.lastErr.Error()
	}
	return snap
}

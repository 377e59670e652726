// Package tracking maintient les vues synchronisées des jobs : la collection
// complète (Aggregate) et un job unique (Tracker).
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lecture-sync/internal/jobs"
	"lecture-sync/internal/poller"
	"lecture-sync/pkg/models"
)

var ErrNotActive = errors.New("sync is not active")

// AggregateSnapshot est l'état courant de la collection dans un scope donné
type AggregateSnapshot struct {
	FolderID    string          `json:"folder_id,omitempty"`
	Jobs        []models.Job    `json:"jobs"`
	Stats       models.JobStats `json:"stats"`
	LastError   string          `json:"last_error,omitempty"`
	LastRefresh time.Time       `json:"last_refresh"`
	Polling     bool            `json:"polling"`
	Active      bool            `json:"active"`
}

// Aggregate suit toute la collection de jobs. Le backend est toujours interrogé
// en entier ; le dossier n'est qu'un filtre appliqué localement.
type Aggregate struct {
	service jobs.JobService
	opts    options

	mu          sync.Mutex
	active      bool
	session     uint64
	pollSeq     uint64
	fetchSeq    uint64 // incrémenté au début de chaque fetch de la collection
	appliedSeq  uint64 // fetchSeq du dernier résultat appliqué
	ctx         context.Context
	all         []models.Job
	loaded      bool
	scope       string
	stats       models.JobStats
	lastErr     error
	lastRefresh time.Time
	poller      *poller.Poller[collectionFetch]
	listeners   []func(AggregateSnapshot)
}

// collectionFetch est un résultat de ListJobs daté par l'ordre de démarrage du fetch
type collectionFetch struct {
	seq  uint64
	jobs []models.Job
}

func NewAggregate(service jobs.JobService, opts ...Option) *Aggregate {
	o := newOptions(opts)
	o.logger = o.logger.WithName("aggregate")
	return &Aggregate{
		service: service,
		opts:    o,
		stats:   ComputeStats(nil),
	}
}

// OnUpdate enregistre un listener appelé après chaque application d'un snapshot
func (a *Aggregate) OnUpdate(fn func(AggregateSnapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Activate charge la collection puis démarre le polling si un job du scope
// n'est pas terminé. ctx borne aussi la durée de vie du poller.
func (a *Aggregate) Activate(ctx context.Context) error {
	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		return a.Refresh(ctx)
	}
	a.active = true
	a.session++
	a.ctx = ctx
	session := a.session
	a.mu.Unlock()

	a.opts.logger.Info("Aggregate.Activate: loading job collection")
	return a.refresh(ctx, session)
}

// Refresh relit toute la collection et relance la détection des jobs en cours
func (a *Aggregate) Refresh(ctx context.Context) error {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return ErrNotActive
	}
	session := a.session
	a.mu.Unlock()

	return a.refresh(ctx, session)
}

// fetch lit toute la collection ; le numéro est pris avant l'appel réseau
func (a *Aggregate) fetch(ctx context.Context) (collectionFetch, error) {
	a.mu.Lock()
	a.fetchSeq++
	seq := a.fetchSeq
	a.mu.Unlock()

	all, err := a.service.ListJobs(ctx, "")
	return collectionFetch{seq: seq, jobs: all}, err
}

func (a *Aggregate) refresh(ctx context.Context, session uint64) error {
	fetchCtx, cancel := context.WithTimeout(ctx, a.opts.fetchTimeout)
	defer cancel()

	res, err := a.fetch(fetchCtx)
	if err != nil {
		a.mu.Lock()
		if a.active && a.session == session {
			a.lastErr = err
		}
		a.mu.Unlock()
		return fmt.Errorf("failed to refresh job collection: %w", err)
	}

	switch a.apply(session, 0, res) {
	case applyInactive:
		return ErrNotActive
	case applyStale:
		// un fetch démarré après celui-ci a déjà été appliqué
		a.opts.logger.V(1).Info("Aggregate.Refresh: result superseded by a newer fetch", "seq", res.seq)
		return nil
	}
	a.restartPolling()
	return nil
}

type applyOutcome int

const (
	applyDone applyOutcome = iota
	applyStale
	applyInactive
)

// apply remplace la collection si la session (et le poller, si pollSeq > 0)
// est toujours courante et qu'aucun fetch plus récent n'a déjà été appliqué
func (a *Aggregate) apply(session, pollSeq uint64, res collectionFetch) applyOutcome {
	a.mu.Lock()
	if !a.active || a.session != session || (pollSeq != 0 && a.pollSeq != pollSeq) {
		a.mu.Unlock()
		return applyInactive
	}
	if res.seq < a.appliedSeq {
		a.mu.Unlock()
		return applyStale
	}

	all := res.jobs
	var changes []statusChange
	if a.loaded {
		all = holdMonotonic(a.all, all)
		changes = diffStatuses(a.all, all)
	}
	a.appliedSeq = res.seq
	a.all = all
	a.loaded = true
	a.lastErr = nil
	a.lastRefresh = a.opts.now()
	a.stats = ComputeStats(FilterByFolder(a.all, a.scope))
	snap := a.snapshotLocked(a.scope)
	listeners := append([]func(AggregateSnapshot){}, a.listeners...)
	a.mu.Unlock()

	for _, c := range changes {
		a.opts.logger.Info("Aggregate: status changed", "job", c.job.ID, "from", c.from, "to", c.job.Status)
	}
	a.opts.publish(changes, "aggregate")
	for _, fn := range listeners {
		fn(snap)
	}
	return applyDone
}

// restartPolling arrête le poller courant et en démarre un nouveau si le scope
// contient encore un job non terminé. Le premier tick arrive après un intervalle.
func (a *Aggregate) restartPolling() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}

	old := a.poller
	a.poller = nil
	a.pollSeq++

	if HasNonTerminal(FilterByFolder(a.all, a.scope)) {
		session, seq := a.session, a.pollSeq
		p := poller.New(
			a.fetch,
			func(res collectionFetch) bool {
				a.mu.Lock()
				scope := a.scope
				a.mu.Unlock()
				return !HasNonTerminal(FilterByFolder(res.jobs, scope))
			},
			func(res collectionFetch, err error) {
				a.onPollResult(session, seq, res, err)
			},
			poller.WithName("aggregate"),
			poller.WithInterval(a.opts.interval),
			poller.WithInitialDelay(a.opts.interval),
			poller.WithFetchTimeout(a.opts.fetchTimeout),
			poller.WithLogger(a.opts.logger),
		)
		a.poller = p
		p.Start(a.ctx)
	}
	a.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}

func (a *Aggregate) onPollResult(session, seq uint64, res collectionFetch, err error) {
	if err != nil {
		a.mu.Lock()
		if a.active && a.session == session && a.pollSeq == seq {
			a.lastErr = err
		}
		a.mu.Unlock()
		return
	}
	a.apply(session, seq, res)
}

// SetScope change le dossier observé sans appel réseau
func (a *Aggregate) SetScope(folderID string) {
	a.mu.Lock()
	a.scope = folderID
	a.stats = ComputeStats(FilterByFolder(a.all, a.scope))
	a.mu.Unlock()

	a.restartPolling()
}

func (a *Aggregate) Scope() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scope
}

// Snapshot retourne l'état dans le scope actif
func (a *Aggregate) Snapshot() AggregateSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked(a.scope)
}

// View filtre la collection sur un dossier sans changer le scope actif
func (a *Aggregate) View(folderID string) AggregateSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked(folderID)
}

// Job retourne une copie du job tel que vu lors du dernier rafraîchissement
func (a *Aggregate) Job(id models.JobID) (*models.Job, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.all {
		if a.all[i].ID == id {
			return a.all[i].Clone(), true
		}
	}
	return nil, false
}

// Search cherche dans les jobs du scope actif
func (a *Aggregate) Search(query string) []models.Job {
	a.mu.Lock()
	scoped := FilterByFolder(a.all, a.scope)
	a.mu.Unlock()
	return Search(scoped, query)
}

func (a *Aggregate) Polling() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.poller != nil && a.poller.Running()
}

// Deactivate arrête le poller ; les résultats encore en vol sont ignorés
func (a *Aggregate) Deactivate() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.active = false
	a.session++
	p := a.poller
	a.poller = nil
	a.mu.Unlock()

	if p != nil {
		p.Stop()
	}
	a.opts.logger.Info("Aggregate.Deactivate: polling stopped")
}

func (a *Aggregate) snapshotLocked(folderID string) AggregateSnapshot {
	scoped := FilterByFolder(a.all, folderID)
	stats := a.stats
	if folderID != a.scope {
		stats = ComputeStats(scoped)
	}

	snap := AggregateSnapshot{
		FolderID:    folderID,
		Jobs:        scoped,
		Stats:       stats,
		LastRefresh: a.lastRefresh,
		Polling:     a.poller != nil && a.poller.Running(),
		Active:      a.active,
	}
	if a.lastErr != nil {
		snap.LastError = a.lastErr.Error()
	}
	return snap
}

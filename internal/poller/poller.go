// Package poller fournit un ordonnanceur de polling générique : un seul fetch
// en vol, le suivant n'est planifié qu'une fois le précédent terminé.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultInterval     = 5 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// FetchFunc récupère un snapshot portant un statut
type FetchFunc[T any] func(ctx context.Context) (T, error)

type options struct {
	name         string
	interval     time.Duration
	initialDelay time.Duration
	fetchTimeout time.Duration
	logger       logr.Logger
}

type Option func(*options)

func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithInitialDelay retarde le premier fetch, utile quand l'appelant vient déjà de charger les données
func WithInitialDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.initialDelay = d
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

type Poller[T any] struct {
	opts       options
	fetch      FetchFunc[T]
	isTerminal func(T) bool
	onResult   func(T, error)
	tracer     trace.Tracer

	mu      sync.Mutex
	started bool
	stopped bool
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New[T any](fetch FetchFunc[T], isTerminal func(T) bool, onResult func(T, error), opts ...Option) *Poller[T] {
	o := options{
		name:         "poller",
		interval:     DefaultInterval,
		fetchTimeout: DefaultFetchTimeout,
		logger:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if onResult == nil {
		onResult = func(T, error) {}
	}

	return &Poller[T]{
		opts:       o,
		fetch:      fetch,
		isTerminal: isTerminal,
		onResult:   onResult,
		tracer:     otel.Tracer("lecture-sync/poller"),
		done:       make(chan struct{}),
	}
}

// Start lance la boucle de polling dans sa propre goroutine. Un second appel,
// ou un appel après Stop, est sans effet.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return
	}
	p.started = true
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)
	go p.run(ctx)
}

// Stop annule le timer en attente et le fetch en vol. Idempotent, non bloquant :
// il peut être appelé depuis le callback de résultat. Done() permet d'attendre la fin.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	if !p.started {
		close(p.done)
	}
}

// Done est fermé quand la boucle se termine (état terminal, Stop ou contexte parent annulé)
func (p *Poller[T]) Done() <-chan struct{} {
	return p.done
}

func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && !p.stopped
}

func (p *Poller[T]) run(ctx context.Context) {
	log := p.opts.logger.WithValues("poller", p.opts.name)
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(p.done)
		log.V(1).Info("polling loop exited")
	}()

	if p.opts.initialDelay > 0 && !sleep(ctx, p.opts.initialDelay) {
		return
	}

	for tick := 1; ; tick++ {
		result, err := p.fetchOnce(ctx, tick)

		if !p.deliver(ctx, result, err) {
			return
		}

		if err != nil {
			log.Error(err, "fetch failed, will retry", "tick", tick, "interval", p.opts.interval.String())
		} else if p.isTerminal(result) {
			log.V(1).Info("terminal state reached", "tick", tick)
			return
		}

		if !sleep(ctx, p.opts.interval) {
			return
		}
	}
}

func (p *Poller[T]) fetchOnce(ctx context.Context, tick int) (T, error) {
	ctx, span := p.tracer.Start(ctx, "Poller.Fetch", trace.WithAttributes(
		attribute.String("poller.name", p.opts.name),
		attribute.Int("poller.tick", tick),
	))
	defer span.End()

	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.fetchTimeout)
	defer cancel()

	result, err := p.fetch(fetchCtx)
	if err != nil {
		span.RecordError(err)
	}
	return result, err
}

// deliver transmet le résultat sauf si le poller a été arrêté entre-temps.
// Retourne false si la boucle doit s'arrêter.
func (p *Poller[T]) deliver(ctx context.Context, result T, err error) bool {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()

	if stopped || ctx.Err() != nil {
		return false
	}

	p.onResult(result, err)
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

package tracking

import (
	"context"
	"time"

	"lecture-sync/internal/events"
	"lecture-sync/internal/poller"

	"github.com/go-logr/logr"
)

// StatusPublisher reçoit les transitions de statut observées. *events.Bus l'implémente.
type StatusPublisher interface {
	PublishStatusChanged(ctx context.Context, evt events.StatusChanged) error
}

type options struct {
	interval     time.Duration
	fetchTimeout time.Duration
	logger       logr.Logger
	publisher    StatusPublisher
	now          func() time.Time
}

type Option func(*options)

func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
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

func WithPublisher(p StatusPublisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

func newOptions(opts []Option) options {
	o := options{
		interval:     poller.DefaultInterval,
		fetchTimeout: poller.DefaultFetchTimeout,
		logger:       logr.Discard(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) publish(changes []statusChange, source string) {
	if o.publisher == nil {
		return
	}
	for _, c := range changes {
		evt := events.StatusChanged{
			JobID:      c.job.ID,
			Title:      c.job.Title,
			FolderID:   c.job.FolderID,
			From:       c.from,
			To:         c.job.Status,
			Source:     source,
			ObservedAt: o.now(),
		}
		if err := o.publisher.PublishStatusChanged(context.Background(), evt); err != nil {
			o.logger.Error(err, "failed to publish status change", "job", c.job.ID)
		}
	}
}

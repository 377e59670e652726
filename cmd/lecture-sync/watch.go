package main

import (
	"fmt"
	"io"
	"sync"

	"lecture-sync/internal/tracking"
	"lecture-sync/pkg/models"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Suit la liste des jobs et affiche les changements de statut",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("folder", "", "restreint l'affichage à un dossier")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	service, err := newJobService(ctx)
	if err != nil {
		return err
	}

	aggregate := tracking.NewAggregate(service,
		tracking.WithInterval(cfg.Polling.Interval),
		tracking.WithFetchTimeout(cfg.Polling.FetchTimeout),
		tracking.WithLogger(logger),
	)
	aggregate.SetScope(mustString(cmd, "folder"))

	out := cmd.OutOrStdout()
	printer := &watchPrinter{out: out}
	aggregate.OnUpdate(printer.print)

	if err := aggregate.Activate(ctx); err != nil {
		return err
	}
	defer aggregate.Deactivate()

	<-ctx.Done()
	return nil
}

// watchPrinter affiche la première vue complète puis seulement les transitions
type watchPrinter struct {
	out  io.Writer
	mu   sync.Mutex
	seen map[models.JobID]models.JobStatus
	err  string
}

func (p *watchPrinter) print(s tracking.AggregateSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.LastError != p.err {
		if s.LastError != "" {
			fmt.Fprintf(p.out, "sync error: %s\n", s.LastError)
		}
		p.err = s.LastError
	}

	if p.seen == nil {
		p.seen = make(map[models.JobID]models.JobStatus, len(s.Jobs))
		for _, job := range s.Jobs {
			p.seen[job.ID] = job.Status
			fmt.Fprintf(p.out, "%-36s  %-16s  %s\n", job.ID, job.Status, job.Title)
		}
		p.summary(s.Stats)
		return
	}

	changed := false
	for _, job := range s.Jobs {
		prev, ok := p.seen[job.ID]
		switch {
		case !ok:
			fmt.Fprintf(p.out, "+ %s  %s  %s\n", job.ID, job.Status, job.Title)
			changed = true
		case prev != job.Status:
			fmt.Fprintf(p.out, "~ %s  %s -> %s  %s\n", job.ID, prev, job.Status, job.Title)
			changed = true
		}
		p.seen[job.ID] = job.Status
	}
	if changed {
		p.summary(s.Stats)
	}
}

func (p *watchPrinter) summary(stats models.JobStats) {
	fmt.Fprintf(p.out, "total %d | pending %d | processing %d | completed %d | failed %d | avg %s\n",
		stats.Total, stats.Pending, stats.Processing, stats.Completed, stats.Failed,
		models.FormatDuration(float64(stats.AverageDuration)))
}

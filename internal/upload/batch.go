// internal/upload/batch.go
package upload

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"lecture-sync/internal/jobs"
	"lecture-sync/pkg/models"
)

// BatchConfig contient la configuration d'un envoi groupé
type BatchConfig struct {
	Workers int // Nombre de soumissions simultanées
	// Prepare renseigne dossier, titre et description de chaque pipeline
	Prepare func(p *Pipeline)
	// OnResult est appelé à chaque fichier traité, depuis le worker
	OnResult func(BatchResult)
	Logger   logr.Logger
}

func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{Workers: 2}
}

// BatchResult est le résultat de la soumission d'un fichier
type BatchResult struct {
	Index int
	File  File
	Job   *models.Job
	Err   error
	// Skipped indique que le fichier n'a pas été envoyé (contexte annulé)
	Skipped bool
}

// BatchStats contient les compteurs d'un envoi groupé
type BatchStats struct {
	Total     int   `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
}

// Batch soumet plusieurs fichiers avec un pool de workers. Chaque fichier a
// son propre Pipeline : une seule soumission en vol par pipeline.
type Batch struct {
	service jobs.JobService
	config  *BatchConfig
	opts    []Option
	logger  logr.Logger
}

func NewBatch(service jobs.JobService, config *BatchConfig, opts ...Option) *Batch {
	if config == nil {
		config = DefaultBatchConfig()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	logger := config.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Batch{service: service, config: config, opts: opts, logger: logger.WithName("batch")}
}

// Run bloque jusqu'au traitement de tous les fichiers. Après annulation du
// contexte, les fichiers restants sont marqués avec ctx.Err() sans être envoyés.
func (b *Batch) Run(ctx context.Context, files []File) ([]BatchResult, BatchStats) {
	results := make([]BatchResult, len(files))
	stats := BatchStats{Total: len(files)}
	var succeeded, failed, skipped int64

	queue := make(chan int, len(files))
	for i := range files {
		queue <- i
	}
	close(queue)

	workers := b.config.Workers
	if workers > len(files) {
		workers = len(files)
	}
	b.logger.Info("Batch.Run: starting", "files", len(files), "workers", workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range queue {
				res := b.submit(ctx, i, files[i])
				switch {
				case res.Err == nil:
					atomic.AddInt64(&succeeded, 1)
				case res.Skipped:
					atomic.AddInt64(&skipped, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				results[i] = res
				if b.config.OnResult != nil {
					b.config.OnResult(res)
				}
			}
			b.logger.V(1).Info("Batch.Run: worker done", "worker", workerID)
		}(w)
	}
	wg.Wait()

	stats.Succeeded = succeeded
	stats.Failed = failed
	stats.Skipped = skipped
	b.logger.Info("Batch.Run: finished",
		"succeeded", stats.Succeeded, "failed", stats.Failed, "skipped", stats.Skipped)
	return results, stats
}

func (b *Batch) submit(ctx context.Context, index int, file File) BatchResult {
	res := BatchResult{Index: index, File: file}
	if err := ctx.Err(); err != nil {
		res.Err = err
		res.Skipped = true
		return res
	}

	p := NewPipeline(b.service, b.opts...)
	if err := p.SelectFile(file); err != nil {
		res.Err = err
		return res
	}
	if b.config.Prepare != nil {
		b.config.Prepare(p)
	}
	res.Job, res.Err = p.Submit(ctx)
	return res
}

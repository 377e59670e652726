package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"lecture-sync/internal/jobs"
	"lecture-sync/internal/upload"
	"lecture-sync/internal/validation"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Soumet un ou plusieurs fichiers audio ou vidéo au backend",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().String("folder", "", "dossier de destination (obligatoire)")
	uploadCmd.Flags().String("title", "", "titre du job (par défaut dérivé du nom de fichier)")
	uploadCmd.Flags().String("description", "", "description du job")
	uploadCmd.Flags().Bool("wait", false, "suit le job jusqu'à son état terminal (un seul fichier)")
	uploadCmd.Flags().Int("concurrency", 2, "nombre d'envois simultanés pour plusieurs fichiers")
	_ = uploadCmd.MarkFlagRequired("folder")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	service, err := newJobService(ctx)
	if err != nil {
		return err
	}

	validatorCfg := validation.DefaultValidationConfig()
	validatorCfg.MaxFileSize = cfg.MaxUploadBytes
	pipelineOpts := []upload.Option{
		upload.WithLogger(logger),
		upload.WithValidator(validation.NewValidationService(validatorCfg)),
	}

	if len(args) > 1 {
		return uploadBatch(cmd, service, args, pipelineOpts)
	}

	file, err := upload.FileFromPath(args[0])
	if err != nil {
		return err
	}

	bar := progressbar.DefaultBytes(file.Size, "uploading "+file.Name)
	open := file.Open
	file.Open = func() (io.ReadCloser, error) {
		rc, err := open()
		if err != nil {
			return nil, err
		}
		// La détection du type relit le début du fichier
		bar.Reset()
		return struct {
			io.Reader
			io.Closer
		}{io.TeeReader(rc, bar), rc}, nil
	}

	pipeline := upload.NewPipeline(service, pipelineOpts...)
	if err := pipeline.SelectFile(file); err != nil {
		return err
	}
	pipeline.SetFolder(mustString(cmd, "folder"))
	if title := mustString(cmd, "title"); title != "" {
		pipeline.SetTitle(title)
	}
	pipeline.SetDescription(mustString(cmd, "description"))

	job, err := pipeline.Submit(ctx)
	_ = bar.Finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "job %s created: %s (%s)\n", job.ID, job.Title, job.Status)

	wait, _ := cmd.Flags().GetBool("wait")
	if !wait {
		return nil
	}
	return follow(cmd, service, job.ID, job)
}

// uploadBatch soumet plusieurs fichiers ; le titre est toujours dérivé du nom
func uploadBatch(cmd *cobra.Command, service jobs.JobService, paths []string, opts []upload.Option) error {
	if mustString(cmd, "title") != "" {
		return errors.New("--title cannot be used with several files")
	}
	if wait, _ := cmd.Flags().GetBool("wait"); wait {
		return errors.New("--wait requires a single file")
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	files := make([]upload.File, 0, len(paths))
	for _, path := range paths {
		f, err := upload.FileFromPath(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	folder := mustString(cmd, "folder")
	description := mustString(cmd, "description")
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("uploading"),
		progressbar.OptionShowCount(),
	)
	out := cmd.OutOrStdout()

	var mu sync.Mutex
	batch := upload.NewBatch(service, &upload.BatchConfig{
		Workers: concurrency,
		Logger:  logger,
		Prepare: func(p *upload.Pipeline) {
			p.SetFolder(folder)
			p.SetDescription(description)
		},
		OnResult: func(r upload.BatchResult) {
			mu.Lock()
			defer mu.Unlock()
			_ = bar.Add(1)
			switch {
			case r.Err != nil:
				fmt.Fprintf(out, "\n%s: %v\n", r.File.Name, r.Err)
			default:
				fmt.Fprintf(out, "\n%s: job %s created (%s)\n", r.File.Name, r.Job.ID, r.Job.Status)
			}
		},
	}, opts...)

	_, stats := batch.Run(cmd.Context(), files)
	_ = bar.Finish()
	fmt.Fprintf(out, "%d submitted, %d failed, %d skipped\n", stats.Succeeded, stats.Failed, stats.Skipped)
	if stats.Failed > 0 || stats.Skipped > 0 {
		return fmt.Errorf("%d of %d files were not submitted", stats.Failed+stats.Skipped, stats.Total)
	}
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("unknown flag %s: %v", name, err))
	}
	return s
}

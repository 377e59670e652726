package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"lecture-sync/internal/jobs"
	"lecture-sync/internal/tracking"
	"lecture-sync/pkg/models"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Affiche l'état d'un job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("follow", false, "suit le job jusqu'à son état terminal")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	service, err := newJobService(cmd.Context())
	if err != nil {
		return err
	}
	id := models.JobID(args[0])

	followFlag, _ := cmd.Flags().GetBool("follow")
	if followFlag {
		cached, _ := service.CachedJob(cmd.Context(), id)
		return follow(cmd, service, id, cached)
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()
	job, err := service.GetJob(ctx, id)
	if err != nil {
		return err
	}
	printJob(cmd.OutOrStdout(), job)
	return nil
}

// follow suit un job avec un spinner jusqu'à son état terminal ou l'annulation
func follow(cmd *cobra.Command, service jobs.JobService, id models.JobID, initial *models.Job) error {
	ctx := cmd.Context()

	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(fmt.Sprintf("job %s", id)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	tracker := tracking.NewTracker(service, id,
		tracking.WithInterval(cfg.Polling.Interval),
		tracking.WithFetchTimeout(cfg.Polling.FetchTimeout),
		tracking.WithLogger(logger),
	)

	done := make(chan tracking.TrackerSnapshot, 1)
	tracker.OnUpdate(func(s tracking.TrackerSnapshot) {
		if s.Job != nil {
			spinner.Describe(fmt.Sprintf("job %s: %s", id, s.Job.Status))
		}
		if s.Terminal() {
			select {
			case done <- s:
			default:
			}
		}
	})

	if err := tracker.Activate(ctx, initial); err != nil {
		_ = spinner.Finish()
		return err
	}
	defer tracker.Deactivate()

	final := tracker.Snapshot()
	if !final.Terminal() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
	wait:
		for {
			select {
			case final = <-done:
				break wait
			case <-ctx.Done():
				_ = spinner.Finish()
				return ctx.Err()
			case <-ticker.C:
				_ = spinner.Add(1)
			}
		}
	}
	_ = spinner.Finish()

	if final.Gone {
		return fmt.Errorf("job %s no longer exists", id)
	}
	printJob(cmd.OutOrStdout(), final.Job)
	if final.Job.Status == models.StatusFailed {
		return errors.New("job failed")
	}
	return nil
}

func printJob(w io.Writer, job *models.Job) {
	fmt.Fprintf(w, "ID:          %s\n", job.ID)
	fmt.Fprintf(w, "Title:       %s\n", job.Title)
	fmt.Fprintf(w, "Status:      %s\n", job.Status)
	fmt.Fprintf(w, "Folder:      %s\n", job.FolderID)
	fmt.Fprintf(w, "Created:     %s\n", models.FormatDate(job.CreatedAt.Time))
	fmt.Fprintf(w, "Duration:    %s\n", models.FormatDuration(job.Duration))
	fmt.Fprintf(w, "Transcript:  %t\n", job.HasTranscript())
	fmt.Fprintf(w, "Notes:       %t\n", job.HasNotes())
}

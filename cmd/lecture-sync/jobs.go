package main

import (
	"fmt"

	"lecture-sync/pkg/models"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Opérations sur les jobs",
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Supprime un job côté backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newJobService(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		if err := service.DeleteJob(ctx, models.JobID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "job %s deleted\n", args[0])
		return nil
	},
}

func init() {
	jobsCmd.AddCommand(jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}

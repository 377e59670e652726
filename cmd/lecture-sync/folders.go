package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Gère les dossiers du backend",
}

var foldersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Liste les dossiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newJobService(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		folders, err := service.ListFolders(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLECTURES\tDESCRIPTION")
		for _, f := range folders {
			desc := ""
			if f.Description != nil {
				desc = *f.Description
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.ID, f.Name, f.LectureCount, desc)
		}
		return w.Flush()
	},
}

var foldersCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Crée un dossier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newJobService(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		var description *string
		if d := mustString(cmd, "description"); d != "" {
			description = &d
		}
		folder, err := service.CreateFolder(ctx, args[0], description)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "folder %s created: %s\n", folder.ID, folder.Name)
		return nil
	},
}

var foldersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Supprime un dossier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newJobService(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		if err := service.DeleteFolder(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "folder %s deleted\n", args[0])
		return nil
	},
}

func init() {
	foldersCreateCmd.Flags().String("description", "", "description du dossier")
	foldersCmd.AddCommand(foldersListCmd, foldersCreateCmd, foldersDeleteCmd)
	rootCmd.AddCommand(foldersCmd)
}

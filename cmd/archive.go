/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mobilecollector/backoffice/config"
	"github.com/mobilecollector/backoffice/internal/storage"
	"github.com/spf13/cobra"
)

var archiveOutput string

// archiveCmd works with exported workbooks archived in object storage.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Fetch or remove archived exports",
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Download an archived export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		objects, err := openArchive(cmd)
		if err != nil {
			return err
		}

		rc, err := objects.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get %s: %w", args[0], err)
		}
		defer rc.Close()

		out := cmd.OutOrStdout()
		if archiveOutput != "" {
			f, err := os.Create(archiveOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		_, err = io.Copy(out, rc)
		return err
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove an archived export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		objects, err := openArchive(cmd)
		if err != nil {
			return err
		}
		if err := objects.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s from %s\n", args[0], objects.Bucket())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveGetCmd, archiveDeleteCmd)
	archiveGetCmd.Flags().StringVarP(&archiveOutput, "output", "o", "", "write to file instead of stdout")
}

func openArchive(cmd *cobra.Command) (*storage.Storage, error) {
	cfg := config.LoadConfig()
	objects, err := storage.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	if objects == nil {
		return nil, errors.New("STORAGE_BACKEND is not configured")
	}
	return objects, nil
}

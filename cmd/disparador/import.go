package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whatsapp-disparador/internal/importer"
	"whatsapp-disparador/internal/repository"
)

var importUser string

var importCmd = &cobra.Command{
	Use:   "import <file.vcf>",
	Short: "Import a vCard address book into the contact store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importUser, "user", "", "owner of the imported contacts")
	importCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer file.Close()

	db, err := repository.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	log := appLogger.WithUserID(importUser)
	result, err := importer.ImportVCard(cmd.Context(), file, importUser, log)
	if err != nil {
		return err
	}

	written, err := repository.NewContactRepository(db).Upsert(cmd.Context(), result.Contacts)
	if err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d cards read, %d imported, %d skipped\n", result.Read, written, result.Skipped)
	return nil
}

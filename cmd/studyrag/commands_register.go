package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakbridge-labs/studyrag/internal/docstore"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

var (
	registerDocID string
	registerPath  string
	registerType  string
	registerName  string
)

func buildRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Add or update a document in the catalog",
		RunE:  runRegister,
	}
	cmd.Flags().StringVar(&registerDocID, "id", "", "Document id (required)")
	cmd.Flags().StringVar(&registerPath, "path", "", "Path to the source file (required)")
	cmd.Flags().StringVar(&registerType, "type", "plain_text", "Document type: plain_text, markdown, pdf, or image")
	cmd.Flags().StringVar(&registerName, "name", "", "Human-readable document name")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func runRegister(cmd *cobra.Command, args []string) error {
	catalog, err := docstore.LoadMap(catalogPath)
	if err != nil {
		return err
	}

	catalog[registerDocID] = models.DocumentDescriptor{
		ID:   registerDocID,
		Path: registerPath,
		Type: models.DocumentType(registerType),
		Name: registerName,
	}

	if err := docstore.SaveMap(catalogPath, catalog); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", registerDocID, registerType)
	return nil
}

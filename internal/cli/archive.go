package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantumprov/qprov/internal/model"
	"github.com/quantumprov/qprov/internal/schema"
	"github.com/quantumprov/qprov/internal/store"
)

// NewArchiveCommand creates the archive command group.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the document archive",
		Long: `Archive metadata documents in a SQLite database and query lineage
across runs.

Documents are content-addressed: saving the same document twice is a no-op,
and the document ID doubles as an integrity check.`,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "qprov.db", "path to the archive database")

	cmd.AddCommand(newArchiveSaveCommand(rootOpts, &dbPath))
	cmd.AddCommand(newArchiveListCommand(rootOpts, &dbPath))
	cmd.AddCommand(newArchiveShowCommand(rootOpts, &dbPath))
	cmd.AddCommand(newArchiveLineageCommand(rootOpts, &dbPath))

	return cmd
}

// SaveResult reports an archive save.
type SaveResult struct {
	DocumentID string `json:"document_id"`
	Inserted   bool   `json:"inserted"`
}

func newArchiveSaveCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save <document.json>",
		Short: "Archive a metadata document",
		Long: `Validate and archive a metadata document.

The document must pass schema validation before it is stored; the archive
never holds malformed documents.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			data, err := os.ReadFile(args[0])
			if err != nil {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "read document", err)
			}

			if err := schema.Validate(data); err != nil {
				_ = formatter.Error(ErrCodeSchema, "document failed schema validation", err.Error())
				return WrapExitError(ExitFailure, "schema validation", err)
			}

			m, err := model.FromCompleteJSON(data)
			if err != nil {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "parse document", err)
			}

			s, err := openArchive(*dbPath, formatter)
			if err != nil {
				return err
			}
			defer s.Close()

			id, inserted, err := s.SaveDocument(cmd.Context(), m)
			if err != nil {
				_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
				return WrapExitError(ExitCommandError, "save document", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(SaveResult{DocumentID: id, Inserted: inserted})
			}
			if inserted {
				fmt.Fprintf(formatter.Writer, "✓ Archived %s\n", id)
			} else {
				fmt.Fprintf(formatter.Writer, "= Already archived as %s\n", id)
			}
			return nil
		},
	}
}

func newArchiveListCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List archived documents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			s, err := openArchive(*dbPath, formatter)
			if err != nil {
				return err
			}
			defer s.Close()

			infos, err := s.ListDocuments(cmd.Context())
			if err != nil {
				_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
				return WrapExitError(ExitCommandError, "list documents", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			if len(infos) == 0 {
				fmt.Fprintln(formatter.Writer, "Archive is empty")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(formatter.Writer, "%s  %s  device=%s circuit=%s v%s\n",
					info.Created, info.ID[:12], info.DeviceID, info.CircuitID, info.ModelVersion)
			}
			return nil
		},
	}
}

func newArchiveShowCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "show <document-id>",
		Short:         "Print an archived document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			s, err := openArchive(*dbPath, formatter)
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := s.GetDocument(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				_ = formatter.Error(ErrCodeArchive, fmt.Sprintf("document %s not found", args[0]), nil)
				return WrapExitError(ExitCommandError, "show document", err)
			}
			if err != nil {
				_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
				return WrapExitError(ExitCommandError, "show document", err)
			}

			doc, err := m.ToCompleteJSONIndent()
			if err != nil {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "serialize document", err)
			}
			fmt.Fprintln(formatter.Writer, string(doc))
			return nil
		},
	}
}

// LineageResult holds cross-run lineage for one entity.
type LineageResult struct {
	EntityID    string           `json:"entity_id"`
	Relations   []model.Relation `json:"relations"`
	DerivedFrom []string         `json:"derived_from,omitempty"`
	Executions  []string         `json:"executions,omitempty"`
}

func newArchiveLineageCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <entity-id>",
		Short: "Query cross-run lineage for an entity",
		Long: `Query every archived provenance relation touching an entity, the
entities derived from it, and (for compilation traces) the executions
recorded against it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			entityID := args[0]

			s, err := openArchive(*dbPath, formatter)
			if err != nil {
				return err
			}
			defer s.Close()

			relations, err := s.RelationsFor(cmd.Context(), entityID)
			if err != nil {
				_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
				return WrapExitError(ExitCommandError, "query relations", err)
			}
			derived, err := s.DerivedFrom(cmd.Context(), entityID)
			if err != nil {
				_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
				return WrapExitError(ExitCommandError, "query derivations", err)
			}
			executions, err := s.ExecutionsForTrace(cmd.Context(), entityID)
			if err != nil {
				_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
				return WrapExitError(ExitCommandError, "query executions", err)
			}

			result := LineageResult{
				EntityID:    entityID,
				Relations:   relations,
				DerivedFrom: derived,
				Executions:  executions,
			}

			if formatter.Format == "json" {
				return formatter.Success(result)
			}

			if len(result.Relations) == 0 && len(result.DerivedFrom) == 0 && len(result.Executions) == 0 {
				fmt.Fprintf(formatter.Writer, "No lineage recorded for %s\n", entityID)
				return nil
			}
			for _, rel := range result.Relations {
				fmt.Fprintf(formatter.Writer, "%s  %s --%s--> %s\n",
					rel.Timestamp, rel.SourceID, rel.RelationType, rel.TargetID)
			}
			if len(result.DerivedFrom) > 0 {
				fmt.Fprintf(formatter.Writer, "Derived entities: %v\n", result.DerivedFrom)
			}
			if len(result.Executions) > 0 {
				fmt.Fprintf(formatter.Writer, "Executions: %v\n", result.Executions)
			}
			return nil
		},
	}
}

func newFormatter(rootOpts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
}

func openArchive(path string, formatter *OutputFormatter) (*store.Store, error) {
	s, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "open archive", err)
	}
	return s, nil
}

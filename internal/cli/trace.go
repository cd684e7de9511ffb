package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantumprov/qprov/internal/model"
)

// TraceResult holds the provenance edges touching one entity.
type TraceResult struct {
	EntityID  string           `json:"entity_id"`
	Relations []model.Relation `json:"relations"`
	Workflow  model.Object     `json:"workflow_graph,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	var entityID string

	cmd := &cobra.Command{
		Use:   "trace <document.json>",
		Short: "Inspect a document's provenance record",
		Long: `Print a document's provenance relations in recorded order.

With --entity, only relations in which the entity appears as source or
target are printed. Without it, the full relation log and the workflow
summary are shown.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], entityID, cmd)
		},
	}

	cmd.Flags().StringVarP(&entityID, "entity", "e", "", "filter relations by entity ID")

	return cmd
}

func runTrace(opts *RootOptions, docPath, entityID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read document", err)
	}

	m, err := model.FromCompleteJSON(data)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parse document", err)
	}

	relations := m.ProvenanceRecord.Relations
	if entityID != "" {
		filtered := []model.Relation{}
		for _, rel := range relations {
			if rel.SourceID == entityID || rel.TargetID == entityID {
				filtered = append(filtered, rel)
			}
		}
		relations = filtered
	}

	result := TraceResult{
		EntityID:  entityID,
		Relations: relations,
	}
	if entityID == "" {
		result.Workflow = m.ProvenanceRecord.WorkflowGraph
	}

	return outputTraceResult(formatter, result)
}

func outputTraceResult(formatter *OutputFormatter, result TraceResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Relations) == 0 {
		fmt.Fprintln(formatter.Writer, "No relations found")
		return nil
	}

	for _, rel := range result.Relations {
		if rel.Role != "" {
			fmt.Fprintf(formatter.Writer, "%s  %s --%s--> %s (%s)\n",
				rel.Timestamp, rel.SourceID, rel.RelationType, rel.TargetID, rel.Role)
		} else {
			fmt.Fprintf(formatter.Writer, "%s  %s --%s--> %s\n",
				rel.Timestamp, rel.SourceID, rel.RelationType, rel.TargetID)
		}
	}

	if len(result.Workflow) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Workflow:")
		doc, err := result.Workflow.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "  %s\n", doc)
	}

	return nil
}

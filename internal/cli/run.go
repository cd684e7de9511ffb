package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantumprov/qprov/internal/backend"
	"github.com/quantumprov/qprov/internal/clock"
	"github.com/quantumprov/qprov/internal/model"
	"github.com/quantumprov/qprov/internal/schema"
	"github.com/quantumprov/qprov/internal/workflow"
)

// RunSummary reports a completed run.
type RunSummary struct {
	Plan          string `json:"plan"`
	DeviceID      string `json:"device_id"`
	CircuitID     string `json:"circuit_id"`
	Traces        int    `json:"traces"`
	Executions    int    `json:"executions"`
	Calibrations  int    `json:"calibrations"`
	SessionID     string `json:"session_id,omitempty"`
	OutputPath    string `json:"output_path,omitempty"`
	DocumentBytes int    `json:"document_bytes"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Execute an experiment plan and emit its metadata document",
		Long: `Execute an experiment plan against the synthetic backend and emit the
complete metadata document.

The plan declares the device, circuit, and execution schedule. The produced
document is schema-validated before it is written; an invalid document is a
bug, not an output.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, args[0], outputPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the document to this path instead of stdout")

	return cmd
}

func runPlan(opts *RootOptions, planPath, outputPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	plan, err := workflow.LoadPlan(planPath)
	if err != nil {
		_ = formatter.Error(ErrCodePlan, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load plan", err)
	}

	formatter.VerboseLog("Loaded plan %q: %d iteration(s), policy %s",
		plan.Name, plan.Execution.Iterations, plan.Execution.CalibrationPolicy)

	runner := newSyntheticRunner(plan)
	m, err := runner.Run(cmd.Context(), plan)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "run plan", err)
	}

	doc, err := m.ToCompleteJSONIndent()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "serialize document", err)
	}

	if err := schema.Validate(doc); err != nil {
		_ = formatter.Error(ErrCodeSchema, "produced document failed schema validation", err.Error())
		return WrapExitError(ExitFailure, "schema validation", err)
	}

	summary := RunSummary{
		Plan:          plan.Name,
		DeviceID:      m.DeviceMetadata.DeviceID,
		CircuitID:     m.CircuitMetadata.CircuitID,
		Traces:        len(m.CompilationTrace.Traces()),
		Executions:    len(m.ExecutionContext),
		Calibrations:  len(m.CalibrationData),
		DocumentBytes: len(doc),
	}
	if m.ExperimentSession != nil {
		summary.SessionID = m.ExperimentSession.SessionID
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, append(doc, '\n'), 0o644); err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "write document", err)
		}
		summary.OutputPath = outputPath
		return outputRunSummary(formatter, summary)
	}

	// No output path: the document itself is the output.
	fmt.Fprintln(formatter.Writer, string(doc))
	return nil
}

func outputRunSummary(formatter *OutputFormatter, s RunSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	fmt.Fprintf(formatter.Writer, "✓ Plan %q completed\n", s.Plan)
	fmt.Fprintf(formatter.Writer, "  device:       %s\n", s.DeviceID)
	fmt.Fprintf(formatter.Writer, "  circuit:      %s\n", s.CircuitID)
	fmt.Fprintf(formatter.Writer, "  traces:       %d\n", s.Traces)
	fmt.Fprintf(formatter.Writer, "  calibrations: %d\n", s.Calibrations)
	fmt.Fprintf(formatter.Writer, "  executions:   %d\n", s.Executions)
	if s.SessionID != "" {
		fmt.Fprintf(formatter.Writer, "  session:      %s\n", s.SessionID)
	}
	fmt.Fprintf(formatter.Writer, "  written to:   %s (%d bytes)\n", s.OutputPath, s.DocumentBytes)
	return nil
}

// newSyntheticRunner assembles a runner against the synthetic backend,
// shaped by the plan's device section.
func newSyntheticRunner(plan *workflow.Plan) *workflow.Runner {
	tech := plan.Device.Technology
	if tech == "" {
		tech = model.TechnologySimulator
	}
	return &workflow.Runner{
		Device: &backend.SyntheticDevice{
			BackendName: plan.Device.BackendName,
			Provider:    plan.Device.Provider,
			Technology:  tech,
			NumQubits:   plan.Device.NumQubits,
			ValidFor:    time.Duration(plan.Device.CalibrationValidHours * float64(time.Hour)),
		},
		Compiler: backend.SyntheticCompiler{},
		Backend:  &backend.SyntheticBackend{Qubits: plan.Circuit.NumQubits},
		Clock:    clock.System{},
	}
}

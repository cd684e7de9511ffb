package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantumprov/qprov/internal/clock"
	"github.com/quantumprov/qprov/internal/model"
	"github.com/quantumprov/qprov/internal/schema"
	"github.com/quantumprov/qprov/internal/validate"
)

// ValidationReport holds the full validation result for one document.
type ValidationReport struct {
	Valid      bool     `json:"valid"`
	SchemaOK   bool     `json:"schema_ok"`
	Consistent bool     `json:"consistent"`
	Violations []string `json:"violations,omitempty"`

	// Freshness reports, one per execution context, plus a live check of
	// every calibration snapshot against the current clock.
	Freshness []FreshnessReport `json:"freshness,omitempty"`
}

// FreshnessReport summarizes one calibration's validity, both as recorded
// at execution time and as checked now.
type FreshnessReport struct {
	CalibrationID     string  `json:"calibration_id"`
	ExecutionID       string  `json:"execution_id,omitempty"`
	ExpiredAtUse      bool    `json:"expired_at_use"`
	AgeSecondsAtUse   float64 `json:"age_seconds_at_use"`
	ExpiredNow        bool    `json:"expired_now"`
	AgeSecondsNow     float64 `json:"age_seconds_now"`
	ValidUntil        string  `json:"valid_until"`
	TimestampCaptured string  `json:"timestamp_captured"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document.json>",
		Short: "Validate a metadata document",
		Long: `Validate a metadata document: schema shape, denormalized-mirror
consistency, referential integrity, and calibration freshness.

Schema violations and inconsistencies exit with code 1. Calibration
staleness is reported but never fails validation: an expired snapshot at
execution time is recorded history, not an error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, docPath string, cmd *cobra.Command) error {
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

	report := ValidationReport{SchemaOK: true}

	if err := schema.Validate(data); err != nil {
		report.SchemaOK = false
		report.Violations = append(report.Violations, "schema: "+err.Error())
	}
	formatter.VerboseLog("Schema check: ok=%v", report.SchemaOK)

	m, err := model.FromCompleteJSON(data)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parse document", err)
	}

	result := validate.Check(&m)
	report.Consistent = result.Consistent
	report.Violations = append(report.Violations, result.Violations...)
	formatter.VerboseLog("Consistency check: ok=%v, %d violation(s)",
		result.Consistent, len(result.Violations))

	report.Freshness = freshnessReports(&m, clock.System{})
	report.Valid = report.SchemaOK && report.Consistent

	return outputValidationReport(formatter, report)
}

// freshnessReports pairs each execution's recorded freshness check with a
// live recheck of its calibration against clk.
func freshnessReports(m *model.Model, clk clock.Clock) []FreshnessReport {
	calibrations := make(map[string]model.CalibrationData, len(m.CalibrationData))
	for _, cal := range m.CalibrationData {
		calibrations[cal.CalibrationID] = cal
	}

	now := clk.Now()
	reports := []FreshnessReport{}
	for _, ec := range m.ExecutionContext {
		cal, ok := calibrations[ec.CalibrationID]
		if !ok {
			continue // already a consistency violation, reported above
		}
		reports = append(reports, FreshnessReport{
			CalibrationID:     cal.CalibrationID,
			ExecutionID:       ec.ExecutionID,
			ExpiredAtUse:      ec.FreshnessValidation.CalibrationExpired,
			AgeSecondsAtUse:   ec.FreshnessValidation.CalibrationAgeSeconds,
			ExpiredNow:        !cal.IsValid(now),
			AgeSecondsNow:     cal.AgeSeconds(now),
			ValidUntil:        cal.ValidUntil,
			TimestampCaptured: cal.TimestampCaptured,
		})
	}
	return reports
}

func outputValidationReport(formatter *OutputFormatter, report ValidationReport) error {
	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
		if !report.Valid {
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(report.Violations)))
		}
		return nil
	}

	// Text format
	if report.Valid {
		fmt.Fprintln(formatter.Writer, "✓ Document valid")
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, v := range report.Violations {
			fmt.Fprintf(formatter.Writer, "  %s\n", v)
		}
	}

	if len(report.Freshness) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Calibration freshness:")
		for _, fr := range report.Freshness {
			status := "fresh"
			if fr.ExpiredAtUse {
				status = "EXPIRED at use"
			}
			fmt.Fprintf(formatter.Writer, "  %s (execution %s): %s, age %.1fs at use, valid until %s\n",
				fr.CalibrationID, fr.ExecutionID, status, fr.AgeSecondsAtUse, fr.ValidUntil)
		}
	}

	if !report.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(report.Violations)))
	}
	return nil
}

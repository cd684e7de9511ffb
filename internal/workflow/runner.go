// Package workflow turns a declarative experiment plan into a complete
// metadata document: device description, calibration snapshots, compilation,
// scheduled executions, provenance, and (for multi-iteration runs) a
// session.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/quantumprov/qprov/internal/backend"
	"github.com/quantumprov/qprov/internal/clock"
	"github.com/quantumprov/qprov/internal/model"
	"github.com/quantumprov/qprov/internal/provenance"
	"github.com/quantumprov/qprov/internal/session"
	"github.com/quantumprov/qprov/internal/timestamp"
	"github.com/quantumprov/qprov/internal/validate"
)

// ModelVersion tags documents produced by this runner.
const ModelVersion = "1.0"

// Relation roles written by the runner.
const (
	RoleCompilationInput = "compilation_input"
	RoleJITRecompilation = "jit_recompilation"
	RolePeriodicRefresh  = "periodic_refresh"
)

// Runner executes experiment plans against a device source, compiler, and
// execution backend.
//
// Every timestamp in the produced document comes from Clock plus the plan's
// simulated iteration delay, so runs against a manual clock are fully
// deterministic.
type Runner struct {
	Device   backend.DeviceSource
	Compiler backend.Compiler
	Backend  backend.ExecutionBackend
	Clock    clock.Clock
}

// Run executes the plan and returns the complete, validated metadata model.
//
// Single-iteration plans produce a plain run: one compilation trace
// serialized as an object, no session. Multi-iteration plans produce a
// session and a trace list, growing the list whenever the calibration
// policy forces a recompilation.
func (r *Runner) Run(ctx context.Context, plan *Plan) (model.Model, error) {
	start := r.Clock.Now()

	device, err := r.Device.Describe(ctx, start)
	if err != nil {
		return model.Model{}, fmt.Errorf("run %s: describe device: %w", plan.Name, err)
	}

	cal, err := r.Device.Snapshot(ctx, device.DeviceID, start)
	if err != nil {
		return model.Model{}, fmt.Errorf("run %s: calibration snapshot: %w", plan.Name, err)
	}

	circuit, err := model.NewCircuitMetadata(model.CircuitMetadata{
		CircuitID:        model.NewID(model.CircuitPrefix),
		CircuitName:      plan.Circuit.Name,
		AlgorithmType:    plan.Circuit.AlgorithmType,
		NumQubits:        plan.Circuit.NumQubits,
		CircuitDepth:     plan.Circuit.CircuitDepth,
		NumGates:         plan.Circuit.NumGates,
		TimestampCreated: timestamp.Format(start),
		Description:      plan.Circuit.Description,
		Author:           plan.Circuit.Author,
		Tags:             plan.Circuit.Tags,
		CircuitQASM:      optionalQASM(plan.Circuit.QASM),
	})
	if err != nil {
		return model.Model{}, fmt.Errorf("run %s: %w", plan.Name, err)
	}

	prov := provenance.NewBuilder("", r.Clock)

	trace, err := r.compile(ctx, circuit, cal, start, prov, RoleCompilationInput)
	if err != nil {
		return model.Model{}, fmt.Errorf("run %s: %w", plan.Name, err)
	}

	calibrations := []model.CalibrationData{cal}
	traces := []model.CompilationTrace{trace}

	policy := plan.Execution.CalibrationPolicy
	if policy == "" {
		policy = model.PolicyStatic
	}
	// Plans normally arrive through ParsePlan, but Run must not trust that:
	// a zero interval would make the periodic modulus panic.
	if policy == model.PolicyPeriodic && plan.Execution.RefreshEvery <= 0 {
		return model.Model{}, fmt.Errorf("run %s: periodic policy requires refresh_every > 0", plan.Name)
	}
	multiRun := plan.Execution.Iterations > 1

	var agg *session.Aggregator
	if multiRun {
		agg, err = session.New(session.Config{
			AlgorithmType:     plan.Circuit.AlgorithmType,
			CircuitID:         circuit.CircuitID,
			DeviceID:          device.DeviceID,
			Optimizer:         plan.Execution.Optimizer,
			MaxIterations:     plan.Execution.Iterations,
			ShotsDefault:      plan.Execution.Shots,
			CalibrationPolicy: policy,
		}, r.Clock)
		if err != nil {
			return model.Model{}, fmt.Errorf("run %s: %w", plan.Name, err)
		}
	}

	delay := time.Duration(plan.Execution.IterationDelaySeconds * float64(time.Second))
	jitRecompilations := 0
	staleExecutions := 0
	executions := []model.ExecutionContext{}
	lastExecStamp := timestamp.Format(start)
	lastNow := start

	for i := 0; i < plan.Execution.Iterations; i++ {
		now := r.Clock.Now().Add(time.Duration(i) * delay)
		lastNow = now

		// Refresh the snapshot when the policy demands it. A refresh always
		// recompiles: executions mirror their trace's calibration, so a new
		// snapshot without a new trace would desynchronize the document.
		switch policy {
		case model.PolicyPeriodic:
			if i > 0 && i%plan.Execution.RefreshEvery == 0 {
				cal, trace, err = r.refresh(ctx, device.DeviceID, circuit, now, prov, RolePeriodicRefresh)
				if err != nil {
					return model.Model{}, fmt.Errorf("run %s: iteration %d: %w", plan.Name, i, err)
				}
				calibrations = append(calibrations, cal)
				traces = append(traces, trace)
			}
		case model.PolicyJIT:
			if !cal.IsValid(now) {
				cal, trace, err = r.refresh(ctx, device.DeviceID, circuit, now, prov, RoleJITRecompilation)
				if err != nil {
					return model.Model{}, fmt.Errorf("run %s: iteration %d: %w", plan.Name, i, err)
				}
				calibrations = append(calibrations, cal)
				traces = append(traces, trace)
				jitRecompilations++
			}
		}

		exec, err := r.execute(ctx, plan, trace, cal, now)
		if err != nil {
			return model.Model{}, fmt.Errorf("run %s: iteration %d: %w", plan.Name, i, err)
		}
		executions = append(executions, exec)
		lastExecStamp = exec.TimestampExecution
		if exec.FreshnessValidation.CalibrationExpired {
			staleExecutions++
		}

		if err := prov.AddRelation(model.RelationWasGeneratedBy,
			exec.ExecutionID, trace.TraceID, exec.TimestampExecution, ""); err != nil {
			return model.Model{}, fmt.Errorf("run %s: %w", plan.Name, err)
		}

		if agg != nil {
			agg.AddExecution(exec.ExecutionID, exec.NumShots)
			snapshot := model.Object{
				"iteration":               model.Int(int64(i)),
				"timestamp":               model.String(exec.TimestampExecution),
				"calibration_id":          model.String(exec.CalibrationID),
				"calibration_age_seconds": model.Float(exec.FreshnessValidation.CalibrationAgeSeconds),
			}
			for k, v := range exec.EnvironmentalContext {
				snapshot[k] = v
			}
			agg.LogEnvironment(snapshot)
		}
	}

	end := lastExecStamp
	var sess *model.ExperimentSession
	if agg != nil {
		agg.SetMetric("jit_recompilations", model.Int(int64(jitRecompilations)))
		// Finalize at the last simulated instant, not the injected clock's
		// current reading: with a simulated iteration delay the clock lags
		// the executions, and a session must not end before them.
		agg.Finalize(clock.Fixed(lastNow))
		s := agg.Session()
		sess = &s
		if s.TimestampEnded != nil {
			end = *s.TimestampEnded
		}

		if err := prov.AddRelation(model.RelationWasInformedBy,
			s.SessionID, circuit.CircuitID, s.TimestampStarted, ""); err != nil {
			return model.Model{}, fmt.Errorf("run %s: %w", plan.Name, err)
		}
	}

	if _, err := prov.FinalizeWorkflow(circuit.TimestampCreated, end); err != nil {
		return model.Model{}, fmt.Errorf("run %s: %w", plan.Name, err)
	}
	prov.SetWorkflowMetric(model.NumIterationsKey, model.Int(int64(plan.Execution.Iterations)))
	prov.SetWorkflowMetric(model.JITRecompilationsKey, model.Int(int64(jitRecompilations)))

	prov.SetQuality("lineage_complete", model.Bool(true))
	prov.SetQuality("num_relations", model.Int(int64(prov.RelationCount())))
	prov.SetQuality("calibration_refreshes", model.Int(int64(len(calibrations)-1)))
	prov.SetQuality("executions_with_expired_calibration", model.Int(int64(staleExecutions)))

	traceLog := model.SingleTrace(traces[0])
	if multiRun {
		traceLog = model.TraceList(traces)
	}

	m, err := model.NewModel(model.Model{
		ModelVersion:          ModelVersion,
		TimestampModelCreated: timestamp.Format(start),
		DeviceMetadata:        device,
		CalibrationData:       calibrations,
		CircuitMetadata:       circuit,
		CompilationTrace:      traceLog,
		ExecutionContext:      executions,
		ProvenanceRecord:      prov.Record(),
		ExperimentSession:     sess,
	})
	if err != nil {
		return model.Model{}, fmt.Errorf("run %s: %w", plan.Name, err)
	}

	if !validate.Denormalized(&m) {
		return model.Model{}, fmt.Errorf("run %s: produced an inconsistent document", plan.Name)
	}

	return m, nil
}

// compile runs the compiler against one calibration snapshot and records
// the trace's provenance: derived from the circuit, used the calibration
// and the device.
func (r *Runner) compile(ctx context.Context, circuit model.CircuitMetadata, cal model.CalibrationData, now time.Time, prov *provenance.Builder, role string) (model.CompilationTrace, error) {
	result, err := r.Compiler.Compile(ctx, circuit, cal)
	if err != nil {
		return model.CompilationTrace{}, fmt.Errorf("compile: %w", err)
	}

	stamp := timestamp.Format(now)
	trace, err := model.NewCompilationTrace(model.CompilationTrace{
		TraceID:               model.NewID(model.TracePrefix),
		CircuitID:             circuit.CircuitID,
		DeviceID:              cal.DeviceID,
		CalibrationID:         cal.CalibrationID,
		TimestampCompilation:  stamp,
		CompilerName:          r.Compiler.Name(),
		CompilerVersion:       r.Compiler.Version(),
		CompilationDurationMS: result.DurationMS,
		CompilationPasses:     result.Passes,
		OptimizationMetrics:   result.OptimizationMetrics,
		DecisionsMade:         result.DecisionsMade,
		FinalCircuitQASM:      result.FinalCircuitQASM,
		CompilationErrors:     result.Errors,
	})
	if err != nil {
		return model.CompilationTrace{}, err
	}

	if err := prov.AddRelation(model.RelationWasDerivedFrom,
		trace.TraceID, circuit.CircuitID, stamp, role); err != nil {
		return model.CompilationTrace{}, err
	}
	if err := prov.AddRelation(model.RelationUsed,
		trace.TraceID, cal.CalibrationID, stamp, ""); err != nil {
		return model.CompilationTrace{}, err
	}
	if err := prov.AddRelation(model.RelationUsed,
		trace.TraceID, cal.DeviceID, stamp, ""); err != nil {
		return model.CompilationTrace{}, err
	}

	return trace, nil
}

// refresh captures a new calibration snapshot and recompiles against it.
func (r *Runner) refresh(ctx context.Context, deviceID string, circuit model.CircuitMetadata, now time.Time, prov *provenance.Builder, role string) (model.CalibrationData, model.CompilationTrace, error) {
	cal, err := r.Device.Snapshot(ctx, deviceID, now)
	if err != nil {
		return model.CalibrationData{}, model.CompilationTrace{}, fmt.Errorf("refresh snapshot: %w", err)
	}
	trace, err := r.compile(ctx, circuit, cal, now, prov, role)
	if err != nil {
		return model.CalibrationData{}, model.CompilationTrace{}, err
	}
	return cal, trace, nil
}

// execute runs one iteration against the current trace and calibration,
// stamping the freshness check with the execution time.
func (r *Runner) execute(ctx context.Context, plan *Plan, trace model.CompilationTrace, cal model.CalibrationData, now time.Time) (model.ExecutionContext, error) {
	qasm := ""
	if trace.FinalCircuitQASM != nil {
		qasm = *trace.FinalCircuitQASM
	}

	result, err := r.Backend.Execute(ctx, qasm, plan.Execution.Shots)
	if err != nil {
		return model.ExecutionContext{}, fmt.Errorf("execute: %w", err)
	}

	stamp := timestamp.Format(now)
	return model.NewExecutionContext(model.ExecutionContext{
		ExecutionID:          model.NewID(model.ExecutionPrefix),
		TraceID:              trace.TraceID,
		DeviceID:             trace.DeviceID,
		CalibrationID:        trace.CalibrationID,
		TimestampExecution:   stamp,
		TimestampCompilation: trace.TimestampCompilation,
		NumShots:             plan.Execution.Shots,
		ExecutionMode:        result.Mode,
		ComputedFromTrace:    true,
		QueueInformation: model.Object{
			"queue_position": model.Int(int64(result.QueuePosition)),
			"queue_seconds":  model.Float(result.QueueSeconds),
		},
		EnvironmentalContext: result.Environment,
		FreshnessValidation: model.FreshnessValidation{
			CalibrationAgeSeconds: cal.AgeSeconds(now),
			CalibrationExpired:    !cal.IsValid(now),
			ValidationTimestamp:   stamp,
		},
		Results: &model.Results{
			Counts: result.Counts,
			JobID:  result.JobID,
		},
	})
}

func optionalQASM(qasm string) *string {
	if qasm == "" {
		return nil
	}
	return &qasm
}

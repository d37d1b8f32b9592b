package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/jsamuelsen/address-book/internal/platform/logging"
)

// Every address book mutation runs as validate, perform, verify, archive, respond.
// Perform works on a copy of the record; the store only changes in the archive
// step, and the change is undone there if the archive cannot be written.

// ExecutionStep names a step of a mutation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records which step of an operation failed.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Cause     error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Operation, e.Step, e.Cause)
}

// Unwrap returns the cause so domain error checks still apply.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs operations step by step, logging each one.
type Executor struct {
	logger *slog.Logger
	clock  clock.Clock
}

// NewExecutor creates an executor. Nil arguments fall back to slog.Default and the wall clock.
func NewExecutor(logger *slog.Logger, clk clock.Clock) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	if clk == nil {
		clk = clock.New()
	}

	return &Executor{logger: logger, clock: clk}
}

// Operation describes one use case. I is the input, W the working value
// produced by Perform, O the caller's result. Nil steps are skipped.
type Operation[I, W, O any] struct {
	Name string

	// Validate checks the input before anything is touched.
	Validate func(ctx context.Context, in I) error

	// Perform builds the working value. It must not change the store.
	Perform func(ctx context.Context, in I) (W, error)

	// Verify checks the working value independently of Perform.
	Verify func(ctx context.Context, in I, w W) error

	// Archive applies w to the store and persists it.
	Archive func(ctx context.Context, in I, w W) error

	// Respond shapes the result.
	Respond func(ctx context.Context, in I, w W) (O, error)
}

// Execute runs op against in.
func Execute[I, W, O any](ctx context.Context, exec *Executor, op Operation[I, W, O], in I) (O, error) {
	var (
		zero O
		w    W
	)

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := exec.clock.Now()

	fail := func(step ExecutionStep, err error) (O, error) {
		level := slog.LevelError
		if step == StepValidate || step == StepPerform {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "operation failed", slog.String("step", string(step)), slog.Any("error", err))

		return zero, &ExecutionError{Operation: op.Name, Step: step, Cause: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, in); err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		var err error
		if w, err = op.Perform(ctx, in); err != nil {
			return fail(StepPerform, err)
		}
	}

	if op.Verify != nil {
		if err := op.Verify(ctx, in, w); err != nil {
			return fail(StepVerify, err)
		}
	}

	if op.Archive != nil {
		logger.DebugContext(ctx, "archiving")

		if err := op.Archive(ctx, in, w); err != nil {
			return fail(StepArchive, err)
		}
	}

	result := zero

	if op.Respond != nil {
		var err error
		if result, err = op.Respond(ctx, in, w); err != nil {
			return fail(StepRespond, err)
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", exec.clock.Since(start)))

	return result, nil
}

// GetExecutionStep reports the step an error came from, if it is an *ExecutionError.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

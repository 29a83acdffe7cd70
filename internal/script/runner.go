package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/findstorm/internal/dispatcher"
	"github.com/dshills/findstorm/internal/dispatcher/handler"
	"github.com/dshills/findstorm/internal/input"
	"github.com/dshills/findstorm/internal/logging"
)

// StepResult records one dispatch.
type StepResult struct {
	Step     int
	Action   string
	Result   handler.Result
	Duration time.Duration
	Err      error
}

// Report is the outcome of a run.
type Report struct {
	Script  string
	Results []StepResult
	// Failed counts steps whose Err is set.
	Failed int
}

// Err returns the first step error, or nil.
func (r *Report) Err() error {
	for _, res := range r.Results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

// Runner dispatches script steps.
type Runner struct {
	d      *dispatcher.Dispatcher
	logger *logging.Logger
}

// NewRunner creates a runner over d.
func NewRunner(d *dispatcher.Dispatcher, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NullLogger
	}
	return &Runner{d: d, logger: logger.WithComponent("script")}
}

// Validate checks that every action in s has a handler.
func (r *Runner) Validate(s *Script) error {
	known := make(map[string]struct{})
	for _, name := range r.d.Actions() {
		known[name] = struct{}{}
	}

	var errs []error
	for i, step := range s.Steps {
		if _, ok := known[step.Action]; ok {
			continue
		}
		err := fmt.Errorf("step %d: %w %q", i+1, ErrUnknownAction, step.Action)
		if suggestion, ok := r.d.Suggest(step.Action); ok {
			err = fmt.Errorf("%w (did you mean %q?)", err, suggestion)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run validates and executes s. It stops at the first failing step unless
// that step sets continue_on_error. The returned error is the one that
// stopped the run.
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	if err := r.Validate(s); err != nil {
		return nil, err
	}

	report := &Report{Script: s.Name}
	log := r.logger.WithField("script", s.Name)

	for i, step := range s.Steps {
		repeat := max(step.Repeat, 1)
		for n := 0; n < repeat; n++ {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			res := r.runStep(ctx, i+1, step)
			report.Results = append(report.Results, res)
			if res.Err == nil {
				log.Debug("step %d %s: %s", res.Step, res.Action, res.Result.Status)
				continue
			}

			report.Failed++
			log.WithError(res.Err).Warn("step %d %s failed", res.Step, res.Action)
			if !step.ContinueOnError {
				return report, res.Err
			}
		}
	}
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, n int, step Step) StepResult {
	action := input.NewAction(step.Action).WithText(step.Text).WithSource(input.SourceScript)
	for k, v := range step.Args {
		action = action.WithArg(k, v)
	}

	start := time.Now()
	result := r.d.Dispatch(ctx, action)
	res := StepResult{
		Step:     n,
		Action:   step.Action,
		Result:   result,
		Duration: time.Since(start),
	}

	if result.IsError() {
		res.Err = fmt.Errorf("step %d %s: %w: %v", n, step.Action, ErrStepFailed, describe(result))
		return res
	}
	if step.Expect != nil {
		if err := step.Expect.check(result); err != nil {
			res.Err = fmt.Errorf("step %d %s: %w", n, step.Action, err)
		}
	}
	return res
}

func describe(r handler.Result) string {
	if r.Message != "" {
		return r.Message
	}
	if r.Error != nil {
		return r.Error.Error()
	}
	return r.Status.String()
}

func (e *Expect) check(r handler.Result) error {
	var errs []error
	if e.Status != "" && e.Status != r.Status.String() {
		errs = append(errs, fmt.Errorf("%w: status %s, want %s", ErrExpectation, r.Status, e.Status))
	}
	if e.Matches != nil {
		if got := r.GetDataInt("matches"); got != *e.Matches {
			errs = append(errs, fmt.Errorf("%w: matches %d, want %d", ErrExpectation, got, *e.Matches))
		}
	}
	if e.Index != nil {
		got, ok := r.GetData("index")
		if !ok || r.GetDataInt("index") != *e.Index {
			errs = append(errs, fmt.Errorf("%w: index %v, want %d", ErrExpectation, got, *e.Index))
		}
	}
	if e.Query != nil {
		if got := r.GetDataString("query"); got != *e.Query {
			errs = append(errs, fmt.Errorf("%w: query %q, want %q", ErrExpectation, got, *e.Query))
		}
	}
	if e.Active != nil {
		if got := r.GetDataBool("active"); got != *e.Active {
			errs = append(errs, fmt.Errorf("%w: active %t, want %t", ErrExpectation, got, *e.Active))
		}
	}
	return errors.Join(errs...)
}

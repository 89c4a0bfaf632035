package checks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/sirupsen/logrus"
)

const (
	minPeriodHours = 1
	maxPeriodHours = 168

	availableNamesShown = 5
)

// DispatchError reports an unknown check type or a missing argument.
type DispatchError struct {
	Reason string
	Notes  []string
}

func (e *DispatchError) Error() string {
	return e.Reason
}

// Validator is implemented by checks that validate their own arguments
// before any network activity.
type Validator interface {
	Validate(req Request) error
}

// Dispatcher selects, validates and runs one check.
type Dispatcher struct {
	registry    *Registry
	env         Env
	diagnostics io.Writer
}

// NewDispatcher creates a dispatcher. Stack traces for unexpected failures
// go to stderr in verbose mode.
func NewDispatcher(registry *Registry, env Env) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		env:         env,
		diagnostics: os.Stderr,
	}
}

// SetDiagnostics redirects verbose stack traces.
func (d *Dispatcher) SetDiagnostics(w io.Writer) {
	d.diagnostics = w
}

// Validate checks the request against the selected check's requirements
// without touching the network.
func (d *Dispatcher) Validate(req Request) (Check, error) {
	if req.Type == "" {
		return nil, &DispatchError{Reason: "Missing required argument: -t check type"}
	}
	check, ok := d.registry.Lookup(req.Type)
	if !ok {
		return nil, &DispatchError{
			Reason: fmt.Sprintf("Invalid type '%s'.", req.Type),
			Notes:  d.registry.Catalogue(),
		}
	}

	reqs := check.Requirements()
	if req.Host == "" {
		return nil, &DispatchError{Reason: "Missing required argument: -l host"}
	}
	if reqs.Token && req.Token == "" {
		return nil, &DispatchError{Reason: "Missing required argument: -a API token"}
	}
	if reqs.Target && req.Target == "" {
		return nil, &DispatchError{Reason: fmt.Sprintf("Missing required argument: -n name (required for type '%s')", req.Type)}
	}

	switch reqs.Thresholds {
	case ThresholdsNormal:
		if err := req.Thresholds(false).Validate(); err != nil {
			return nil, err
		}
	case ThresholdsInverted:
		if err := req.Thresholds(true).Validate(); err != nil {
			return nil, err
		}
	}

	if reqs.Period && (req.PeriodHours < minPeriodHours || req.PeriodHours > maxPeriodHours) {
		return nil, &plugin.ValidationError{Reason: "Period must be between 1 and 168 hours"}
	}

	if v, ok := check.(Validator); ok {
		if err := v.Validate(req); err != nil {
			return nil, err
		}
	}
	return check, nil
}

// Dispatch validates and runs the requested check, converting every failure
// into a result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) plugin.Result {
	check, err := d.Validate(req)
	if err != nil {
		return d.errorResult(req, err)
	}

	log := d.env.Logger.WithField("check", check.Name())
	log.Debug("Running check")

	result, err := d.run(ctx, check, req)
	if err != nil {
		log.WithField("error", err).Debug("Check failed")
		return d.errorResult(req, err)
	}
	log.WithField("severity", result.Severity).Debug("Check finished")
	return result
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprint(e.value)
}

func (d *Dispatcher) run(ctx context.Context, check Check, req Request) (result plugin.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return check.Run(ctx, d.env, req)
}

func (d *Dispatcher) errorResult(req Request, err error) plugin.Result {
	var (
		dispatchErr   *DispatchError
		validationErr *plugin.ValidationError
		notFound      *hycu.NotFoundError
		apiErr        hycu.APIError
	)

	switch {
	case errors.As(err, &dispatchErr):
		return plugin.Unknownf("%s", dispatchErr.Reason).WithNotes(dispatchErr.Notes...)
	case errors.As(err, &validationErr):
		return plugin.Unknownf("%s", validationErr.Error())
	case errors.As(err, &notFound) && notFound.Unresolved():
		return notFoundResult(notFound)
	case errors.As(err, &apiErr):
		return plugin.Criticalf("API Error - %s", apiErr.Error())
	}

	if req.Verbose {
		d.env.Logger.WithFields(logrus.Fields{"error": err}).Error("Unexpected error")
		var p *panicError
		if errors.As(err, &p) {
			d.diagnostics.Write(p.stack)
		} else {
			fmt.Fprintf(d.diagnostics, "%+v\n", err)
		}
	}
	return plugin.Unknownf("Unexpected error - %s", err.Error())
}

func notFoundResult(e *hycu.NotFoundError) plugin.Result {
	if len(e.Available) == 0 {
		return plugin.Criticalf("%s (no %s found)", e.Error(), e.Plural).WithNotes(pageNote(e.Plural, e.Truncated)...)
	}
	shown := e.Available
	if len(shown) > availableNamesShown {
		shown = shown[:availableNamesShown]
	}
	r := plugin.Criticalf("%s", e.Error()).
		WithNotes(fmt.Sprintf("Available %s: %s", e.Plural, strings.Join(shown, ", ")))
	if extra := len(e.Available) - availableNamesShown; extra > 0 {
		r = r.WithNotes(fmt.Sprintf("... and %d more", extra))
	}
	return r.WithNotes(pageNote(e.Plural, e.Truncated)...)
}

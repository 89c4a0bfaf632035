// Package checks provides the HYCU check handlers, the registry that names
// them and the dispatcher that validates a request and runs one.
package checks

import (
	"context"
	"net"
	"time"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/sirupsen/logrus"
	"oss.indeed.com/go/libtime"
)

// Category groups check types for help output.
type Category string

const (
	CategoryObjects    Category = "objects"
	CategoryPolicies   Category = "policies"
	CategoryGlobal     Category = "global"
	CategoryStorage    Category = "storage"
	CategoryValidation Category = "validation"
	CategoryNetwork    Category = "network"
)

// Categories lists the categories in display order.
var Categories = []Category{
	CategoryObjects,
	CategoryPolicies,
	CategoryGlobal,
	CategoryStorage,
	CategoryValidation,
	CategoryNetwork,
}

// ThresholdMode says how a check uses -w/-c.
type ThresholdMode int

const (
	ThresholdsNone ThresholdMode = iota
	ThresholdsNormal
	ThresholdsInverted
)

// Requirements declares which request fields a check needs.
type Requirements struct {
	Token      bool
	Target     bool
	Thresholds ThresholdMode
	Period     bool
}

// Check is the interface that all check handlers implement.
type Check interface {
	// Name returns the -t token selecting the check.
	Name() string
	Category() Category
	Requirements() Requirements
	Run(ctx context.Context, env Env, req Request) (plugin.Result, error)
}

// Clock supplies the current time for windowed checks.
type Clock interface {
	Now() time.Time
}

// Dialer opens TCP connections for the port probe.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Env holds the collaborators a check may use.
type Env struct {
	API      hycu.API
	Resolver *hycu.Resolver
	Dialer   Dialer
	Clock    Clock
	Logger   *logrus.Logger
}

// NewEnv wires an Env around an API client with the system clock and a
// plain net.Dialer.
func NewEnv(api hycu.API, logger *logrus.Logger) Env {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return Env{
		API:      api,
		Resolver: hycu.NewResolver(api, logger),
		Dialer:   &net.Dialer{},
		Clock:    libtime.SystemClock(),
		Logger:   logger,
	}
}

// Request is one check invocation, built once from the command line.
type Request struct {
	Host     string
	Token    string
	Target   string
	Type     string
	Warning  int
	Critical int
	// PeriodHours is the look-back window for jobs and validations.
	PeriodHours int
	Timeout     time.Duration
	Verbose     bool
}

// Thresholds returns the warning/critical pair in the given mode.
func (r Request) Thresholds(inverted bool) plugin.Thresholds {
	return plugin.Thresholds{Warning: r.Warning, Critical: r.Critical, Inverted: inverted}
}

// Period returns the look-back window.
func (r Request) Period() time.Duration {
	return time.Duration(r.PeriodHours) * time.Hour
}

// meta carries the static description shared by every handler.
type meta struct {
	name     string
	category Category
	reqs     Requirements
}

func (m meta) Name() string               { return m.name }
func (m meta) Category() Category         { return m.category }
func (m meta) Requirements() Requirements { return m.reqs }

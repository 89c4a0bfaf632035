package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
)

const (
	managerProtected  = "protected"
	managerCompliance = "compliance"

	failedJobsShown = 10
)

var errEmptyDashboard = errors.New("VM dashboard returned no entities")

// ManagerCheck reports manager-wide VM protection or compliance.
type ManagerCheck struct {
	meta
}

// NewManagerCheck returns the check for -t manager.
func NewManagerCheck() *ManagerCheck {
	return &ManagerCheck{meta: meta{
		name:     "manager",
		category: CategoryGlobal,
		reqs:     Requirements{Token: true, Target: true},
	}}
}

// Validate accepts only the two sub-modes.
func (c *ManagerCheck) Validate(req Request) error {
	if req.Target != managerProtected && req.Target != managerCompliance {
		return &DispatchError{Reason: "For manager type, use -n protected or -n compliance"}
	}
	return nil
}

// Run reads the VM dashboard. Any unprotected (or red) VM is CRITICAL.
func (c *ManagerCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	if err := c.Validate(req); err != nil {
		return plugin.Result{}, err
	}

	page, err := env.API.VMDashboard(ctx)
	if err != nil {
		return plugin.Result{}, err
	}
	dash, ok := page.First()
	if !ok {
		return plugin.Result{}, errEmptyDashboard
	}

	if req.Target == managerProtected {
		sev := plugin.OK
		if dash.UnprotectedCount > 0 {
			sev = plugin.Critical
		}
		return plugin.Resultf(sev, "%d VMs not protected out of %d total", dash.UnprotectedCount, dash.TotalCount).
			WithMetrics(
				plugin.Count("vms_unprotected", dash.UnprotectedCount),
				plugin.Count("vms_protected", dash.ProtectedCount),
				plugin.Count("vms_total", dash.TotalCount),
			), nil
	}

	sev := plugin.OK
	if dash.CompliancyRedCount > 0 {
		sev = plugin.Critical
	}
	return plugin.Resultf(sev, "%d VMs with non-compliant backups", dash.CompliancyRedCount).
		WithMetrics(
			plugin.Count("vms_noncompliant", dash.CompliancyRedCount),
			plugin.Count("vms_compliant", dash.CompliancyGreenCount),
			plugin.Count("vms_unknown", dash.CompliancyGreyCount),
		), nil
}

// jobWindow returns the [now-period, now] window for job queries.
func jobWindow(env Env, req Request) (time.Time, time.Time) {
	end := env.Clock.Now()
	return end.Add(-req.Period()), end
}

type jobStats struct {
	ok, warning, errored, running, other int

	failed []hycu.Job
}

func countJobs(jobs []hycu.Job) jobStats {
	var s jobStats
	for _, job := range jobs {
		switch strings.ToUpper(orDefault(job.Status, "UNKNOWN")) {
		case "OK":
			s.ok++
		case "WARNING":
			s.warning++
			s.failed = append(s.failed, job)
		case "ERROR":
			s.errored++
			s.failed = append(s.failed, job)
		case "RUNNING", "QUEUED", "PENDING":
			s.running++
		default:
			s.other++
		}
	}
	return s
}

// successRate is OK jobs over completed jobs, 100 when nothing completed.
func (s jobStats) successRate() float64 {
	completed := s.ok + s.warning + s.errored
	if completed == 0 {
		return 100
	}
	return float64(s.ok) / float64(completed) * 100
}

// JobsCheck counts failed jobs over a look-back window.
type JobsCheck struct {
	meta
}

// NewJobsCheck returns the check for -t jobs.
func NewJobsCheck() *JobsCheck {
	return &JobsCheck{meta: meta{
		name:     "jobs",
		category: CategoryGlobal,
		reqs:     Requirements{Token: true, Thresholds: ThresholdsNormal, Period: true},
	}}
}

// Run counts jobs by status; WARNING and ERROR jobs count as failed.
func (c *JobsCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	start, end := jobWindow(env, req)
	env.Logger.WithField("from", start.UnixMilli()).WithField("to", end.UnixMilli()).Debug("Job window")

	page, err := env.API.Jobs(ctx, start, end)
	if err != nil {
		return plugin.Result{}, err
	}

	stats := countJobs(page.Entities)
	failed := stats.warning + stats.errored
	thresholds := req.Thresholds(false)
	sev := thresholds.Classify(failed)

	result := plugin.Resultf(sev, "HYCU jobs over %dh - %d failed (%d errors, %d warnings), %d successful, %d running",
		req.PeriodHours, failed, stats.errored, stats.warning, stats.ok, stats.running).
		WithMetrics(
			plugin.Count("jobs_ok", stats.ok).WithMin(0),
			plugin.Count("jobs_warning", stats.warning).WithMin(0),
			plugin.Count("jobs_error", stats.errored).WithMin(0),
			plugin.Count("jobs_failed", failed).WithThresholds(thresholds).WithMin(0),
			plugin.Count("jobs_running", stats.running).WithMin(0),
			plugin.Percent("success_rate", stats.successRate()),
		)

	if failed > 0 {
		details := []string{"Failed Jobs Details:"}
		for i, job := range stats.failed {
			if i == failedJobsShown {
				details = append(details, fmt.Sprintf("  ... and %d more failed jobs", len(stats.failed)-failedJobsShown))
				break
			}
			details = append(details, fmt.Sprintf("  - [%s] %s (Type: %s)",
				strings.ToUpper(job.Status), orDefault(job.TaskName, "Unknown task"), orDefault(job.Type, "UNKNOWN")))
		}
		result = result.WithDetails(details...)
	}
	return result, nil
}

// LicenseCheck reports days left on the license using countdown thresholds.
type LicenseCheck struct {
	meta
}

// NewLicenseCheck returns the check for -t license.
func NewLicenseCheck() *LicenseCheck {
	return &LicenseCheck{meta: meta{
		name:     "license",
		category: CategoryGlobal,
		reqs:     Requirements{Token: true, Thresholds: ThresholdsInverted},
	}}
}

func formatExpiration(ms int64) string {
	if ms <= 0 {
		return "N/A"
	}
	return time.UnixMilli(ms).Format("2006-01-02")
}

// Run classifies daysLeft with inverted thresholds.
func (c *LicenseCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	page, err := env.API.License(ctx)
	if err != nil {
		return plugin.Result{}, err
	}
	lic, ok := page.First()
	if !ok {
		return plugin.Criticalf("No license information found"), nil
	}

	thresholds := req.Thresholds(true)
	sev := thresholds.Classify(lic.DaysLeft)

	return plugin.Resultf(sev, "License '%s' - %d days left (expires %s), Status: %s, VMs: %d/%d, Sockets: %d/%d",
		orDefault(lic.CompanyName, "N/A"), lic.DaysLeft, formatExpiration(lic.ExpirationDate),
		orDefault(lic.Status, "UNKNOWN"), lic.ProtectedVMs, lic.LicensedVMs,
		lic.ActualSockets, lic.LicensedSockets).
		WithMetrics(
			plugin.Count("days_left", lic.DaysLeft).WithThresholds(thresholds).WithMin(0),
			plugin.Count("vms_protected", lic.ProtectedVMs).WithMin(0).WithMax(float64(lic.LicensedVMs)),
			plugin.Count("vms_licensed", lic.LicensedVMs).WithMin(0),
			plugin.Count("sockets_actual", lic.ActualSockets).WithMin(0).WithMax(float64(lic.LicensedSockets)),
			plugin.Count("sockets_licensed", lic.LicensedSockets).WithMin(0),
		).
		WithDetails(
			"License Details:",
			fmt.Sprintf("  Type: %s", orDefault(lic.Type, "N/A")),
			fmt.Sprintf("  Edition: %s", orDefault(lic.VersionType, "N/A")),
		), nil
}

// VersionCheck reports controller version information. It is always OK.
type VersionCheck struct {
	meta
}

// NewVersionCheck returns the check for -t version.
func NewVersionCheck() *VersionCheck {
	return &VersionCheck{meta: meta{
		name:     "version",
		category: CategoryGlobal,
		reqs:     Requirements{Token: true},
	}}
}

func (c *VersionCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	page, err := env.API.Controller(ctx)
	if err != nil {
		return plugin.Result{}, err
	}
	ctrl, ok := page.First()
	if !ok {
		return plugin.Warningf("Controller information not available"), nil
	}

	return plugin.OKf("HYCU Controller '%s' - Version %s (Build %s), Hypervisor: %s",
		orDefault(ctrl.ControllerVMName, "N/A"),
		orDefault(ctrl.SoftwareVersion, "N/A"),
		orDefault(ctrl.BuildVersion, "N/A"),
		orDefault(ctrl.ExternalHypervisorType, "N/A")), nil
}

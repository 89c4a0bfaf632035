package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/hashicorp/go-multierror"
)

const unassignedNamesShown = 10

// BackupValidationCheck counts failed backup validations over a window.
type BackupValidationCheck struct {
	meta
}

// NewBackupValidationCheck returns the check for -t backup-validation.
func NewBackupValidationCheck() *BackupValidationCheck {
	return &BackupValidationCheck{meta: meta{
		name:     "backup-validation",
		category: CategoryValidation,
		reqs:     Requirements{Token: true, Thresholds: ThresholdsNormal, Period: true},
	}}
}

func isValidationJob(job hycu.Job) bool {
	return strings.Contains(job.Type, "VALIDATION") || strings.Contains(job.Type, "RESTORE_VALIDATE")
}

// Run filters the job window down to validation jobs.
func (c *BackupValidationCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	start, end := jobWindow(env, req)
	page, err := env.API.Jobs(ctx, start, end)
	if err != nil {
		return plugin.Result{}, err
	}

	var validations []hycu.Job
	for _, job := range page.Entities {
		if isValidationJob(job) {
			validations = append(validations, job)
		}
	}
	stats := countJobs(validations)
	failed := stats.warning + stats.errored
	env.Logger.WithField("total", len(validations)).WithField("failed", failed).Debug("Counted validations")

	thresholds := req.Thresholds(false)
	sev := thresholds.Classify(failed)

	return plugin.Resultf(sev, "Backup validations over %dh - %d failed (%d errors, %d warnings), %d successful",
		req.PeriodHours, failed, stats.errored, stats.warning, stats.ok).
		WithMetrics(
			plugin.Count("validations_total", len(validations)).WithMin(0),
			plugin.Count("validations_ok", stats.ok).WithMin(0),
			plugin.Count("validations_failed", failed).WithThresholds(thresholds).WithMin(0),
		), nil
}

// unassignedGroup is one object category without a protection policy.
type unassignedGroup struct {
	label  string
	metric string
	names  []string
}

func (g unassignedGroup) summary() string {
	shown := g.names
	if len(shown) > unassignedNamesShown {
		shown = shown[:unassignedNamesShown]
	}
	list := strings.Join(shown, ", ")
	if extra := len(g.names) - unassignedNamesShown; extra > 0 {
		list += fmt.Sprintf(" (+%d more)", extra)
	}
	return fmt.Sprintf("%s: %s", g.label, list)
}

// UnassignedCheck counts objects of every kind that have no policy.
type UnassignedCheck struct {
	meta
}

// NewUnassignedCheck returns the check for -t unassigned.
func NewUnassignedCheck() *UnassignedCheck {
	return &UnassignedCheck{meta: meta{
		name:     "unassigned",
		category: CategoryValidation,
		reqs:     Requirements{Token: true, Thresholds: ThresholdsNormal},
	}}
}

// Run fetches each listing independently. A failed listing contributes zero
// objects and is only logged.
func (c *UnassignedCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	var (
		errs    *multierror.Error
		notes   []string
		vms     = unassignedGroup{label: "VMs", metric: "unassigned_vms"}
		shares  = unassignedGroup{label: "Shares", metric: "unassigned_shares"}
		buckets = unassignedGroup{label: "Buckets", metric: "unassigned_buckets"}
		apps    = unassignedGroup{label: "Apps", metric: "unassigned_apps"}
		vgs     = unassignedGroup{label: "VGs", metric: "unassigned_vgs"}
	)

	if page, err := env.API.ListVMs(ctx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("vms: %w", err))
	} else {
		notes = append(notes, firstPage(env, page, "VMs")...)
		for _, vm := range page.Entities {
			if vm.ProtectionGroupName == "" {
				vms.names = append(vms.names, orDefault(vm.VMName, "Unknown"))
			}
		}
	}

	if page, err := env.API.ListShares(ctx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("shares: %w", err))
	} else {
		notes = append(notes, firstPage(env, page, "shares")...)
		sets := partitionShares(page.Entities)
		for _, s := range sets.files {
			if s.ProtectionGroupName == "" {
				shares.names = append(shares.names, orDefault(s.ShareName, "Unknown"))
			}
		}
		for _, s := range sets.buckets {
			if s.ProtectionGroupName == "" {
				buckets.names = append(buckets.names, orDefault(s.ShareName, "Unknown"))
			}
		}
	}

	if page, err := env.API.ListApplications(ctx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("applications: %w", err))
	} else {
		notes = append(notes, firstPage(env, page, "applications")...)
		for _, app := range page.Entities {
			if app.ProtectionGroupName == "" {
				apps.names = append(apps.names, orDefault(app.Name, "Unknown"))
			}
		}
	}

	if page, err := env.API.ListVolumeGroups(ctx); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("volume groups: %w", err))
	} else {
		notes = append(notes, firstPage(env, page, "volume groups")...)
		for _, vg := range page.Entities {
			if vg.ProtectionGroupName == "" {
				vgs.names = append(vgs.names, orDefault(vg.Name, "Unknown"))
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		env.Logger.WithField("error", err).Debug("Some listings failed, counted as zero")
	}

	groups := []unassignedGroup{vms, shares, buckets, apps, vgs}
	total := 0
	for _, g := range groups {
		total += len(g.names)
	}

	thresholds := req.Thresholds(false)
	sev := thresholds.Classify(total)

	text := fmt.Sprintf("%d unassigned objects - %d VMs, %d shares, %d buckets, %d apps, %d VGs",
		total, len(vms.names), len(shares.names), len(buckets.names), len(apps.names), len(vgs.names))

	var summaries, details []string
	for _, g := range groups {
		if len(g.names) == 0 {
			continue
		}
		summaries = append(summaries, g.summary())
		details = append(details, fmt.Sprintf("  %s: %s", g.label, strings.Join(g.names, ", ")))
	}
	if len(summaries) > 0 {
		text += " - " + strings.Join(summaries, " / ")
	}

	result := plugin.Resultf(sev, "%s", text).
		WithMetrics(plugin.Count("unassigned_total", total).WithThresholds(thresholds).WithMin(0))
	for _, g := range groups {
		result = result.WithMetrics(plugin.Count(g.metric, len(g.names)).WithMin(0))
	}
	result = result.WithNotes(notes...)
	if len(details) > 0 {
		result = result.WithDetails(append([]string{"Unassigned Objects:"}, details...)...)
	}
	return result, nil
}

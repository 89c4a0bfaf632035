package checks

import (
	"context"
	"fmt"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/sirupsen/logrus"
)

var (
	backupStatuses = plugin.StatusTable{
		"OK":      plugin.OK,
		"WARNING": plugin.Warning,
		"FATAL":   plugin.Critical,
	}

	targetHealth = plugin.StatusTable{
		"GREEN": plugin.OK,
		"GREY":  plugin.Warning,
		"GRAY":  plugin.Warning,
		"RED":   plugin.Critical,
	}
)

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// resolve looks up name and returns a note when the listing was truncated.
func resolve(ctx context.Context, env Env, c hycu.Collection, name string) (hycu.Resolution, []string, error) {
	res, err := env.Resolver.Resolve(ctx, c, name)
	if err != nil {
		return res, nil, err
	}
	return res, pageNote(c.Plural, res.Truncated), nil
}

func pageNote(plural string, truncated bool) []string {
	if !truncated {
		return nil
	}
	return []string{fmt.Sprintf("Note: only the first page of %s was searched", plural)}
}

// firstPage warns when a listing was cut off at one page and returns the
// matching note.
func firstPage[T any](env Env, page hycu.Page[T], plural string) []string {
	if !page.Truncated() {
		return nil
	}
	env.Logger.WithFields(logrus.Fields{
		"listing":  plural,
		"returned": len(page.Entities),
		"total":    page.Metadata.GrandTotalEntityCount,
	}).Warn("Listing truncated, counting the first page only")
	return pageNote(plural, true)
}

// latestBackup returns the newest backup, or false when the VM has none.
func latestBackup(page hycu.Page[hycu.Backup]) (hycu.Backup, bool) {
	if page.Metadata.GrandTotalEntityCount == 0 {
		return hycu.Backup{}, false
	}
	return page.First()
}

// VMCheck reports the status of a VM's latest backup.
type VMCheck struct {
	meta
	byID bool
}

// NewVMCheck returns the check for -t vm (VM given by name).
func NewVMCheck() *VMCheck {
	return &VMCheck{meta: meta{
		name:     "vm",
		category: CategoryObjects,
		reqs:     Requirements{Token: true, Target: true},
	}}
}

// NewVMIDCheck returns the check for -t vmid (VM given by identifier).
func NewVMIDCheck() *VMCheck {
	return &VMCheck{
		meta: meta{
			name:     "vmid",
			category: CategoryObjects,
			reqs:     Requirements{Token: true, Target: true},
		},
		byID: true,
	}
}

// Run fetches the latest backups and maps the newest status.
func (c *VMCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	uuid := req.Target
	var notes []string
	if !c.byID {
		res, n, err := resolve(ctx, env, hycu.VMs, req.Target)
		if err != nil {
			return plugin.Result{}, err
		}
		uuid, notes = res.UUID, n
	}

	page, err := env.API.VMBackups(ctx, uuid)
	if err != nil {
		return plugin.Result{}, err
	}

	latest, ok := latestBackup(page)
	if !ok {
		return plugin.Criticalf("%s has no backups", req.Target).
			WithMetrics(plugin.Count("backup_status", 0)).
			WithNotes(notes...), nil
	}

	sev := backupStatuses.Lookup(latest.Status)
	return plugin.Resultf(sev, "%s is %s for last %s",
		orDefault(latest.VMName, req.Target), latest.Status, latest.Type).
		WithMetrics(plugin.Count("backup_status", sev.MetricValue())).
		WithNotes(notes...), nil
}

// TargetCheck reports the health of a backup target.
type TargetCheck struct {
	meta
}

// NewTargetCheck returns the check for -t target.
func NewTargetCheck() *TargetCheck {
	return &TargetCheck{meta: meta{
		name:     "target",
		category: CategoryObjects,
		reqs:     Requirements{Token: true, Target: true},
	}}
}

// Run resolves the target and maps its health string.
func (c *TargetCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	res, notes, err := resolve(ctx, env, hycu.Targets, req.Target)
	if err != nil {
		return plugin.Result{}, err
	}

	target, err := env.API.Target(ctx, res.UUID)
	if err != nil {
		return plugin.Result{}, err
	}

	health := orDefault(target.Health, "UNKNOWN")
	sev := targetHealth.Lookup(health)
	return plugin.Resultf(sev, "%s is %s", orDefault(target.Name, req.Target), health).
		WithMetrics(plugin.Count("target_health", sev.MetricValue())).
		WithNotes(notes...), nil
}

// ArchiveCheck reports the archive outcome of a VM's latest backup.
type ArchiveCheck struct {
	meta
}

// NewArchiveCheck returns the check for -t archive.
func NewArchiveCheck() *ArchiveCheck {
	return &ArchiveCheck{meta: meta{
		name:     "archive",
		category: CategoryObjects,
		reqs:     Requirements{Token: true, Target: true},
	}}
}

// Run classifies the archive counters: any failure is CRITICAL, at least
// one archive is OK, none at all is WARNING.
func (c *ArchiveCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	res, notes, err := resolve(ctx, env, hycu.VMs, req.Target)
	if err != nil {
		return plugin.Result{}, err
	}

	page, err := env.API.VMBackups(ctx, res.UUID)
	if err != nil {
		return plugin.Result{}, err
	}

	latest, ok := latestBackup(page)
	if !ok {
		return plugin.Criticalf("%s has no backups", req.Target).
			WithMetrics(plugin.Count("archive_status", 0)).
			WithNotes(notes...), nil
	}

	var (
		sev   plugin.Severity
		label string
	)
	switch {
	case latest.NumberOfFailedArchives >= 1:
		sev, label = plugin.Critical, "FAILED"
	case latest.NumberOfArchives >= 1:
		sev, label = plugin.OK, "OK"
	default:
		sev, label = plugin.Warning, "MISSING"
	}

	return plugin.Resultf(sev, "%s archive is %s for last %s",
		orDefault(latest.VMName, req.Target), label, latest.Type).
		WithMetrics(
			plugin.Count("archive_status", sev.MetricValue()),
			plugin.Count("archives_ok", latest.NumberOfArchives),
			plugin.Count("archives_failed", latest.NumberOfFailedArchives),
		).
		WithNotes(notes...), nil
}

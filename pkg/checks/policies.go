package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
)

var policyCompliance = plugin.StatusTable{
	"GREEN":   plugin.OK,
	"WARNING": plugin.Warning,
	"YELLOW":  plugin.Warning,
	"RED":     plugin.Critical,
}

// PolicyCheck reports a policy's compliance status.
type PolicyCheck struct {
	meta
}

// NewPolicyCheck returns the check for -t policy.
func NewPolicyCheck() *PolicyCheck {
	return &PolicyCheck{meta: meta{
		name:     "policy",
		category: CategoryPolicies,
		reqs:     Requirements{Token: true, Target: true},
	}}
}

// Run resolves the policy and maps its compliancy status.
func (c *PolicyCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	res, notes, err := resolve(ctx, env, hycu.Policies, req.Target)
	if err != nil {
		return plugin.Result{}, err
	}

	policy, err := env.API.Policy(ctx, res.UUID)
	if err != nil {
		return plugin.Result{}, err
	}

	status := orDefault(policy.CompliancyStatus, "UNKNOWN")
	sev := policyCompliance.Lookup(status)
	return plugin.Resultf(sev, "%s is %s including %d VMs",
		orDefault(policy.Name, req.Target), status, policy.CompliantVMsCount).
		WithMetrics(
			plugin.Count("policy_status", sev.MetricValue()),
			plugin.Count("compliant_vms", policy.CompliantVMsCount),
		).
		WithNotes(notes...), nil
}

// objectCounts is one object type's compliance counters within a policy.
type objectCounts struct {
	total, compliant, uncompliant int
}

type policyStats struct {
	vms, shares, apps, buckets, vgs objectCounts
}

func newPolicyStats(p hycu.Policy) policyStats {
	return policyStats{
		vms:     objectCounts{p.VMsCount, p.CompliantVMsCount, p.UncompliantVMsCount},
		shares:  objectCounts{p.SharesCount, p.CompliantSharesCount, p.UncompliantSharesCount},
		apps:    objectCounts{p.AppsCount, p.CompliantAppsCount, p.UncompliantAppsCount},
		buckets: objectCounts{p.BucketsCount, p.CompliantBucketsCount, p.UncompliantBucketsCount},
		vgs:     objectCounts{p.VGsCount, p.CompliantVGsCount, p.UncompliantVGsCount},
	}
}

func (s policyStats) sum() objectCounts {
	var out objectCounts
	for _, c := range []objectCounts{s.vms, s.shares, s.apps, s.buckets, s.vgs} {
		out.total += c.total
		out.compliant += c.compliant
		out.uncompliant += c.uncompliant
	}
	return out
}

// complianceRate is the compliant share of all objects, 100 when empty.
func complianceRate(c objectCounts) float64 {
	if c.total == 0 {
		return 100
	}
	return float64(c.compliant) / float64(c.total) * 100
}

// PolicyAdvancedCheck counts compliant and non-compliant objects of every
// type in a policy and applies thresholds to the non-compliant total.
type PolicyAdvancedCheck struct {
	meta
}

// NewPolicyAdvancedCheck returns the check for -t policy-advanced.
func NewPolicyAdvancedCheck() *PolicyAdvancedCheck {
	return &PolicyAdvancedCheck{meta: meta{
		name:     "policy-advanced",
		category: CategoryPolicies,
		reqs:     Requirements{Token: true, Target: true, Thresholds: ThresholdsNormal},
	}}
}

// Run matches the policy case-insensitively, then evaluates its counters.
func (c *PolicyAdvancedCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	listing, err := env.API.ListPolicies(ctx)
	if err != nil {
		return plugin.Result{}, err
	}

	var (
		match     hycu.Policy
		found     bool
		available []string
	)
	for _, p := range listing.Entities {
		available = append(available, p.Name)
		if !found && strings.EqualFold(p.Name, req.Target) {
			match, found = p, true
		}
	}
	if !found {
		return plugin.Result{}, &hycu.NotFoundError{
			Label:     hycu.Policies.Label,
			Plural:    hycu.Policies.Plural,
			Name:      req.Target,
			Available: available,
			Truncated: listing.Truncated(),
		}
	}
	notes := firstPage(env, listing, hycu.Policies.Plural)
	env.Logger.WithField("uuid", match.UUID).Debugf("Policy found: %s", match.Name)

	policy, err := env.API.Policy(ctx, match.UUID)
	if err != nil {
		return plugin.Result{}, err
	}

	stats := newPolicyStats(policy)
	total := stats.sum()
	rate := complianceRate(total)
	thresholds := req.Thresholds(false)
	sev := thresholds.Classify(total.uncompliant)

	name := orDefault(policy.Name, match.Name)
	result := plugin.Resultf(sev,
		"Policy '%s' - %d/%d objects compliant (%d/%d VMs, %d/%d shares, %d/%d apps, %d/%d buckets, %d/%d VGs)",
		name, total.compliant, total.total,
		stats.vms.compliant, stats.vms.total,
		stats.shares.compliant, stats.shares.total,
		stats.apps.compliant, stats.apps.total,
		stats.buckets.compliant, stats.buckets.total,
		stats.vgs.compliant, stats.vgs.total)

	result = result.WithMetrics(
		plugin.Count("total_objects", total.total).WithMin(0),
		plugin.Count("compliant", total.compliant).WithMin(0),
		plugin.Count("uncompliant", total.uncompliant).WithThresholds(thresholds).WithMin(0),
		perTypeMetric("vms_compliant", stats.vms.compliant, stats.vms.total),
		perTypeMetric("vms_uncompliant", stats.vms.uncompliant, stats.vms.total),
		perTypeMetric("shares_compliant", stats.shares.compliant, stats.shares.total),
		perTypeMetric("shares_uncompliant", stats.shares.uncompliant, stats.shares.total),
		perTypeMetric("apps_compliant", stats.apps.compliant, stats.apps.total),
		perTypeMetric("apps_uncompliant", stats.apps.uncompliant, stats.apps.total),
		plugin.Percent("compliance_rate", rate),
	)

	details := []string{
		"Detailed Breakdown:",
		fmt.Sprintf("  VMs: %d/%d compliant", stats.vms.compliant, stats.vms.total),
		fmt.Sprintf("  Shares: %d/%d compliant", stats.shares.compliant, stats.shares.total),
		fmt.Sprintf("  Applications: %d/%d compliant", stats.apps.compliant, stats.apps.total),
		fmt.Sprintf("  Buckets: %d/%d compliant", stats.buckets.compliant, stats.buckets.total),
	}
	if stats.vgs.total > 0 {
		details = append(details, fmt.Sprintf("  Volume Groups: %d/%d compliant", stats.vgs.compliant, stats.vgs.total))
	}
	details = append(details, fmt.Sprintf("  Compliance Rate: %.1f%%", rate))

	return result.WithNotes(notes...).WithDetails(details...), nil
}

func perTypeMetric(name string, value, total int) plugin.Metric {
	return plugin.Count(name, value).WithMin(0).WithMax(float64(total))
}

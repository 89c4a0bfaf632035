package checks

import (
	"context"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
)

const (
	shareStatusProtected   = "PROTECTED"
	shareStatusUnprotected = "UNPROTECTED"
)

// shareSets is /shares split by protocol. An entry advertising both a file
// protocol and S3 is treated as a file share only.
type shareSets struct {
	files   []hycu.Share
	buckets []hycu.Share
	other   []hycu.Share
}

func partitionShares(shares []hycu.Share) shareSets {
	var sets shareSets
	for _, s := range shares {
		switch {
		case s.HasProtocol("NFS", "SMB"):
			sets.files = append(sets.files, s)
		case s.HasProtocol("S3"):
			sets.buckets = append(sets.buckets, s)
		default:
			sets.other = append(sets.other, s)
		}
	}
	return sets
}

type shareStats struct {
	total, protected, compliant, nonCompliant, unprotected int
}

// tallyShares counts only entries whose protection status is defined.
// Non-compliant means protected with a RED or YELLOW compliancy.
func tallyShares(shares []hycu.Share) shareStats {
	var s shareStats
	for _, share := range shares {
		switch share.Status {
		case shareStatusProtected:
			s.total++
			s.protected++
			switch share.CompliancyStatus {
			case "GREEN":
				s.compliant++
			case "RED", "YELLOW":
				s.nonCompliant++
			}
		case shareStatusUnprotected:
			s.total++
			s.unprotected++
		}
	}
	return s
}

// StorageCheck evaluates compliance of either file shares or buckets.
type StorageCheck struct {
	meta
	label  string
	prefix string
	pick   func(shareSets) []hycu.Share
}

// NewSharesCheck returns the check for -t shares (NFS and SMB).
func NewSharesCheck() *StorageCheck {
	return &StorageCheck{
		meta: meta{
			name:     "shares",
			category: CategoryStorage,
			reqs:     Requirements{Token: true, Thresholds: ThresholdsNormal},
		},
		label:  "Shares (NFS/SMB)",
		prefix: "shares",
		pick:   func(s shareSets) []hycu.Share { return s.files },
	}
}

// NewBucketsCheck returns the check for -t buckets (S3).
func NewBucketsCheck() *StorageCheck {
	return &StorageCheck{
		meta: meta{
			name:     "buckets",
			category: CategoryStorage,
			reqs:     Requirements{Token: true, Thresholds: ThresholdsNormal},
		},
		label:  "Buckets (S3)",
		prefix: "buckets",
		pick:   func(s shareSets) []hycu.Share { return s.buckets },
	}
}

// Run applies thresholds to the non-compliant count.
func (c *StorageCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	page, err := env.API.ListShares(ctx)
	if err != nil {
		return plugin.Result{}, err
	}

	notes := firstPage(env, page, "shares")
	stats := tallyShares(c.pick(partitionShares(page.Entities)))
	env.Logger.WithField("total", stats.total).
		WithField("protected", stats.protected).
		Debugf("Counted %s", c.prefix)

	thresholds := req.Thresholds(false)
	sev := thresholds.Classify(stats.nonCompliant)

	return plugin.Resultf(sev, "%s - %d/%d compliant, %d non-compliant, %d unprotected",
		c.label, stats.compliant, stats.total, stats.nonCompliant, stats.unprotected).
		WithMetrics(
			plugin.Count(c.prefix+"_total", stats.total).WithMin(0),
			plugin.Count(c.prefix+"_compliant", stats.compliant).WithMin(0),
			plugin.Count(c.prefix+"_non_compliant", stats.nonCompliant).WithThresholds(thresholds).WithMin(0),
			plugin.Count(c.prefix+"_unprotected", stats.unprotected).WithMin(0),
		).
		WithNotes(notes...), nil
}

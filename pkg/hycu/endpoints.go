package hycu

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const (
	listPageSize    = 1000
	jobsPageSize    = 10000
	backupsPageSize = 10
)

// API is the subset of the HYCU REST API used by the checks.
type API interface {
	Entities(ctx context.Context, endpoint string) (Page[Entity], error)
	ListVMs(ctx context.Context) (Page[VM], error)
	VMBackups(ctx context.Context, uuid string) (Page[Backup], error)
	Target(ctx context.Context, uuid string) (Target, error)
	ListPolicies(ctx context.Context) (Page[Policy], error)
	Policy(ctx context.Context, uuid string) (Policy, error)
	VMDashboard(ctx context.Context) (Page[VMDashboard], error)
	Jobs(ctx context.Context, start, end time.Time) (Page[Job], error)
	License(ctx context.Context) (Page[License], error)
	Controller(ctx context.Context) (Page[Controller], error)
	ListShares(ctx context.Context) (Page[Share], error)
	ListApplications(ctx context.Context) (Page[Application], error)
	ListVolumeGroups(ctx context.Context) (Page[VolumeGroup], error)
}

var _ API = (*Client)(nil)

func list[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	var page Page[T]
	if err := c.Get(ctx, path, query, &page); err != nil {
		return Page[T]{}, err
	}
	return page, nil
}

// Entities fetches the first page of any listing endpoint as untyped rows.
func (c *Client) Entities(ctx context.Context, endpoint string) (Page[Entity], error) {
	return list[Entity](ctx, c, endpoint, listQuery(listPageSize))
}

// ListVMs fetches /vms.
func (c *Client) ListVMs(ctx context.Context) (Page[VM], error) {
	return list[VM](ctx, c, "vms", listQuery(listPageSize))
}

// VMBackups fetches the most recent backups of a VM, newest first.
func (c *Client) VMBackups(ctx context.Context, uuid string) (Page[Backup], error) {
	return list[Backup](ctx, c, "vms/"+url.PathEscape(uuid)+"/backups", listQuery(backupsPageSize))
}

// Target fetches one target, accepting both response shapes.
func (c *Client) Target(ctx context.Context, uuid string) (Target, error) {
	var env targetEnvelope
	if err := c.Get(ctx, "targets/"+url.PathEscape(uuid), nil, &env); err != nil {
		return Target{}, err
	}
	return env.normalize(), nil
}

// ListPolicies fetches /policies.
func (c *Client) ListPolicies(ctx context.Context) (Page[Policy], error) {
	return list[Policy](ctx, c, "policies", listQuery(listPageSize))
}

// Policy fetches the detail record of one policy.
func (c *Client) Policy(ctx context.Context, uuid string) (Policy, error) {
	page, err := list[Policy](ctx, c, "policies/"+url.PathEscape(uuid), nil)
	if err != nil {
		return Policy{}, err
	}
	p, ok := page.First()
	if !ok {
		return Policy{}, fmt.Errorf("policy %s: empty detail response", uuid)
	}
	return p, nil
}

// VMDashboard fetches the manager VM dashboard.
func (c *Client) VMDashboard(ctx context.Context) (Page[VMDashboard], error) {
	return list[VMDashboard](ctx, c, "mom/dashboards/vms", nil)
}

// Jobs fetches the jobs that ran in [start, end].
func (c *Client) Jobs(ctx context.Context, start, end time.Time) (Page[Job], error) {
	q := listQuery(jobsPageSize)
	q.Set("startTime", epochMillis(start))
	q.Set("endTime", epochMillis(end))
	return list[Job](ctx, c, "jobs", q)
}

// License fetches the license record.
func (c *Client) License(ctx context.Context) (Page[License], error) {
	return list[License](ctx, c, "administration/license", listQuery(100))
}

// Controller fetches the controller description.
func (c *Client) Controller(ctx context.Context) (Page[Controller], error) {
	return list[Controller](ctx, c, "administration/controller", listQuery(1))
}

// ListShares fetches /shares, which holds both file shares and buckets.
func (c *Client) ListShares(ctx context.Context) (Page[Share], error) {
	return list[Share](ctx, c, "shares", listQuery(listPageSize))
}

// ListApplications fetches /applications.
func (c *Client) ListApplications(ctx context.Context) (Page[Application], error) {
	return list[Application](ctx, c, "applications", listQuery(listPageSize))
}

// ListVolumeGroups fetches /volumegroups.
func (c *Client) ListVolumeGroups(ctx context.Context) (Page[VolumeGroup], error) {
	return list[VolumeGroup](ctx, c, "volumegroups", listQuery(listPageSize))
}

package checks

import (
	"context"
	"io"
	"time"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/sirupsen/logrus"
)

// fakeAPI serves canned pages. A non-nil entry in errs fails that method.
type fakeAPI struct {
	entities     map[string]hycu.Page[hycu.Entity]
	backups      map[string]hycu.Page[hycu.Backup]
	targets      map[string]hycu.Target
	policies     hycu.Page[hycu.Policy]
	policyDetail map[string]hycu.Policy
	dashboard    hycu.Page[hycu.VMDashboard]
	jobs         hycu.Page[hycu.Job]
	license      hycu.Page[hycu.License]
	controller   hycu.Page[hycu.Controller]
	vms          hycu.Page[hycu.VM]
	shares       hycu.Page[hycu.Share]
	apps         hycu.Page[hycu.Application]
	vgs          hycu.Page[hycu.VolumeGroup]

	errs  map[string]error
	calls []string

	jobsStart, jobsEnd time.Time
}

func (f *fakeAPI) call(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeAPI) Entities(_ context.Context, endpoint string) (hycu.Page[hycu.Entity], error) {
	if err := f.call("entities:" + endpoint); err != nil {
		return hycu.Page[hycu.Entity]{}, err
	}
	return f.entities[endpoint], nil
}

func (f *fakeAPI) ListVMs(context.Context) (hycu.Page[hycu.VM], error) {
	return f.vms, f.call("vms")
}

func (f *fakeAPI) VMBackups(_ context.Context, uuid string) (hycu.Page[hycu.Backup], error) {
	return f.backups[uuid], f.call("backups:" + uuid)
}

func (f *fakeAPI) Target(_ context.Context, uuid string) (hycu.Target, error) {
	return f.targets[uuid], f.call("target:" + uuid)
}

func (f *fakeAPI) ListPolicies(context.Context) (hycu.Page[hycu.Policy], error) {
	return f.policies, f.call("policies")
}

func (f *fakeAPI) Policy(_ context.Context, uuid string) (hycu.Policy, error) {
	return f.policyDetail[uuid], f.call("policy:" + uuid)
}

func (f *fakeAPI) VMDashboard(context.Context) (hycu.Page[hycu.VMDashboard], error) {
	return f.dashboard, f.call("dashboard")
}

func (f *fakeAPI) Jobs(_ context.Context, start, end time.Time) (hycu.Page[hycu.Job], error) {
	f.jobsStart, f.jobsEnd = start, end
	return f.jobs, f.call("jobs")
}

func (f *fakeAPI) License(context.Context) (hycu.Page[hycu.License], error) {
	return f.license, f.call("license")
}

func (f *fakeAPI) Controller(context.Context) (hycu.Page[hycu.Controller], error) {
	return f.controller, f.call("controller")
}

func (f *fakeAPI) ListShares(context.Context) (hycu.Page[hycu.Share], error) {
	return f.shares, f.call("shares")
}

func (f *fakeAPI) ListApplications(context.Context) (hycu.Page[hycu.Application], error) {
	return f.apps, f.call("applications")
}

func (f *fakeAPI) ListVolumeGroups(context.Context) (hycu.Page[hycu.VolumeGroup], error) {
	return f.vgs, f.call("volumegroups")
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testEnv(api *fakeAPI) Env {
	env := NewEnv(api, quietLogger())
	env.Clock = fixedClock{now: testNow}
	return env
}

func testDispatcher(api *fakeAPI) *Dispatcher {
	d := NewDispatcher(DefaultRegistry(), testEnv(api))
	d.SetDiagnostics(io.Discard)
	return d
}

func baseRequest(checkType, target string) Request {
	return Request{
		Host:        "hycu.local",
		Token:       "token",
		Target:      target,
		Type:        checkType,
		Warning:     5,
		Critical:    10,
		PeriodHours: 24,
		Timeout:     5 * time.Second,
	}
}

func page[T any](total int, items ...T) hycu.Page[T] {
	return hycu.Page[T]{Entities: items, Metadata: hycu.Metadata{GrandTotalEntityCount: total}}
}

func named(field string, pairs ...string) hycu.Page[hycu.Entity] {
	var out hycu.Page[hycu.Entity]
	for i := 0; i+1 < len(pairs); i += 2 {
		out.Entities = append(out.Entities, hycu.Entity{field: pairs[i], "uuid": pairs[i+1]})
	}
	out.Metadata.GrandTotalEntityCount = len(out.Entities)
	return out
}

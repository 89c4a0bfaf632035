// Package selftest runs a fixed list of checks against a live HYCU
// controller and reports which ones passed.
package selftest

import (
	"errors"
	"strings"
	"time"

	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/spf13/viper"
)

// Settings is the harness configuration, read from the environment.
type Settings struct {
	Host    string
	Token   string
	Timeout time.Duration
	Verbose bool

	VMName     string
	TargetName string
	PolicyName string

	thresholds map[string]int
}

var defaultThresholds = map[string]int{
	"jobs_warning":        5,
	"jobs_critical":       10,
	"jobs_period":         24,
	"license_warning":     30,
	"license_critical":    7,
	"unassigned_warning":  5,
	"unassigned_critical": 10,
	"shares_warning":      3,
	"shares_critical":     5,
	"buckets_warning":     2,
	"buckets_critical":    5,
	"validation_warning":  5,
	"validation_critical": 10,
	"validation_period":   24,
	"policy_warning":      5,
	"policy_critical":     10,
}

// LoadSettings reads HYCU_HOST, HYCU_TOKEN, TIMEOUT, VERBOSE, TEST_*_NAME
// and the per-check threshold variables such as JOBS_WARNING.
func LoadSettings() Settings {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("timeout", 100)
	for key, value := range defaultThresholds {
		v.SetDefault(key, value)
	}

	s := Settings{
		Host:       v.GetString("hycu_host"),
		Token:      v.GetString("hycu_token"),
		Timeout:    time.Duration(v.GetInt("timeout")) * time.Second,
		Verbose:    v.GetBool("verbose"),
		VMName:     v.GetString("test_vm_name"),
		TargetName: v.GetString("test_target_name"),
		PolicyName: v.GetString("test_policy_name"),
		thresholds: make(map[string]int, len(defaultThresholds)),
	}
	for key := range defaultThresholds {
		s.thresholds[key] = v.GetInt(key)
	}
	return s
}

// Validate reports missing connection settings.
func (s Settings) Validate() error {
	var missing []string
	if s.Host == "" {
		missing = append(missing, "HYCU_HOST is not set")
	}
	if s.Token == "" {
		missing = append(missing, "HYCU_TOKEN is not set")
	}
	if len(missing) > 0 {
		return errors.New(strings.Join(missing, "; "))
	}
	return nil
}

func (s Settings) threshold(key string) int {
	if v, ok := s.thresholds[key]; ok {
		return v
	}
	return defaultThresholds[key]
}

// Scenario is one harness entry.
type Scenario struct {
	Name     string
	Category checks.Category
	Request  checks.Request
	Required bool
	// SkipReason is set when the scenario needs a name that is not
	// configured.
	SkipReason string
}

func (s Settings) request(checkType, target, prefix string, period bool) checks.Request {
	req := checks.Request{
		Host:        s.Host,
		Token:       s.Token,
		Target:      target,
		Type:        checkType,
		Warning:     5,
		Critical:    10,
		PeriodHours: 24,
		Timeout:     s.Timeout,
		Verbose:     s.Verbose,
	}
	if prefix != "" {
		req.Warning = s.threshold(prefix + "_warning")
		req.Critical = s.threshold(prefix + "_critical")
		if period {
			req.PeriodHours = s.threshold(prefix + "_period")
		}
	}
	return req
}

func skipUnless(value, variable string) string {
	if value == "" {
		return variable + " not set"
	}
	return ""
}

// Scenarios returns the harness list in run order.
func Scenarios(s Settings) []Scenario {
	return []Scenario{
		{Name: "Port Connectivity (8443)", Category: checks.CategoryNetwork,
			Request: s.request("port", "8443", "", false), Required: true},

		{Name: "Version Information", Category: checks.CategoryGlobal,
			Request: s.request("version", "", "", false), Required: true},
		{Name: "License Status", Category: checks.CategoryGlobal,
			Request: s.request("license", "", "license", false), Required: true},
		{Name: "Jobs Statistics", Category: checks.CategoryGlobal,
			Request: s.request("jobs", "", "jobs", true), Required: true},
		{Name: "Manager Dashboard (Protected)", Category: checks.CategoryGlobal,
			Request: s.request("manager", "protected", "", false)},

		{Name: "Shares Monitoring", Category: checks.CategoryStorage,
			Request: s.request("shares", "", "shares", false)},
		{Name: "Buckets Monitoring", Category: checks.CategoryStorage,
			Request: s.request("buckets", "", "buckets", false)},

		{Name: "Backup Validation", Category: checks.CategoryValidation,
			Request: s.request("backup-validation", "", "validation", true)},
		{Name: "Unassigned Objects", Category: checks.CategoryValidation,
			Request: s.request("unassigned", "", "unassigned", false), Required: true},

		{Name: "VM Backup Status", Category: checks.CategoryObjects,
			Request:    s.request("vm", s.VMName, "", false),
			SkipReason: skipUnless(s.VMName, "TEST_VM_NAME")},
		{Name: "Target Health", Category: checks.CategoryObjects,
			Request:    s.request("target", s.TargetName, "", false),
			SkipReason: skipUnless(s.TargetName, "TEST_TARGET_NAME")},

		{Name: "Policy Compliance Advanced", Category: checks.CategoryPolicies,
			Request:    s.request("policy-advanced", s.PolicyName, "policy", false),
			SkipReason: skipUnless(s.PolicyName, "TEST_POLICY_NAME")},
	}
}

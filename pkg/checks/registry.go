package checks

import (
	"fmt"
	"strings"
)

// Registry holds all registered checks.
type Registry struct {
	checks map[string]Check
	order  []string
}

// NewRegistry creates a new check registry.
func NewRegistry() *Registry {
	return &Registry{
		checks: make(map[string]Check),
	}
}

// Register adds a check to the registry. Registering a name twice replaces
// the earlier check but keeps its position.
func (r *Registry) Register(c Check) {
	if _, exists := r.checks[c.Name()]; !exists {
		r.order = append(r.order, c.Name())
	}
	r.checks[c.Name()] = c
}

// Lookup returns a check by name.
func (r *Registry) Lookup(name string) (Check, bool) {
	c, ok := r.checks[name]
	return c, ok
}

// Names returns all check names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Checks returns all registered checks in registration order.
func (r *Registry) Checks() []Check {
	out := make([]Check, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.checks[name])
	}
	return out
}

// ByCategory groups check names by category.
func (r *Registry) ByCategory() map[Category][]string {
	groups := make(map[Category][]string)
	for _, name := range r.order {
		c := r.checks[name]
		groups[c.Category()] = append(groups[c.Category()], name)
	}
	return groups
}

// Catalogue lists the check types grouped by category, one line per
// category.
func (r *Registry) Catalogue() []string {
	groups := r.ByCategory()
	notes := []string{"Available check types by category:"}
	for _, cat := range Categories {
		if names, ok := groups[cat]; ok {
			notes = append(notes, fmt.Sprintf("  %s: %s", strings.ToUpper(string(cat)), strings.Join(names, ", ")))
		}
	}
	return notes
}

// DefaultRegistry returns a registry with every HYCU check registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewVMCheck())
	r.Register(NewVMIDCheck())
	r.Register(NewTargetCheck())
	r.Register(NewArchiveCheck())

	r.Register(NewPolicyCheck())
	r.Register(NewPolicyAdvancedCheck())

	r.Register(NewManagerCheck())
	r.Register(NewJobsCheck())
	r.Register(NewLicenseCheck())
	r.Register(NewVersionCheck())

	r.Register(NewSharesCheck())
	r.Register(NewBucketsCheck())

	r.Register(NewBackupValidationCheck())
	r.Register(NewUnassignedCheck())

	r.Register(NewPortCheck())
	return r
}

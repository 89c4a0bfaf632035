package hycu

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Collection describes a listing whose entities can be looked up by name.
type Collection struct {
	Endpoint  string
	NameField string
	Label     string
	Plural    string
}

var (
	VMs      = Collection{Endpoint: "vms", NameField: "vmName", Label: "VM", Plural: "VMs"}
	Targets  = Collection{Endpoint: "targets", NameField: "name", Label: "Target", Plural: "targets"}
	Policies = Collection{Endpoint: "policies", NameField: "name", Label: "Policy", Plural: "policies"}
)

// Lister fetches the first page of a listing endpoint.
type Lister interface {
	Entities(ctx context.Context, endpoint string) (Page[Entity], error)
}

// Resolution is a successful name lookup.
type Resolution struct {
	UUID string
	Name string
	// Exact is false when the match was case-insensitive.
	Exact bool
	// Truncated is set when the listing held more entities than one page.
	Truncated bool
}

// Resolver maps human-readable names to entity identifiers.
type Resolver struct {
	lister Lister
	logger *logrus.Logger
}

// NewResolver creates a resolver backed by lister.
func NewResolver(lister Lister, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Resolver{lister: lister, logger: logger}
}

// nameIndex keeps names in first-seen order; a repeated name takes the
// later uuid without moving.
type nameIndex struct {
	order []string
	uuids map[string]string
}

func (idx *nameIndex) add(name, uuid string) {
	if _, seen := idx.uuids[name]; !seen {
		idx.order = append(idx.order, name)
	}
	idx.uuids[name] = uuid
}

// Resolve finds the uuid of the entity called name in collection. An exact
// match wins; otherwise the first case-insensitive match in listing order
// is used. A miss returns a *NotFoundError listing the available names.
func (r *Resolver) Resolve(ctx context.Context, c Collection, name string) (Resolution, error) {
	page, err := r.lister.Entities(ctx, c.Endpoint)
	if err != nil {
		return Resolution{}, err
	}

	log := r.logger.WithFields(logrus.Fields{
		"collection": c.Endpoint,
		"name":       name,
	})

	truncated := page.Truncated()
	if truncated {
		log.WithFields(logrus.Fields{
			"returned": len(page.Entities),
			"total":    page.Metadata.GrandTotalEntityCount,
		}).Warn("Listing truncated, name lookup limited to the first page")
	}

	idx := nameIndex{uuids: make(map[string]string, len(page.Entities))}
	for _, e := range page.Entities {
		n, id := e.String(c.NameField), e.String("uuid")
		if n == "" || id == "" {
			continue
		}
		idx.add(n, id)
	}
	log.WithField("count", len(idx.order)).Debug("Loaded entity names")

	if id, ok := idx.uuids[name]; ok {
		log.Debug("Exact match")
		return Resolution{UUID: id, Name: name, Exact: true, Truncated: truncated}, nil
	}

	for _, n := range idx.order {
		if strings.EqualFold(n, name) {
			log.WithField("match", n).Debug("Case-insensitive match")
			return Resolution{UUID: idx.uuids[n], Name: n, Truncated: truncated}, nil
		}
	}

	log.Debug("No match")
	return Resolution{}, &NotFoundError{
		Label:     c.Label,
		Plural:    c.Plural,
		Name:      name,
		Available: idx.order,
		Truncated: truncated,
	}
}

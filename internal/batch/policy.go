package batch

import (
	"fmt"
	"strings"

	"github.com/nhle/autoniq-extractor/internal/model"
)

// Policy decides where listings without a lifecycle type (plain-text
// notifications) end up.
type Policy struct {
	drop   bool
	assign model.LifecycleType
}

// PolicySeparate keeps unclassified listings in their own report.
var PolicySeparate = Policy{}

// PolicyDrop leaves unclassified listings out of every report.
var PolicyDrop = Policy{drop: true}

// AssignPolicy files unclassified listings under t.
func AssignPolicy(t model.LifecycleType) Policy {
	return Policy{assign: t}
}

// ParsePolicy reads the reports.unclassified setting: "separate", "drop",
// or a lifecycle type name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "separate":
		return PolicySeparate, nil
	case "drop":
		return PolicyDrop, nil
	}

	t, err := model.ParseLifecycleType(s)
	if err != nil {
		return Policy{}, fmt.Errorf("parsing unclassified policy: %w", err)
	}
	return AssignPolicy(t), nil
}

// String returns the setting value the policy was parsed from.
func (p Policy) String() string {
	switch {
	case p.drop:
		return "drop"
	case p.assign != model.LifecycleUnset:
		return p.assign.String()
	default:
		return "separate"
	}
}

// apply returns l as it should be reported and whether it is reported at
// all.
func (p Policy) apply(l model.Listing) (model.Listing, bool) {
	if l.Lifecycle != model.LifecycleUnset {
		return l, true
	}
	if p.drop {
		return l, false
	}
	l.Lifecycle = p.assign
	return l, true
}

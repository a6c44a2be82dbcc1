package validation

import (
	"fmt"
	"sync"

	"github.com/Veraticus/docintake/internal/common"
)

// Registry holds rules in registration order. Each rule's metadata is read once,
// at registration.
type Registry struct {
	byID  map[string]registered
	order []string
	mu    sync.RWMutex
}

type registered struct {
	rule Rule
	meta RuleMeta
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]registered)}
}

// DefaultRegistry registers the built-in rules against DefaultRequirements.
func DefaultRegistry() *Registry {
	return RegistryFor(DefaultRequirements(), DefaultWeightTolerance)
}

// RegistryFor registers the built-in rules against table. A non-positive
// weightTolerance means DefaultWeightTolerance.
func RegistryFor(table RequirementTable, weightTolerance float64) *Registry {
	weight := NewGrossWeightRule()
	if weightTolerance > 0 {
		weight.Tolerance = weightTolerance
	}

	r := NewRegistry()
	r.MustRegister(NewRequiredDocumentsRule(table))
	r.MustRegister(NewSingleInstanceRule(table))
	r.MustRegister(ContainerNumbersRule{})
	r.MustRegister(weight)
	r.MustRegister(HSCodesRule{})
	r.MustRegister(VetCertBeforeShipmentRule{})
	r.MustRegister(AuthorizedSignerRule{})
	r.MustRegister(ProductFitRule{})
	r.MustRegister(ReferenceNumberRule{})
	return r
}

// Register adds rule. A rule id may only be registered once; AppliesTo entries
// are normalized like shipment product types.
func (r *Registry) Register(rule Rule) error {
	meta, err := readMeta(rule)
	if err != nil {
		return err
	}
	id := meta.ID
	if id == "" {
		return fmt.Errorf("%w: rule has no id", common.ErrInvalidConfig)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("%w: %s", common.ErrDuplicateRule, id)
	}
	r.byID[id] = registered{rule: rule, meta: meta.normalized()}
	r.order = append(r.order, id)
	return nil
}

func readMeta(rule Rule) (meta RuleMeta, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: rule metadata panicked: %v", common.ErrInvalidConfig, p)
		}
	}()
	return rule.Meta(), nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// GetRule returns the rule with id.
func (r *Registry) GetRule(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byID[id]
	return entry.rule, ok
}

// Meta returns the metadata recorded when the rule with id was registered.
func (r *Registry) Meta(id string) (RuleMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byID[id]
	return entry.meta, ok
}

// GetAllRules returns every rule in registration order.
func (r *Registry) GetAllRules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].rule)
	}
	return out
}

// GetRulesForProductType returns the rules that apply to productType, in
// registration order.
func (r *Registry) GetRulesForProductType(productType string) []Rule {
	entries := r.applicable(productType)
	out := make([]Rule, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.rule)
	}
	return out
}

func (r *Registry) applicable(productType string) []registered {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []registered
	for _, id := range r.order {
		if e := r.byID[id]; e.meta.Applies(productType) {
			out = append(out, e)
		}
	}
	return out
}

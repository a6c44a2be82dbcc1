package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
)

// RuleErrorID identifies the synthetic result emitted for a rule that panicked.
const RuleErrorID = "rule_error"

// Runner evaluates registered rules against a shipment.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

// NewRunner creates a runner over registry. A nil registry means DefaultRegistry.
func NewRunner(registry *Registry, logger *slog.Logger) *Runner {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Runner{registry: registry, logger: common.OrDefault(logger)}
}

// ValidateShipment runs every rule applicable to the shipment's product type and
// aggregates the results. It only fails when ctx is canceled.
func (r *Runner) ValidateShipment(ctx context.Context, shipment model.Shipment, documents []model.Document) (model.ValidationReport, error) {
	start := time.Now()
	vc := NewContext(shipment, documents)
	rules := r.registry.applicable(shipment.ProductType)

	results, err := r.evaluate(ctx, vc, rules)
	if err != nil {
		return model.ValidationReport{}, err
	}

	report := model.NewValidationReport(results)
	r.logger.Info("validated shipment",
		"shipment", shipment.ID,
		"product_type", vc.ProductType(),
		"documents", len(documents),
		"rules", len(rules),
		"failed", report.Failed,
		"warnings", report.Warnings,
		"valid", report.IsValid,
		"duration", time.Since(start))
	return report, nil
}

// ValidateDocument runs only the rules that can judge a single document, such as
// at upload time.
func (r *Runner) ValidateDocument(ctx context.Context, document model.Document, shipment model.Shipment) ([]model.RuleResult, error) {
	vc := NewContext(shipment, []model.Document{document})

	var rules []registered
	for _, e := range r.registry.applicable(shipment.ProductType) {
		if e.meta.Category.DocumentScoped() {
			rules = append(rules, e)
		}
	}
	return r.evaluate(ctx, vc, rules)
}

func (r *Runner) evaluate(ctx context.Context, vc *Context, rules []registered) ([]model.RuleResult, error) {
	results := []model.RuleResult{}
	for _, e := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, r.run(e, vc)...)
	}
	return results, nil
}

// run evaluates one rule, turning a panic into a rule_error result.
func (r *Runner) run(e registered, vc *Context) (results []model.RuleResult) {
	meta := e.meta
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("validation rule panicked", "rule", meta.ID, "panic", p)
			results = []model.RuleResult{{
				RuleID:   RuleErrorID,
				RuleName: meta.Name,
				Passed:   false,
				Severity: model.SeverityInfo,
				Category: meta.Category,
				Message:  fmt.Sprintf("Rule %s failed to evaluate: %v", meta.ID, p),
				Details:  map[string]any{"rule": meta.ID},
			}}
		}
	}()

	results = e.rule.Evaluate(vc)
	for i := range results {
		if results[i].RuleID == "" {
			results[i].RuleID = meta.ID
		}
		if results[i].RuleName == "" {
			results[i].RuleName = meta.Name
		}
	}
	r.logger.Debug("rule evaluated", "rule", meta.ID, "results", len(results))
	return results
}

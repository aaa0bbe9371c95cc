// Package policy evaluates a rego eligibility rule against catalog regions.
//
// A policy module declares package regiondex and defines a boolean rule
// allow. Each region is passed as input, using the same JSON document the
// RPC surface returns.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/regiondex/internal/telemetry"
	"github.com/yairfalse/regiondex/pkg/region"
)

// Query is the rule every policy module must define.
const Query = "data.regiondex.allow"

// Engine holds one compiled policy.
type Engine struct {
	name   string
	query  rego.PreparedEvalQuery
	logger *telemetry.Logger
	tracer trace.Tracer
}

// Compile prepares module for evaluation.
func Compile(ctx context.Context, name, module string, logger *telemetry.Logger) (*Engine, error) {
	if logger == nil {
		logger = telemetry.Nop()
	}
	tracer := otel.Tracer("regiondex.policy")

	ctx, span := tracer.Start(ctx, "policy.compile",
		trace.WithAttributes(attribute.String("policy.name", name)))
	defer span.End()

	prepared, err := rego.New(
		rego.Query(Query),
		rego.Module(name, module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile policy %s: %w", name, err)
	}

	logger.WithContext(ctx).Info().
		Str("policy_name", name).
		Msg("policy loaded")

	return &Engine{name: name, query: prepared, logger: logger, tracer: tracer}, nil
}

// LoadFile compiles the rego module at path.
func LoadFile(ctx context.Context, path string, logger *telemetry.Logger) (*Engine, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return Compile(ctx, path, string(src), logger)
}

// Name returns the module name the policy was compiled under.
func (e *Engine) Name() string {
	return e.name
}

// Allow reports whether the policy admits r. An undefined result is a denial.
func (e *Engine) Allow(ctx context.Context, r region.Region) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(r))
	if err != nil {
		return false, fmt.Errorf("evaluate %s for %s: %w", e.name, r.ID, err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %s for %s: allow is %T, want bool", e.name, r.ID, results[0].Expressions[0].Value)
	}
	return allowed, nil
}

// Allowed keeps the regions the policy admits, in input order.
func (e *Engine) Allowed(ctx context.Context, regions []region.Region) ([]region.Region, error) {
	ctx, span := e.tracer.Start(ctx, "policy.evaluate",
		trace.WithAttributes(
			attribute.String("policy.name", e.name),
			attribute.Int("policy.candidates", len(regions)),
		))
	defer span.End()

	out := make([]region.Region, 0, len(regions))
	for _, r := range regions {
		ok, err := e.Allow(ctx, r)
		if err != nil {
			e.logger.LogSpanEnd(ctx, "policy.evaluate", err)
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}

	span.SetAttributes(attribute.Int("policy.allowed", len(out)))
	e.logger.WithContext(ctx).Debug().
		Str("policy_name", e.name).
		Int("candidates", len(regions)).
		Int("allowed", len(out)).
		Msg("policy evaluation complete")
	return out, nil
}

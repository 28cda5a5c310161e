package predicate

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"drover/internal/exchange"
)

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("body", cel.DynType),
		cel.Variable("headers", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("properties", cel.MapType(cel.StringType, cel.DynType)),
	)
}

func exchangeVars(ex *exchange.Exchange) map[string]interface{} {
	return map[string]interface{}{
		"id":         ex.ID(),
		"body":       ex.In().Body(),
		"headers":    ex.In().Headers(),
		"properties": ex.Properties(),
	}
}

// CEL is a predicate compiled from a CEL expression over the exchange.
// Compilation happens once at route construction; evaluation is pure and
// never suspends, which is what the choice processor requires.
type CEL struct {
	expr string
	prg  cel.Program
}

func NewCEL(expr string) (*CEL, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("predicate expression must return bool, got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &CEL{expr: expr, prg: prg}, nil
}

func (p *CEL) Matches(ctx context.Context, ex *exchange.Exchange) (bool, error) {
	result, _, err := p.prg.ContextEval(ctx, exchangeVars(ex))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression %q: %w", p.expr, err)
	}

	b, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression %q did not return bool, got %T", p.expr, result.Value())
	}
	return b, nil
}

func (p *CEL) String() string { return p.expr }

// CELTransform evaluates a CEL expression over the exchange and returns
// the result; the transform processor installs it as the new message body.
type CELTransform struct {
	expr string
	prg  cel.Program
}

func NewCELTransform(expr string) (*CELTransform, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &CELTransform{expr: expr, prg: prg}, nil
}

func (t *CELTransform) Eval(ctx context.Context, ex *exchange.Exchange) (interface{}, error) {
	result, _, err := t.prg.ContextEval(ctx, exchangeVars(ex))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate CEL expression %q: %w", t.expr, err)
	}
	return result.Value(), nil
}

func (t *CELTransform) String() string { return t.expr }

// Package cel selects the collection to filter inside a loaded document with
// a CEL expression, e.g. `_.items` or `_.users.filter(u, u.active)`.
package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// Root is the variable the document is bound to.
const Root = "_"

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a new CEL evaluator with standard library functions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// newStandardCELEnv creates a standard CEL environment with common extensions.
func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 5+len(opts))
	allOpts = append(allOpts,
		cel.Variable(Root, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate evaluates expr with data bound to "_" and converts the result
// back to Go values.
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	result, _, err := prg.Eval(map[string]any{Root: data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// Select evaluates expr against doc. An empty expression selects doc
// itself.
func (e *Evaluator) Select(expr string, doc any) (any, error) {
	if expr == "" || expr == Root {
		return doc, nil
	}
	out, err := e.Evaluate(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("selecting %q: %w", expr, err)
	}
	return out, nil
}

// ToGo converts CEL types to Go native types recursively.
// Handles both CEL primitive types and collection types (List, Map).
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	valuer, ok := val.(interface{ Value() any })
	if !ok {
		return val
	}
	switch inner := valuer.Value().(type) {
	case []ref.Val:
		result := make([]any, len(inner))
		for i, elem := range inner {
			result[i] = ToGo(elem)
		}
		return result
	case []any:
		result := make([]any, len(inner))
		for i, elem := range inner {
			result[i] = fromNative(elem)
		}
		return result
	case map[string]any:
		return convertMapValues(inner)
	case map[ref.Val]ref.Val:
		result := make(map[string]any, len(inner))
		for k, v := range inner {
			result[fmt.Sprint(ToGo(k))] = ToGo(v)
		}
		return result
	default:
		return inner
	}
}

func fromNative(v any) any {
	switch x := v.(type) {
	case ref.Val:
		return ToGo(x)
	case map[string]any:
		return convertMapValues(x)
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = fromNative(elem)
		}
		return out
	}
	return v
}

// convertMapValues recursively converts map values from CEL types
func convertMapValues(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = fromNative(v)
	}
	return result
}

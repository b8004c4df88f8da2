// Package density compiles closed-form h(x, y) expressions into
// density functions for the engine. Hosts send expressions like
// "1 + 4*x" or "1/(0.2 + y)"; the free variables are x and y.
package density

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/pthm-cable/strew/corpus"
)

// Compile turns an expression string into a DensityFunc. The returned
// function is for the engine's single-threaded hot path: it reuses one
// environment map across calls and is not safe for concurrent use.
func Compile(src string) (corpus.DensityFunc, error) {
	env := map[string]float64{"x": 0, "y": 0}
	program, err := expr.Compile(src, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("density: compiling %q: %w", src, err)
	}
	// Probe once so malformed runtime behavior surfaces at install
	// time instead of mid-step.
	if _, err := expr.Run(program, env); err != nil {
		return nil, fmt.Errorf("density: evaluating %q: %w", src, err)
	}
	return func(x, y float64) float64 {
		env["x"], env["y"] = x, y
		out, err := expr.Run(program, env)
		if err != nil {
			return 0 // rejected by the engine's positivity probe
		}
		return out.(float64)
	}, nil
}

package transform

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm/runtime"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// filter evaluates the predicate once per row. Column names are the
// variables; names that are not identifiers are reachable as $env["name"].
// A missing cell is nil: comparisons against it are false and arithmetic
// on it stays missing, so "not (x > 1)" keeps rows where x is missing.
func (a *applier) filter(ds *dataset.Dataset, f Filter) (*dataset.Dataset, error) {
	cols := ds.Columns()
	schema := make(map[string]any, len(cols))
	for _, c := range cols {
		if c.IsNumeric() {
			schema[c.Name()] = float64(0)
		} else {
			schema[c.Name()] = ""
		}
	}
	program, err := expr.Compile(f.Predicate, filterOptions(schema)...)
	if err != nil {
		return nil, dataerr.Transform("filter", f.Predicate, err)
	}

	keep := make([]int, 0, ds.Rows())
	env := make(map[string]any, len(cols))
	for i := 0; i < ds.Rows(); i++ {
		for _, c := range cols {
			env[c.Name()] = c.Value(i)
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return nil, dataerr.Transform("filter", f.Predicate, fmt.Errorf("row %d: %w", i, err))
		}
		ok, isBool := out.(bool)
		if !isBool {
			return nil, dataerr.Transform("filter", f.Predicate, fmt.Errorf("row %d: predicate returned %T, want bool", i, out))
		}
		if ok {
			keep = append(keep, i)
		}
	}

	out := ds.Take(keep)
	a.log.Info("filter applied",
		slog.String("predicate", f.Predicate),
		slog.Int("rows_before", ds.Rows()),
		slog.Int("rows_after", out.Rows()))
	return out, nil
}

// Operators rewritten into missing-aware calls. Equality and "in" already
// handle nil.
var missingOps = map[string]string{
	"<":          "__lt",
	"<=":         "__le",
	">":          "__gt",
	">=":         "__ge",
	"+":          "__add",
	"-":          "__sub",
	"*":          "__mul",
	"/":          "__div",
	"%":          "__mod",
	"**":         "__pow",
	"^":          "__pow",
	"contains":   "__contains",
	"startsWith": "__startsWith",
	"endsWith":   "__endsWith",
	"matches":    "__matches",
}

type missingAware struct{}

func (missingAware) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.BinaryNode:
		if fn, ok := missingOps[n.Operator]; ok {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: fn},
				Arguments: []ast.Node{n.Left, n.Right},
			})
		}
	case *ast.UnaryNode:
		if n.Operator != "-" {
			return
		}
		switch n.Node.(type) {
		case *ast.IntegerNode, *ast.FloatNode:
			return
		}
		ast.Patch(node, &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: "__neg"},
			Arguments: []ast.Node{n.Node},
		})
	}
}

func filterOptions(schema map[string]any) []expr.Option {
	cmp := new(func(any, any) bool)
	num := new(func(any, any) any)
	return []expr.Option{
		expr.Env(schema),
		expr.AsBool(),
		expr.Patch(missingAware{}),
		expr.Function("__lt", compare(runtime.Less), cmp),
		expr.Function("__le", compare(runtime.LessOrEqual), cmp),
		expr.Function("__gt", compare(runtime.More), cmp),
		expr.Function("__ge", compare(runtime.MoreOrEqual), cmp),
		expr.Function("__add", arith(runtime.Add), num),
		expr.Function("__sub", arith(runtime.Subtract), num),
		expr.Function("__mul", arith(runtime.Multiply), num),
		expr.Function("__div", arith(func(a, b any) any { return runtime.Divide(a, b) }), num),
		expr.Function("__mod", arith(func(a, b any) any { return runtime.Modulo(a, b) }), num),
		expr.Function("__pow", arith(func(a, b any) any { return runtime.Exponent(a, b) }), num),
		expr.Function("__neg", func(params ...any) (any, error) {
			if params[0] == nil {
				return nil, nil
			}
			return runtime.Negate(params[0]), nil
		}, new(func(any) any)),
		expr.Function("__contains", text("contains", func(s, t string) (bool, error) { return strings.Contains(s, t), nil }), cmp),
		expr.Function("__startsWith", text("startsWith", func(s, t string) (bool, error) { return strings.HasPrefix(s, t), nil }), cmp),
		expr.Function("__endsWith", text("endsWith", func(s, t string) (bool, error) { return strings.HasSuffix(s, t), nil }), cmp),
		expr.Function("__matches", text("matches", func(s, t string) (bool, error) { return regexp.MatchString(t, s) }), cmp),
	}
}

func compare(op func(a, b any) bool) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if params[0] == nil || params[1] == nil {
			return false, nil
		}
		return op(params[0], params[1]), nil
	}
}

func arith(op func(a, b any) any) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if params[0] == nil || params[1] == nil {
			return nil, nil
		}
		return op(params[0], params[1]), nil
	}
}

func text(name string, op func(s, t string) (bool, error)) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if params[0] == nil || params[1] == nil {
			return false, nil
		}
		s, ok := params[0].(string)
		t, ok2 := params[1].(string)
		if !ok || !ok2 {
			return nil, fmt.Errorf("invalid operation: %T %s %T", params[0], name, params[1])
		}
		return op(s, t)
	}
}

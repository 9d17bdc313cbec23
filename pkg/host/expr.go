package host

import (
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/matzehuels/stackarray/pkg/errors"
)

// EvaluatorID identifies expressions evaluated by this package.
const EvaluatorID = "stackarray.expr"

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// builtins are the expr builtins allowed in parameter expressions.
var builtins = map[string]bool{
	"abs": true, "ceil": true, "floor": true, "round": true, "min": true, "max": true,
}

var functions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"sqrt": math.Sqrt,
	"rad":  func(v float64) float64 { return v * math.Pi / 180 },
	"deg":  func(v float64) float64 { return v * 180 / math.Pi },
}

var options = func() []expr.Option {
	opts := []expr.Option{expr.AsFloat64()}
	for name, fn := range functions {
		opts = append(opts, expr.Function(name, func(args ...any) (any, error) {
			return fn(toFloat(args[0])), nil
		}, new(func(float64) float64)))
	}
	return opts
}()

// reserved reports whether name is taken by a constant or function of the
// expression language and so cannot be referenced as a parameter.
func reserved(name string) bool {
	_, isConst := constants[name]
	return isConst || builtins[name] || functions[name] != nil
}

func toFloat(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return math.NaN()
}

// expression is a compiled parameter expression and the parameter names it
// references.
type expression struct {
	program *vm.Program
	refs    []string
}

// compile parses an arithmetic expression over parameter names. Numbers,
// the constants pi and e, arithmetic operators, parentheses, the functions
// above and the builtins abs, ceil, floor, round, min and max are supported.
func compile(src string) (*expression, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse expression %q", src)
	}
	refs, err := references(src, tree.Node)
	if err != nil {
		return nil, err
	}
	program, err := expr.Compile(src, options...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "compile expression %q", src)
	}
	return &expression{program: program, refs: refs}, nil
}

// refVisitor collects identifiers and rejects calls to unknown functions.
type refVisitor struct {
	src     string
	idents  []*ast.IdentifierNode
	callees map[*ast.IdentifierNode]bool
	err     error
}

func (v *refVisitor) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.idents = append(v.idents, n)
	case *ast.BuiltinNode:
		if !builtins[n.Name] {
			v.err = errors.New(errors.ErrCodeInvalidInput, "function %s not allowed in %q", n.Name, v.src)
		}
	case *ast.CallNode:
		id, ok := n.Callee.(*ast.IdentifierNode)
		if !ok || functions[id.Value] == nil {
			v.err = errors.New(errors.ErrCodeInvalidInput, "unknown function in %q", v.src)
			return
		}
		v.callees[id] = true
	}
}

func references(src string, root ast.Node) ([]string, error) {
	v := &refVisitor{src: src, callees: make(map[*ast.IdentifierNode]bool)}
	ast.Walk(&root, v)
	if v.err != nil {
		return nil, v.err
	}
	var names []string
	for _, id := range v.idents {
		if v.callees[id] {
			continue
		}
		if _, ok := constants[id.Value]; ok {
			continue
		}
		names = append(names, id.Value)
	}
	return names, nil
}

// eval evaluates x, resolving parameter names through lookup.
func (x *expression) eval(lookup func(name string) (float64, error)) (float64, error) {
	env := make(map[string]any, len(x.refs)+len(constants))
	for name, v := range constants {
		env[name] = v
	}
	for _, name := range x.refs {
		v, err := lookup(name)
		if err != nil {
			return 0, err
		}
		env[name] = v
	}
	out, err := expr.Run(x.program, env)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "evaluate expression")
	}
	v := toFloat(out)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "expression evaluates to %v", v)
	}
	return v, nil
}

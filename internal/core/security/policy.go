// Package security provides record-visibility policies.
// Policies are CEL expressions evaluated against the session identity and a
// row; different deployments can override the defaults per table.
package security

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Built-in expressions. Branch-scoped tables are visible to admins in
// all-branches mode and otherwise only within the viewer's branch. Clients
// and suppliers are shared across branches and never filtered.
const (
	ExprShared = `true`

	ExprBranchScoped = `(user.role == "admin" && user.allBranches) ` +
		`|| !has(record.branch) || record.branch == "" ` +
		`|| record.branch == user.branch`
)

// Viewer is the identity a policy is evaluated for.
type Viewer struct {
	Username    string
	Role        string
	Branch      string
	AllBranches bool
}

// Policy holds compiled visibility programs keyed by table name.
type Policy struct {
	programs map[string]cel.Program
	fallback cel.Program
}

// NewPolicy compiles the given per-table expressions. Tables without an
// entry fall back to the branch-scoped rule.
func NewPolicy(tableExprs map[string]string) (*Policy, error) {
	env, err := cel.NewEnv(
		cel.Variable("user", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	compile := func(expr string) (cel.Program, error) {
		ast, iss := env.Compile(expr)
		if iss.Err() != nil {
			return nil, fmt.Errorf("compile policy %q: %w", expr, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("policy %q must evaluate to bool", expr)
		}
		return env.Program(ast)
	}

	fallback, err := compile(ExprBranchScoped)
	if err != nil {
		return nil, err
	}

	p := &Policy{
		programs: make(map[string]cel.Program, len(tableExprs)),
		fallback: fallback,
	}
	for table, expr := range tableExprs {
		prg, err := compile(expr)
		if err != nil {
			return nil, err
		}
		p.programs[table] = prg
	}
	return p, nil
}

// DefaultPolicy returns the stock policy set: clients and suppliers shared,
// everything else branch-scoped.
func DefaultPolicy() (*Policy, error) {
	return NewPolicy(map[string]string{
		"clients":   ExprShared,
		"suppliers": ExprShared,
		"users":     ExprShared,
		"audit":     ExprShared,
	})
}

// Visible evaluates the policy for table against the viewer and row.
// Evaluation errors deny visibility.
func (p *Policy) Visible(table string, viewer Viewer, record map[string]any) (bool, error) {
	prg, ok := p.programs[table]
	if !ok {
		prg = p.fallback
	}

	out, _, err := prg.Eval(map[string]any{
		"user": map[string]any{
			"username":    viewer.Username,
			"role":        viewer.Role,
			"branch":      viewer.Branch,
			"allBranches": viewer.AllBranches,
		},
		"record": record,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate policy for %s: %w", table, err)
	}

	visible, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy for %s returned non-bool", table)
	}
	return visible, nil
}

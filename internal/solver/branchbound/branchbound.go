// Package branchbound is a pure Go binary MILP back end. It runs a depth-first
// branch-and-bound search and solves every LP relaxation with a
// bounded-variable simplex kept on a gonum dense tableau.
package branchbound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/omarshaarawi/draftbot/internal/solver"
)

const (
	defaultIntegralityTolerance = 1e-6
	feasibilityTolerance        = 1e-9
)

type constraint struct {
	name  string
	expr  solver.Expr
	sense solver.Sense
	rhs   float64
}

type options struct {
	nodeLimit   int
	integrality float64
	logger      *slog.Logger
}

type Option func(*options)

// WithNodeLimit stops the search after n explored nodes. Zero means no limit.
func WithNodeLimit(n int) Option {
	return func(o *options) { o.nodeLimit = n }
}

func WithIntegralityTolerance(tol float64) Option {
	return func(o *options) { o.integrality = tol }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Model implements solver.Model.
type Model struct {
	name        string
	vars        []string
	constraints []constraint
	objective   solver.Expr
	sense       solver.ObjectiveSense

	status   solver.Status
	values   []float64
	objValue float64
	nodes    int

	opts options
}

func New(name string, opts ...Option) *Model {
	o := options{integrality: defaultIntegralityTolerance, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Model{name: name, opts: o}
}

// Factory returns a solver.Factory producing branch-and-bound models.
func Factory(opts ...Option) solver.Factory {
	return func(name string) solver.Model {
		return New(name, opts...)
	}
}

func (m *Model) AddBinary(name string) solver.Var {
	m.vars = append(m.vars, name)
	return solver.Var(len(m.vars) - 1)
}

func (m *Model) AddConstraint(name string, expr solver.Expr, sense solver.Sense, rhs float64) {
	m.constraints = append(m.constraints, constraint{
		name:  name,
		expr:  append(solver.Expr(nil), expr...),
		sense: sense,
		rhs:   rhs,
	})
}

func (m *Model) SetObjective(expr solver.Expr, sense solver.ObjectiveSense) {
	m.objective = append(solver.Expr(nil), expr...)
	m.sense = sense
}

func (m *Model) Value(v solver.Var) float64 {
	if int(v) < 0 || int(v) >= len(m.values) {
		return 0
	}
	return m.values[v]
}

func (m *Model) ObjectiveValue() float64 {
	return m.objValue
}

// Nodes reports how many search nodes the last Solve explored.
func (m *Model) Nodes() int {
	return m.nodes
}

// Solve searches for an optimal 0/1 assignment. Internally the problem is
// minimized, so a maximization objective is negated.
func (m *Model) Solve(ctx context.Context) (solver.Status, error) {
	n := len(m.vars)
	cost, err := m.denseObjective()
	if err != nil {
		return solver.NotSolved, err
	}
	rows, err := m.denseRows()
	if err != nil {
		return solver.NotSolved, err
	}

	root := make([]int8, n)
	for j := range root {
		root[j] = free
	}
	stack := [][]int8{root}

	bestObj := math.Inf(1)
	var best []float64
	status := solver.Optimal
	m.nodes = 0

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return solver.NotSolved, err
		}
		if m.opts.nodeLimit > 0 && m.nodes >= m.opts.nodeLimit {
			status = solver.NodeLimit
			break
		}

		fix := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		m.nodes++

		x, obj, feasible, err := relax(ctx, cost, rows, fix)
		if ctx.Err() != nil {
			return solver.NotSolved, ctx.Err()
		}
		if err != nil {
			return solver.NotSolved, fmt.Errorf("solving relaxation of %s: %w", m.name, err)
		}
		if !feasible || obj >= bestObj-feasibilityTolerance {
			continue
		}

		j := m.branchVariable(x, fix)
		if j < 0 {
			best = make([]float64, n)
			for i, v := range x {
				best[i] = math.Round(v)
			}
			bestObj = dot(cost, best)
			continue
		}

		zero := append([]int8(nil), fix...)
		zero[j] = 0
		one := append([]int8(nil), fix...)
		one[j] = 1
		stack = append(stack, zero, one)
	}

	if best == nil {
		m.values = make([]float64, n)
		m.objValue = 0
		if status != solver.NodeLimit {
			status = solver.Infeasible
		}
	} else {
		m.values = best
		m.objValue = bestObj
		if m.sense == solver.Maximize {
			m.objValue = -bestObj
		}
	}
	m.status = status

	m.opts.logger.Debug("Branch and bound finished",
		"model", m.name,
		"variables", n,
		"constraints", len(m.constraints),
		"nodes", m.nodes,
		"status", status.String(),
		"objective", m.objValue)

	return status, nil
}

const free int8 = -1

type row struct {
	coefs []float64
	sense solver.Sense
	rhs   float64
}

func (m *Model) denseObjective() ([]float64, error) {
	cost := make([]float64, len(m.vars))
	sign := 1.0
	if m.sense == solver.Maximize {
		sign = -1
	}
	for _, t := range m.objective {
		if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
			return nil, fmt.Errorf("objective references unknown variable %d", t.Var)
		}
		cost[t.Var] += sign * t.Coef
	}
	return cost, nil
}

func (m *Model) denseRows() ([]row, error) {
	rows := make([]row, 0, len(m.constraints))
	for _, c := range m.constraints {
		coefs := make([]float64, len(m.vars))
		for _, t := range c.expr {
			if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
				return nil, fmt.Errorf("constraint %s references unknown variable %d", c.name, t.Var)
			}
			coefs[t.Var] += t.Coef
		}
		rows = append(rows, row{coefs: coefs, sense: c.sense, rhs: c.rhs})
	}
	return rows, nil
}

// branchVariable picks the free variable farthest from integrality, or -1.
func (m *Model) branchVariable(x []float64, fix []int8) int {
	pick, worst := -1, m.opts.integrality
	for j, v := range x {
		if fix[j] != free {
			continue
		}
		frac := math.Min(v-math.Floor(v), math.Ceil(v)-v)
		if frac > worst {
			pick, worst = j, frac
		}
	}
	return pick
}

// relax solves the LP relaxation with fixed variables substituted out. A row
// left without free variables is checked on the spot.
func relax(ctx context.Context, cost []float64, rows []row, fix []int8) ([]float64, float64, bool, error) {
	var freeVars []int
	constant := 0.0
	x := make([]float64, len(fix))
	for j, f := range fix {
		if f == free {
			freeVars = append(freeVars, j)
			continue
		}
		x[j] = float64(f)
		constant += cost[j] * x[j]
	}

	lpRows := make([]lpRow, 0, len(rows))
	for _, r := range rows {
		rhs := r.rhs
		for j, f := range fix {
			if f != free {
				rhs -= r.coefs[j] * float64(f)
			}
		}
		coefs := make([]float64, len(freeVars))
		empty := true
		for k, j := range freeVars {
			coefs[k] = r.coefs[j]
			if coefs[k] != 0 {
				empty = false
			}
		}
		if empty {
			if !constantHolds(r.sense, rhs) {
				return nil, 0, false, nil
			}
			continue
		}
		lpRows = append(lpRows, lpRow{coefs: coefs, sense: r.sense, rhs: rhs})
	}

	if len(freeVars) == 0 {
		return x, constant, true, nil
	}

	c := make([]float64, len(freeVars))
	for k, j := range freeVars {
		c[k] = cost[j]
	}
	optX, optF, err := solveLP(ctx, c, lpRows)
	if errors.Is(err, errInfeasible) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	for k, j := range freeVars {
		x[j] = optX[k]
	}
	return x, constant + optF, true, nil
}

func constantHolds(sense solver.Sense, rhs float64) bool {
	switch sense {
	case solver.LessEqual:
		return 0 <= rhs+feasibilityTolerance
	case solver.GreaterEqual:
		return 0 >= rhs-feasibilityTolerance
	default:
		return math.Abs(rhs) <= feasibilityTolerance
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

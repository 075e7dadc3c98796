package branchbound

import (
	"context"
	"testing"
	"time"

	"github.com/omarshaarawi/draftbot/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_Knapsack(t *testing.T) {
	m := New("knapsack")
	values := []float64{10, 13, 7, 8}
	weights := []float64{5, 7, 4, 3}

	vars := make([]solver.Var, len(values))
	var objective, capacity solver.Expr
	for i := range values {
		vars[i] = m.AddBinary("item")
		objective = objective.Plus(vars[i], values[i])
		capacity = capacity.Plus(vars[i], weights[i])
	}
	m.AddConstraint("capacity", capacity, solver.LessEqual, 10)
	m.SetObjective(objective, solver.Maximize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Optimal, status)

	// Items 1 and 3 (weights 7+3) give 21, the best packing under 10.
	assert.InDelta(t, 21, m.ObjectiveValue(), 1e-6)
	assert.InDelta(t, 0, m.Value(vars[0]), 1e-6)
	assert.InDelta(t, 1, m.Value(vars[1]), 1e-6)
	assert.InDelta(t, 0, m.Value(vars[2]), 1e-6)
	assert.InDelta(t, 1, m.Value(vars[3]), 1e-6)
}

func TestSolve_EqualityAndMinimize(t *testing.T) {
	m := New("pick-two")
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	c := m.AddBinary("c")

	m.AddConstraint("exactly-two", solver.Sum(a, b, c), solver.Equal, 2)
	m.AddConstraint("need-c", solver.Sum(c), solver.GreaterEqual, 1)
	m.SetObjective(solver.Expr{{Var: a, Coef: 3}, {Var: b, Coef: 1}, {Var: c, Coef: 5}}, solver.Minimize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Optimal, status)
	assert.InDelta(t, 6, m.ObjectiveValue(), 1e-6)
	assert.InDelta(t, 0, m.Value(a), 1e-6)
	assert.InDelta(t, 1, m.Value(b), 1e-6)
	assert.InDelta(t, 1, m.Value(c), 1e-6)
}

func TestSolve_Infeasible(t *testing.T) {
	m := New("infeasible")
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	m.AddConstraint("at-least-three", solver.Sum(a, b), solver.GreaterEqual, 3)
	m.SetObjective(solver.Sum(a, b), solver.Maximize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Infeasible, status)
}

func TestSolve_FractionalRelaxationNeedsBranching(t *testing.T) {
	// The LP optimum sets every variable to 1/2, so the search has to branch.
	m := New("odd-cycle")
	x := []solver.Var{m.AddBinary("x0"), m.AddBinary("x1"), m.AddBinary("x2")}
	m.AddConstraint("e01", solver.Sum(x[0], x[1]), solver.LessEqual, 1)
	m.AddConstraint("e12", solver.Sum(x[1], x[2]), solver.LessEqual, 1)
	m.AddConstraint("e02", solver.Sum(x[0], x[2]), solver.LessEqual, 1)
	m.SetObjective(solver.Sum(x...), solver.Maximize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Optimal, status)
	assert.InDelta(t, 1, m.ObjectiveValue(), 1e-6)
	assert.Greater(t, m.Nodes(), 1)

	total := 0.0
	for _, v := range x {
		val := m.Value(v)
		assert.True(t, val == 0 || val == 1, "value %v is not binary", val)
		total += val
	}
	assert.Equal(t, 1.0, total)
}

func TestSolve_ConstantConstraints(t *testing.T) {
	m := New("empty-rows")
	a := m.AddBinary("a")
	m.AddConstraint("nothing-fits", nil, solver.LessEqual, 0)
	m.AddConstraint("impossible", nil, solver.GreaterEqual, 1)
	m.SetObjective(solver.Sum(a), solver.Maximize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Infeasible, status)
}

func TestSolve_NoVariables(t *testing.T) {
	m := New("empty")
	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Optimal, status)
	assert.Equal(t, 0.0, m.ObjectiveValue())
}

func TestSolve_UnknownVariable(t *testing.T) {
	m := New("bad")
	m.AddBinary("a")
	m.AddConstraint("ghost", solver.Sum(solver.Var(7)), solver.LessEqual, 1)

	_, err := m.Solve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable")
}

func TestSolve_NodeLimit(t *testing.T) {
	m := New("limited", WithNodeLimit(1))
	x := []solver.Var{m.AddBinary("x0"), m.AddBinary("x1"), m.AddBinary("x2")}
	m.AddConstraint("e01", solver.Sum(x[0], x[1]), solver.LessEqual, 1)
	m.AddConstraint("e12", solver.Sum(x[1], x[2]), solver.LessEqual, 1)
	m.AddConstraint("e02", solver.Sum(x[0], x[2]), solver.LessEqual, 1)
	m.SetObjective(solver.Sum(x...), solver.Maximize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.NodeLimit, status)
}

func TestSolve_CancelledContext(t *testing.T) {
	m := New("cancelled")
	a := m.AddBinary("a")
	m.SetObjective(solver.Sum(a), solver.Maximize)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := m.Solve(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, solver.NotSolved, status)
}

func TestFactory(t *testing.T) {
	newModel := Factory(WithNodeLimit(10))
	m := newModel("via-factory")
	v := m.AddBinary("v")
	m.SetObjective(solver.Sum(v), solver.Maximize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Optimal, status)
	assert.InDelta(t, 1, m.Value(v), 1e-6)
}

func TestSolve_LooseCapacityTakesEverything(t *testing.T) {
	m := New("loose")
	vars := make([]solver.Var, 10)
	var all solver.Expr
	for i := range vars {
		vars[i] = m.AddBinary("v")
		all = all.Plus(vars[i], float64(i+1))
	}
	m.AddConstraint("room", all, solver.LessEqual, 1000)
	m.SetObjective(all, solver.Maximize)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Optimal, status)
	assert.InDelta(t, 55, m.ObjectiveValue(), 1e-6)
	assert.Equal(t, 1, m.Nodes())
	for _, v := range vars {
		assert.InDelta(t, 1, m.Value(v), 1e-6)
	}
}

func TestSolve_DeadlineStopsSearch(t *testing.T) {
	// An odd total of even terms has no 0/1 solution, but every relaxation
	// with few fixings is feasible, so the search tree is exponential.
	m := New("parity")
	var even solver.Expr
	for i := 0; i < 41; i++ {
		even = even.Plus(m.AddBinary("x"), 2)
	}
	m.AddConstraint("odd", even, solver.Equal, 41)
	m.SetObjective(even, solver.Maximize)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	status, err := m.Solve(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, solver.NotSolved, status)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSolveLP_MixedSenses(t *testing.T) {
	rows := []lpRow{
		{coefs: []float64{1, 1, 0}, sense: solver.GreaterEqual, rhs: 1},
		{coefs: []float64{0, 1, -1}, sense: solver.LessEqual, rhs: -0.5},
		{coefs: []float64{1, 0, 1}, sense: solver.LessEqual, rhs: 1.5},
	}

	x, obj, err := solveLP(context.Background(), []float64{1, 1, -1}, rows)
	require.NoError(t, err)
	assert.InDelta(t, 0, obj, 1e-9)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 1}, x, 1e-9)
}

func TestSolveLP_Infeasible(t *testing.T) {
	rows := []lpRow{
		{coefs: []float64{1, 1, 0}, sense: solver.GreaterEqual, rhs: 1},
		{coefs: []float64{0, 1, -1}, sense: solver.LessEqual, rhs: -0.5},
		{coefs: []float64{1, 0, 1}, sense: solver.Equal, rhs: 1},
	}

	_, _, err := solveLP(context.Background(), []float64{1, 1, -1}, rows)
	require.ErrorIs(t, err, errInfeasible)
}

func TestSolveLP_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []lpRow{{coefs: []float64{1, 1}, sense: solver.LessEqual, rhs: 1}}
	_, _, err := solveLP(ctx, []float64{-1, -2}, rows)
	require.ErrorIs(t, err, context.Canceled)
}

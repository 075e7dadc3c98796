// Package solver defines the boundary between a MILP formulation and the engine
// that solves it. Formulations only talk to Model; back ends implement it.
package solver

import (
	"context"
	"fmt"
)

// Var identifies a decision variable inside the Model that created it.
type Var int

// Term is a single coefficient*variable product.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression without a constant part.
type Expr []Term

// Sum returns an expression with a unit coefficient for every variable.
func Sum(vars ...Var) Expr {
	e := make(Expr, 0, len(vars))
	for _, v := range vars {
		e = append(e, Term{Var: v, Coef: 1})
	}
	return e
}

// Plus appends coef*v to the expression.
func (e Expr) Plus(v Var, coef float64) Expr {
	return append(e, Term{Var: v, Coef: coef})
}

// Sense is the relation of a linear constraint.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// ObjectiveSense selects minimization or maximization.
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

// Status reports how a solve ended.
type Status int

const (
	NotSolved Status = iota
	Optimal
	Infeasible
	// NodeLimit means the search stopped early; variable values hold the best
	// feasible assignment found, if any.
	NodeLimit
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "not solved"
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case NodeLimit:
		return "node limit"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Model is a binary MILP under construction.
type Model interface {
	AddBinary(name string) Var
	AddConstraint(name string, expr Expr, sense Sense, rhs float64)
	SetObjective(expr Expr, sense ObjectiveSense)
	// Solve blocks until the engine returns.
	Solve(ctx context.Context) (Status, error)
	Value(v Var) float64
	ObjectiveValue() float64
}

// Factory creates an empty Model.
type Factory func(name string) Model

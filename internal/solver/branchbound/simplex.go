package branchbound

import (
	"context"
	"errors"
	"math"

	"github.com/omarshaarawi/draftbot/internal/solver"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivotTolerance       = 1e-9
	reducedCostTolerance = 1e-9
	ratioTieTolerance    = 1e-12
	phaseOneTolerance    = 1e-7
	// blandAfter is the run of degenerate pivots after which pricing falls
	// back to Bland's rule until the objective moves again.
	blandAfter       = 50
	cancelCheckEvery = 64
)

var (
	errInfeasible     = errors.New("relaxation is infeasible")
	errUnbounded      = errors.New("relaxation is unbounded")
	errIterationLimit = errors.New("simplex iteration limit reached")
)

// lpRow is one relaxation row over the free variables.
type lpRow struct {
	coefs []float64
	sense solver.Sense
	rhs   float64
}

// tableau is a dense bounded-variable simplex tableau. Structural columns
// lie in [0,1]; slack and artificial columns are only bounded below.
type tableau struct {
	t    *mat.Dense
	m    int
	cols int

	beta    []float64 // basic variable values by row
	basis   []int     // basic column of each row
	row     []int     // row of a basic column, -1 when nonbasic
	upper   []float64
	atUpper []bool

	artificial int // first artificial column
}

// solveLP minimizes cost·x subject to rows and 0 <= x <= 1. It returns
// errInfeasible when no point satisfies the rows.
func solveLP(ctx context.Context, cost []float64, rows []lpRow) ([]float64, float64, error) {
	n := len(cost)
	if len(rows) == 0 {
		x := make([]float64, n)
		for j, c := range cost {
			if c < 0 {
				x[j] = 1
			}
		}
		return x, floats.Dot(cost, x), nil
	}

	tb := newTableau(n, rows)

	if tb.artificial < tb.cols {
		phaseOne := make([]float64, tb.cols)
		for j := tb.artificial; j < tb.cols; j++ {
			phaseOne[j] = 1
		}
		if err := tb.iterate(ctx, tb.price(phaseOne)); err != nil {
			return nil, 0, err
		}
		infeasibility := 0.0
		for i, b := range tb.basis {
			if b >= tb.artificial {
				infeasibility += tb.beta[i]
			}
		}
		if infeasibility > phaseOneTolerance {
			return nil, 0, errInfeasible
		}
		for j := tb.artificial; j < tb.cols; j++ {
			tb.upper[j] = 0
		}
		for i, b := range tb.basis {
			if b >= tb.artificial {
				tb.beta[i] = 0
			}
		}
	}

	phaseTwo := make([]float64, tb.cols)
	copy(phaseTwo, cost)
	if err := tb.iterate(ctx, tb.price(phaseTwo)); err != nil {
		return nil, 0, err
	}

	x := make([]float64, n)
	for j := range x {
		x[j] = math.Min(1, math.Max(0, tb.value(j)))
	}
	return x, floats.Dot(cost, x), nil
}

// newTableau writes every row as coefs·x + s = rhs with rhs >= 0. A row whose
// slack cannot start in the basis gets an artificial column instead.
func newTableau(n int, rows []lpRow) *tableau {
	m := len(rows)
	type layout struct {
		sign  float64
		rhs   float64
		slack float64 // 0 for equalities
	}
	lay := make([]layout, m)
	slacks, artificials := 0, 0
	for i, r := range rows {
		l := layout{sign: 1, rhs: r.rhs, slack: 1}
		switch r.sense {
		case solver.GreaterEqual:
			l.sign, l.rhs = -1, -r.rhs
		case solver.Equal:
			l.slack = 0
		}
		if l.rhs < 0 {
			l.sign, l.rhs, l.slack = -l.sign, -l.rhs, -l.slack
		}
		if l.slack != 0 {
			slacks++
		}
		if l.slack <= 0 {
			artificials++
		}
		lay[i] = l
	}

	cols := n + slacks + artificials
	tb := &tableau{
		t:          mat.NewDense(m, cols, nil),
		m:          m,
		cols:       cols,
		beta:       make([]float64, m),
		basis:      make([]int, m),
		row:        make([]int, cols),
		upper:      make([]float64, cols),
		atUpper:    make([]bool, cols),
		artificial: n + slacks,
	}
	for j := range tb.row {
		tb.row[j] = -1
		tb.upper[j] = math.Inf(1)
	}
	for j := 0; j < n; j++ {
		tb.upper[j] = 1
	}

	slack, art := n, n+slacks
	for i, r := range rows {
		l := lay[i]
		data := tb.t.RawRowView(i)
		for j, v := range r.coefs {
			if v != 0 {
				data[j] = l.sign * v
			}
		}
		if l.slack != 0 {
			data[slack] = l.slack
			if l.slack > 0 {
				tb.basis[i] = slack
			}
			slack++
		}
		if l.slack <= 0 {
			data[art] = 1
			tb.basis[i] = art
			art++
		}
		tb.beta[i] = l.rhs
		tb.row[tb.basis[i]] = i
	}
	return tb
}

// price returns the reduced costs of every column for cost.
func (tb *tableau) price(cost []float64) []float64 {
	d := append([]float64(nil), cost...)
	for i, b := range tb.basis {
		if c := cost[b]; c != 0 {
			floats.AddScaled(d, -c, tb.t.RawRowView(i))
		}
	}
	return d
}

func (tb *tableau) iterate(ctx context.Context, d []float64) error {
	limit := 50 * (tb.m + tb.cols)
	degenerate := 0
	for iter := 0; ; iter++ {
		if iter%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if iter > limit {
			return errIterationLimit
		}

		bland := degenerate >= blandAfter
		q, dir := tb.entering(d, bland)
		if q < 0 {
			return nil
		}
		step, r, toUpper := tb.ratio(q, dir, bland)
		if math.IsInf(step, 1) {
			return errUnbounded
		}
		if step > pivotTolerance {
			degenerate = 0
		} else {
			degenerate++
		}

		from := 0.0
		if tb.atUpper[q] {
			from = tb.upper[q]
		}
		if step > 0 {
			for i := 0; i < tb.m; i++ {
				if a := tb.t.RawRowView(i)[q]; a != 0 {
					tb.beta[i] -= dir * step * a
					if tb.beta[i] < 0 && tb.beta[i] > -pivotTolerance {
						tb.beta[i] = 0
					}
				}
			}
		}

		if r < 0 {
			tb.atUpper[q] = dir > 0
			continue
		}
		leaving := tb.basis[r]
		tb.atUpper[leaving] = toUpper
		tb.beta[r] = from + dir*step
		tb.atUpper[q] = false
		tb.pivot(r, q, d)
	}
}

// entering picks a nonbasic column whose move improves the objective and the
// direction it moves in. Dantzig's rule is used unless bland is set.
func (tb *tableau) entering(d []float64, bland bool) (int, float64) {
	q, dir, best := -1, 0.0, reducedCostTolerance
	for j := 0; j < tb.cols; j++ {
		if tb.row[j] >= 0 || tb.upper[j] == 0 {
			continue
		}
		var score, s float64
		switch {
		case !tb.atUpper[j] && d[j] < -reducedCostTolerance:
			score, s = -d[j], 1
		case tb.atUpper[j] && d[j] > reducedCostTolerance:
			score, s = d[j], -1
		default:
			continue
		}
		if bland {
			return j, s
		}
		if score > best {
			q, dir, best = j, s, score
		}
	}
	return q, dir
}

// ratio finds how far column q can move. A row of -1 means q reaches its own
// opposite bound first; toUpper reports which bound the leaving column hits.
func (tb *tableau) ratio(q int, dir float64, bland bool) (float64, int, bool) {
	step, r, toUpper, pivot := tb.upper[q], -1, false, 0.0
	for i := 0; i < tb.m; i++ {
		alpha := dir * tb.t.RawRowView(i)[q]
		var limit float64
		hitsUpper := false
		switch {
		case alpha > pivotTolerance:
			limit = tb.beta[i] / alpha
		case alpha < -pivotTolerance:
			u := tb.upper[tb.basis[i]]
			if math.IsInf(u, 1) {
				continue
			}
			limit, hitsUpper = (u-tb.beta[i])/-alpha, true
		default:
			continue
		}
		limit = math.Max(limit, 0)

		abs := math.Abs(alpha)
		better := limit < step-ratioTieTolerance ||
			(r >= 0 && limit <= step+ratioTieTolerance && tb.preferLeaving(i, r, abs, pivot, bland))
		if !better {
			continue
		}
		step, r, toUpper, pivot = limit, i, hitsUpper, abs
	}
	return step, r, toUpper
}

func (tb *tableau) preferLeaving(i, current int, alpha, currentAlpha float64, bland bool) bool {
	if bland {
		return tb.basis[i] < tb.basis[current]
	}
	return alpha > currentAlpha
}

func (tb *tableau) pivot(r, q int, d []float64) {
	pr := tb.t.RawRowView(r)
	floats.Scale(1/pr[q], pr)
	pr[q] = 1
	for i := 0; i < tb.m; i++ {
		if i == r {
			continue
		}
		ri := tb.t.RawRowView(i)
		if a := ri[q]; a != 0 {
			floats.AddScaled(ri, -a, pr)
			ri[q] = 0
		}
	}
	if a := d[q]; a != 0 {
		floats.AddScaled(d, -a, pr)
		d[q] = 0
	}
	tb.row[tb.basis[r]] = -1
	tb.basis[r] = q
	tb.row[q] = r
}

func (tb *tableau) value(j int) float64 {
	if r := tb.row[j]; r >= 0 {
		return tb.beta[r]
	}
	if tb.atUpper[j] {
		return tb.upper[j]
	}
	return 0
}

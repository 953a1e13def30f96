package tuner

import (
	"math"
	"sort"

	"gauntlet/internal/domain"
)

// https://www.chessprogramming.org/Texel%27s_Tuning_Method
const cpScale = 400

const probFloor = 1e-6

type term struct {
	index int
	count float64
}

type compiledRow struct {
	terms  []term
	result float64
}

// Evaluator scores a compiled dataset against a mutable weight vector.
// Compiling once keeps loss evaluation allocation-free and pins the
// summation order, so identical inputs always yield the identical loss.
type Evaluator struct {
	rows    []compiledRow
	weights []float64
	index   map[string]int
	names   []string
}

// NewEvaluator indexes every feature name the dataset mentions and seeds
// its weight from the given map; names the seed does not know start at
// zero.
func NewEvaluator(rows []domain.TuneRow, seed map[string]float64) *Evaluator {
	var set = map[string]bool{}
	for i := range rows {
		for name := range rows[i].Features {
			set[name] = true
		}
	}
	var names = make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	var index = make(map[string]int, len(names))
	var weights = make([]float64, len(names))
	for i, name := range names {
		index[name] = i
		weights[i] = seed[name]
	}

	var compiled = make([]compiledRow, len(rows))
	for i := range rows {
		var cr = compiledRow{
			result: rows[i].Result,
			terms:  make([]term, 0, len(rows[i].Features)),
		}
		for name, count := range rows[i].Features {
			cr.terms = append(cr.terms, term{index: index[name], count: count})
		}
		sort.Slice(cr.terms, func(a, b int) bool { return cr.terms[a].index < cr.terms[b].index })
		compiled[i] = cr
	}
	return &Evaluator{rows: compiled, weights: weights, index: index, names: names}
}

// Loss is the summed negative log-likelihood of every sample under a
// logistic model of the linear feature score.
func (e *Evaluator) Loss() float64 {
	var sum float64
	for i := range e.rows {
		var row = &e.rows[i]
		var score float64
		for _, t := range row.terms {
			score += e.weights[t.index] * t.count
		}
		var prob = sigmoid(score)
		sum -= row.result*math.Log(clampProb(prob)) + (1-row.result)*math.Log(clampProb(1-prob))
	}
	return sum
}

// MeanLoss is the per-sample average, reported for diagnostics only; the
// optimizer always works on the sum.
func (e *Evaluator) MeanLoss() float64 {
	if len(e.rows) == 0 {
		return 0
	}
	return e.Loss() / float64(len(e.rows))
}

func (e *Evaluator) Samples() int { return len(e.rows) }

func (e *Evaluator) Index(name string) (int, bool) {
	i, ok := e.index[name]
	return i, ok
}

func (e *Evaluator) Get(i int) float64    { return e.weights[i] }
func (e *Evaluator) Set(i int, v float64) { e.weights[i] = v }

func sigmoid(score float64) float64 {
	return 1 / (1 + math.Exp(-score/cpScale))
}

func clampProb(p float64) float64 {
	if p < probFloor {
		return probFloor
	}
	if p > 1-probFloor {
		return 1 - probFloor
	}
	return p
}

// Package tuner fits scalar evaluation weights to game outcomes by
// coordinate descent on a logistic loss.
package tuner

import (
	"math"
	"sort"

	"gauntlet/internal/domain"
)

// Param is one tunable weight with its coordinate-descent search shape.
type Param struct {
	Name  string
	Value float64
	Step  float64
	Min   float64
	Max   float64
}

// Override pins a parameter's step and bounds instead of the heuristic.
type Override struct {
	Step float64
	Min  float64
	Max  float64
}

// Derive builds the tuning domain: every feature name the dataset
// mentions that has a seed constant and is not denylisted. Material
// values stay on the denylist so the optimizer cannot trade them against
// positional terms. The result is name-sorted, which fixes the descent
// order.
func Derive(rows []domain.TuneRow, seed map[string]float64, denylist map[string]bool, overrides map[string]Override) []Param {
	var present = map[string]bool{}
	for i := range rows {
		for name := range rows[i].Features {
			present[name] = true
		}
	}
	var params []Param
	for name := range present {
		if denylist[name] {
			continue
		}
		d, ok := seed[name]
		if !ok {
			continue
		}
		var p = Param{Name: name, Value: d}
		if ov, found := overrides[name]; found {
			p.Step, p.Min, p.Max = ov.Step, ov.Min, ov.Max
		} else {
			p.Step = math.Max(1, math.Round(math.Abs(d)/4))
			if d >= 0 {
				p.Min, p.Max = 0, d+4*math.Abs(d)
			} else {
				p.Min, p.Max = -5*math.Abs(d), 5*math.Abs(d)
			}
		}
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params
}

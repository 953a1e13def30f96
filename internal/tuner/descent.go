package tuner

import (
	"github.com/rs/zerolog"
)

const (
	improveEps    = 1e-6
	maxIterations = 8
	stepFloor     = 0.25
	defaultRounds = 2
)

// Result is the outcome of a descent run.
type Result struct {
	Params []Param
	Loss   float64
	Mean   float64
	Rounds int
}

// Descend runs coordinate descent over the parameters in their given
// order, mutating one weight at a time while all others stay fixed. It
// is deliberately single-threaded: with a compiled dataset every loss
// evaluation is exact and repeatable, so two runs from the same seeds
// produce the same result.
func Descend(eval *Evaluator, params []Param, rounds int, log zerolog.Logger) Result {
	if rounds <= 0 {
		rounds = defaultRounds
	}

	var idx = make([]int, len(params))
	for i := range params {
		j, ok := eval.Index(params[i].Name)
		if !ok {
			// A name absent from every sample cannot move the loss.
			idx[i] = -1
			continue
		}
		idx[i] = j
		eval.Set(j, params[i].Value)
	}

	var best = eval.Loss()
	log.Info().Float64("loss", best).Int("params", len(params)).Msg("descent started")

	var done int
	for round := 1; round <= rounds; round++ {
		var improved = false
		for i := range params {
			if idx[i] < 0 {
				continue
			}
			if tuneOne(eval, &params[i], idx[i], &best) {
				improved = true
			}
		}
		done = round
		log.Info().Int("round", round).Float64("loss", best).Bool("improved", improved).Msg("descent round")
		if !improved {
			break
		}
	}

	var mean float64
	if eval.Samples() > 0 {
		mean = best / float64(eval.Samples())
	}
	return Result{Params: params, Loss: best, Mean: mean, Rounds: done}
}

// tuneOne probes value±step, clipped to the bounds, accepting whichever
// candidate beats the running best by more than improveEps. When neither
// does, the step halves; the search stops after maxIterations or once
// the step shrinks below a quarter of its initial size.
func tuneOne(eval *Evaluator, p *Param, j int, best *float64) bool {
	var initial = p.Step
	var step = p.Step
	var changed = false
	for iter := 0; iter < maxIterations; iter++ {
		var candidates = []float64{
			clip(p.Value+step, p.Min, p.Max),
			clip(p.Value-step, p.Min, p.Max),
		}
		if candidates[1] == candidates[0] {
			candidates = candidates[:1]
		}

		var bestVal = p.Value
		var bestLoss = *best
		for _, cand := range candidates {
			if cand == p.Value {
				continue
			}
			eval.Set(j, cand)
			if l := eval.Loss(); l < bestLoss-improveEps {
				bestLoss, bestVal = l, cand
			}
		}
		eval.Set(j, bestVal)

		if bestVal != p.Value {
			p.Value, *best = bestVal, bestLoss
			changed = true
			continue
		}
		step /= 2
		if step < stepFloor*initial {
			break
		}
	}
	return changed
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

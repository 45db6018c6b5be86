// internal/rescue/plan.go
//
// One round's allocation of search effort: two passes, either over the same
// region (double search) or over two different regions (dual search).
//
// Realized effectiveness, which is what Belief.Revise must see:
//   - double search: union coverage of both passes for that region, 0 elsewhere;
//   - dual search: each searched region keeps its sampled value, the third is 0.

package rescue

import (
	"errors"
	"math/rand"
)

// Plan names the two regions searched this round (indices 0..2).
type Plan struct {
	First  int
	Second int
}

// Double reports whether the same region is searched twice.
func (p Plan) Double() bool { return p.First == p.Second }

// Validate rejects out-of-range region indices.
func (p Plan) Validate() error {
	if !validIndex(p.First) || !validIndex(p.Second) {
		return errors.New("rescue: plan region out of range")
	}
	return nil
}

// RoundResult is the outcome of executing a Plan.
type RoundResult struct {
	Passes   [2]SearchResult
	Realized Effectiveness
	Found    bool
}

// Outcomes returns the two pass outcomes in order.
func (r RoundResult) Outcomes() [2]Outcome {
	return [2]Outcome{r.Passes[0].Outcome, r.Passes[1].Outcome}
}

// Execute runs both passes of p with this round's sampled effectiveness.
// Both passes of a double search use the same sampled value.
func (p Plan) Execute(rng *rand.Rand, h Hideout, regions Regions, sampled Effectiveness) (RoundResult, error) {
	var res RoundResult
	if err := p.Validate(); err != nil {
		return res, err
	}
	if err := sampled.Validate(); err != nil {
		return res, err
	}
	for i, region := range [2]int{p.First, p.Second} {
		pass, err := Conduct(rng, h, region, regions[region], sampled[region])
		if err != nil {
			return RoundResult{}, err
		}
		res.Passes[i] = pass
		if pass.Outcome == Found {
			res.Found = true
		}
	}

	if p.Double() {
		res.Realized[p.First] = Coverage(regions[p.First], p.First, res.Passes[0], res.Passes[1])
	} else {
		res.Realized[p.First] = sampled[p.First]
		res.Realized[p.Second] = sampled[p.Second]
	}
	return res, nil
}

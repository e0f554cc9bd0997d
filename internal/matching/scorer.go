package matching

import (
	"errors"
	"math"
)

// ErrNoRequiredSkills is returned when a job has nothing to score against.
var ErrNoRequiredSkills = errors.New("job has no required skills")

// Result is the outcome of scoring one candidate against one job.
type Result struct {
	Score   int
	Matched []string
	Missing []string
}

// Scorer computes skill-overlap scores.
type Scorer struct {
	normalizer *Normalizer
}

func NewScorer(n *Normalizer) *Scorer {
	return &Scorer{normalizer: n}
}

func (s *Scorer) Normalizer() *Normalizer {
	return s.normalizer
}

// Score returns round(100 * |required ∩ candidate| / |required|) over normalized sets.
// Matched and Missing follow the order of the required skills.
func (s *Scorer) Score(candidateSkills, requiredSkills []string) (Result, error) {
	required, err := s.normalizer.NormalizeSet(requiredSkills)
	if err != nil {
		return Result{}, err
	}
	if len(required) == 0 {
		return Result{}, ErrNoRequiredSkills
	}
	have, err := s.normalizer.NormalizeSet(candidateSkills)
	if err != nil {
		return Result{}, err
	}

	owned := make(map[string]struct{}, len(have))
	for _, skill := range have {
		owned[skill] = struct{}{}
	}

	res := Result{Matched: []string{}, Missing: []string{}}
	for _, skill := range required {
		if _, ok := owned[skill]; ok {
			res.Matched = append(res.Matched, skill)
		} else {
			res.Missing = append(res.Missing, skill)
		}
	}
	res.Score = int(math.Round(100 * float64(len(res.Matched)) / float64(len(required))))
	// 100 is reserved for full coverage even when rounding would reach it.
	if res.Score == 100 && len(res.Missing) > 0 {
		res.Score = 99
	}
	return res, nil
}

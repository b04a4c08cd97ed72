package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/sportlink/opportunity-engine/internal/model"
)

// Weights distributes the total score across the four factors.
// They must sum to WeightTotal.
type Weights struct {
	SkillOverlap  int
	ExperienceFit int
	LocationMatch int
	LanguageMatch int
}

const WeightTotal = 100

// DefaultWeights is the tuning the product ships with.
var DefaultWeights = Weights{
	SkillOverlap:  40,
	ExperienceFit: 25,
	LocationMatch: 20,
	LanguageMatch: 15,
}

// Validate checks the weight-sum invariant.
func (w Weights) Validate() error {
	sum := w.SkillOverlap + w.ExperienceFit + w.LocationMatch + w.LanguageMatch
	if sum != WeightTotal {
		return fmt.Errorf("weights sum to %d, want %d", sum, WeightTotal)
	}
	return nil
}

// Factors is the normalized breakdown behind a score, each in [0,1].
type Factors struct {
	SkillOverlap  float64 `json:"skill_overlap"`
	ExperienceFit float64 `json:"experience_fit"`
	LocationMatch float64 `json:"location_match"`
	LanguageMatch float64 `json:"language_match"`
}

// MatchResult is recomputed, never mutated; it lives only as long as the
// notification payload built from it.
type MatchResult struct {
	PostingID   uuid.UUID `json:"posting_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Score       int       `json:"score"`
	Factors     Factors   `json:"factors"`
}

// Score ranks a candidate against a posting. Deterministic weighted sum over
// normalized factors; identical inputs always produce identical output.
func Score(w Weights, profile *model.CandidateProfile, posting *model.Posting) (int, Factors) {
	f := Factors{
		SkillOverlap:  overlapRatio(profile.Skills, posting.Skills),
		ExperienceFit: experienceFit(profile.Years, posting.MinYears),
		LocationMatch: locationMatch(profile, posting),
		LanguageMatch: overlapRatio(profile.Languages, posting.Languages),
	}

	weighted := float64(w.SkillOverlap)*f.SkillOverlap +
		float64(w.ExperienceFit)*f.ExperienceFit +
		float64(w.LocationMatch)*f.LocationMatch +
		float64(w.LanguageMatch)*f.LanguageMatch

	return int(math.Round(weighted)), f
}

// overlapRatio is |candidate ∩ required| / |required|, with an empty
// requirement counting as a full match. Comparison is case-insensitive.
func overlapRatio(have, want []string) float64 {
	if len(want) == 0 {
		return 1
	}
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[normalize(s)] = struct{}{}
	}
	matched := 0
	seen := make(map[string]struct{}, len(want))
	for _, s := range want {
		key := normalize(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := set[key]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(seen))
}

// experienceFit is 1 once the minimum is met, otherwise the fraction of the
// minimum the candidate has, clamped at zero.
func experienceFit(years, minYears int) float64 {
	if minYears <= 0 || years >= minYears {
		return 1
	}
	if years <= 0 {
		return 0
	}
	return float64(years) / float64(minYears)
}

// locationMatch: exact city 1.0, same country or mutually remote-eligible
// 0.5, otherwise 0.
func locationMatch(profile *model.CandidateProfile, posting *model.Posting) float64 {
	if posting.City != "" && normalize(profile.City) == normalize(posting.City) {
		return 1
	}
	if posting.Country != "" && normalize(profile.Country) == normalize(posting.Country) {
		return 0.5
	}
	if posting.RemoteOK && profile.RemoteOK {
		return 0.5
	}
	return 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

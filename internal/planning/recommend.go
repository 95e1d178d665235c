// internal/planning/recommend.go

package planning

import (
	"sort"
)

// neutralScore is the compatibility assigned when a member has no preference
// data for a suggestion. Absence of data is not dislike.
const neutralScore = 0.5

// RecommendationEngine ranks candidate suggestions by group consensus:
// the mean of per-member compatibility scores, penalized by the variance
// across members so a polarizing option ranks below a universally acceptable
// one.
type RecommendationEngine struct {
	variancePenalty float64
}

// NewRecommendationEngine creates an engine with the given variance penalty
// weight. Values outside (0,1) fall back to the conventional 0.3.
func NewRecommendationEngine(variancePenalty float64) *RecommendationEngine {
	if variancePenalty <= 0 || variancePenalty >= 1 {
		variancePenalty = 0.3
	}
	return &RecommendationEngine{variancePenalty: variancePenalty}
}

// RankSuggestions scores every suggestion against every member profile and
// returns them ordered by consensus score descending. Ties break by lower
// variance, then by suggestion id, so identical inputs always produce
// identical orderings.
//
// memberIDs defines whose opinions count; members missing from profiles (or
// with nil profiles) contribute the neutral score.
func (e *RecommendationEngine) RankSuggestions(suggestions []Suggestion, memberIDs []int64, profiles map[int64]*PreferenceProfile) ([]RankedSuggestion, error) {
	if len(memberIDs) == 0 {
		return nil, ErrEmptyGroup
	}

	ranked := make([]RankedSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		perMember := make(map[int64]float64, len(memberIDs))
		for _, id := range memberIDs {
			perMember[id] = memberCompatibility(profiles[id], s)
		}

		mean, variance := meanAndVariance(perMember)
		consensus := mean - e.variancePenalty*variance
		if consensus < 0 {
			consensus = 0
		}

		ranked = append(ranked, RankedSuggestion{
			Suggestion:      s,
			ConsensusScore:  consensus,
			Variance:        variance,
			PerMemberScores: perMember,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ConsensusScore != ranked[j].ConsensusScore {
			return ranked[i].ConsensusScore > ranked[j].ConsensusScore
		}
		if ranked[i].Variance != ranked[j].Variance {
			return ranked[i].Variance < ranked[j].Variance
		}
		return ranked[i].Suggestion.ID < ranked[j].Suggestion.ID
	})

	return ranked, nil
}

// RankForSlot re-ranks suggestions using only the members attending a slot,
// so a partial-overlap slot is judged on its actual attendees' preferences.
func (e *RecommendationEngine) RankForSlot(slot Slot, suggestions []Suggestion, profiles map[int64]*PreferenceProfile) ([]RankedSuggestion, error) {
	if len(slot.AttendeeIDs) == 0 {
		return nil, ErrEmptyGroup
	}
	return e.RankSuggestions(suggestions, slot.AttendeeIDs, profiles)
}

// memberCompatibility blends the member's category weight with the weights
// of every matching suggestion attribute, averaged over the signals that
// exist. No signals at all yields the neutral score.
func memberCompatibility(profile *PreferenceProfile, s Suggestion) float64 {
	if profile == nil {
		return neutralScore
	}

	sum := 0.0
	signals := 0

	if w, ok := profile.CategoryWeights[s.Category]; ok {
		sum += clamp01(w)
		signals++
	}
	for key, value := range s.Attributes {
		if w, ok := profile.AttributeWeights[attributeKey(key, value)]; ok {
			sum += clamp01(w)
			signals++
		}
	}

	if signals == 0 {
		return neutralScore
	}
	return sum / float64(signals)
}

// attributeKey builds the profile lookup key for an attribute/value pair,
// e.g. "price:cheap" or "cuisine:italian".
func attributeKey(key, value string) string {
	return key + ":" + value
}

// meanAndVariance computes the arithmetic mean and population variance of
// per-member scores.
func meanAndVariance(scores map[int64]float64) (float64, float64) {
	n := float64(len(scores))
	if n == 0 {
		return 0, 0
	}

	mean := 0.0
	for _, v := range scores {
		mean += v
	}
	mean /= n

	variance := 0.0
	for _, v := range scores {
		d := v - mean
		variance += d * d
	}
	variance /= n

	return mean, variance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

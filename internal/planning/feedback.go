// internal/planning/feedback.go

package planning

import (
	"time"
)

// maxRating is the upper bound of the feedback rating scale (1..5).
const maxRating = 5

// FeedbackProcessor folds post-event ratings into preference profiles with
// an exponential moving average, so a single outlier rating can move a
// weight by at most alpha while the profile still adapts over time.
type FeedbackProcessor struct {
	alpha float64
}

// NewFeedbackProcessor creates a processor with the given learning rate.
// Values outside (0,1) fall back to the conventional 0.3.
func NewFeedbackProcessor(alpha float64) *FeedbackProcessor {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.3
	}
	return &FeedbackProcessor{alpha: alpha}
}

// Alpha returns the learning rate in effect.
func (p *FeedbackProcessor) Alpha() float64 {
	return p.alpha
}

// ApplyFeedback returns a new profile with the event's category weight and
// every matching attribute weight pulled toward the rating signal:
//
//	new = alpha*signal + (1-alpha)*old
//
// Weights without prior data start from the neutral score, and results are
// clamped to [0,1]. The input profile is never mutated; the caller persists
// the returned value. Concurrent feedback for the same user must be
// serialized by the caller.
func (p *FeedbackProcessor) ApplyFeedback(profile *PreferenceProfile, category string, attributes map[string]string, rating int) (*PreferenceProfile, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}
	if rating < 1 || rating > maxRating {
		return nil, ErrInvalidRating
	}

	signal := float64(rating) / float64(maxRating)
	updated := profile.Clone()

	if category != "" {
		updated.CategoryWeights[category] = p.ema(weightOrNeutral(updated.CategoryWeights, category), signal)
	}
	for key, value := range attributes {
		k := attributeKey(key, value)
		updated.AttributeWeights[k] = p.ema(weightOrNeutral(updated.AttributeWeights, k), signal)
	}

	updated.UpdatedAt = time.Now().UTC()
	return updated, nil
}

// FeedbackSample is one historical rating, already joined with the event's
// suggestion so the processor stays a pure fold over values.
type FeedbackSample struct {
	Category   string
	Attributes map[string]string
	Rating     int
}

// FoldFeedback replays an ordered feedback history onto a profile. Samples
// with out-of-range ratings are skipped rather than aborting the fold, since
// one bad record must not block learning from the rest.
func (p *FeedbackProcessor) FoldFeedback(profile *PreferenceProfile, history []FeedbackSample) (*PreferenceProfile, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}

	current := profile.Clone()
	for _, sample := range history {
		next, err := p.ApplyFeedback(current, sample.Category, sample.Attributes, sample.Rating)
		if err != nil {
			continue
		}
		current = next
	}
	return current, nil
}

func (p *FeedbackProcessor) ema(old, signal float64) float64 {
	return clamp01(p.alpha*signal + (1-p.alpha)*old)
}

func weightOrNeutral(weights map[string]float64, key string) float64 {
	if w, ok := weights[key]; ok {
		return clamp01(w)
	}
	return neutralScore
}

package humanize

import (
	"fmt"
	"time"
)

const (
	// MinPasses and MaxPasses bound Options.Passes; values outside are rejected.
	MinPasses = 1
	MaxPasses = 3

	DefaultPasses            = 3
	DefaultInterPassDelay    = 15 * time.Second
	DefaultVoiceFrequency    = 0.12
	DefaultHedgeFrequency    = 0.06
	DefaultQuestionFrequency = 0.08

	// emDashProbability applies per matched relative clause.
	emDashProbability = 0.25
	// ellipsisProbability applies per eligible sentence.
	ellipsisProbability = 0.03
)

// Paragraph and sentence thresholds for the structural passes.
const (
	proseMinChars       = 80
	burstinessMinChars  = 150
	hedgeMinWords       = 12
	hedgeMaxPosition    = 5
	ellipsisMinChars    = 60
	splitMinWords       = 15
	splitMaxDelta       = 5
	splitMaxFragment    = 7
	splitMinFragmentLen = 15
	splitMinRemainder   = 25
)

// Options tunes a single Transform call.
type Options struct {
	Passes            int           `json:"passes"`
	InterPassDelay    time.Duration `json:"inter_pass_delay"`
	VoiceFrequency    float64       `json:"voice_frequency"`
	HedgeFrequency    float64       `json:"hedge_frequency"`
	QuestionFrequency float64       `json:"question_frequency"`
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Passes:            DefaultPasses,
		InterPassDelay:    DefaultInterPassDelay,
		VoiceFrequency:    DefaultVoiceFrequency,
		HedgeFrequency:    DefaultHedgeFrequency,
		QuestionFrequency: DefaultQuestionFrequency,
	}
}

// Validate rejects out-of-range values instead of clamping them.
func (o Options) Validate() error {
	if o.Passes < MinPasses || o.Passes > MaxPasses {
		return &PreconditionError{Field: "passes", Message: fmt.Sprintf("must be between %d and %d, got %d", MinPasses, MaxPasses, o.Passes)}
	}
	if o.InterPassDelay < 0 {
		return &PreconditionError{Field: "inter_pass_delay", Message: fmt.Sprintf("must be non-negative, got %s", o.InterPassDelay)}
	}
	freqs := []struct {
		name  string
		value float64
	}{
		{"voice_frequency", o.VoiceFrequency},
		{"hedge_frequency", o.HedgeFrequency},
		{"question_frequency", o.QuestionFrequency},
	}
	for _, f := range freqs {
		// NaN fails both comparisons, so test the accepted range directly.
		if !(f.value >= 0 && f.value <= 1) {
			return &PreconditionError{Field: f.name, Message: fmt.Sprintf("must be within [0,1], got %v", f.value)}
		}
	}
	return nil
}

package types

// HumanizeOptions mirrors humanize.Options on the wire. Nil fields take the
// engine defaults; the delay is in milliseconds.
type HumanizeOptions struct {
	Passes            *int     `json:"passes,omitempty" validate:"omitempty,min=1,max=3"`
	InterPassDelayMs  *int     `json:"inter_pass_delay_ms,omitempty" validate:"omitempty,min=0,max=60000"`
	VoiceFrequency    *float64 `json:"voice_frequency,omitempty" validate:"omitempty,min=0,max=1"`
	HedgeFrequency    *float64 `json:"hedge_frequency,omitempty" validate:"omitempty,min=0,max=1"`
	QuestionFrequency *float64 `json:"question_frequency,omitempty" validate:"omitempty,min=0,max=1"`
	Seed              *uint64  `json:"seed,omitempty"`
}

// HumanizeRequest is the body of POST /humanize. Text is a pointer so a
// missing or null value is rejected rather than treated as empty.
type HumanizeRequest struct {
	Text    *string          `json:"text" validate:"required"`
	Options *HumanizeOptions `json:"options,omitempty"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Text *string `json:"text" validate:"required"`
}

// Validate checks the HumanizeRequest fields.
func (r *HumanizeRequest) Validate() error {
	return Validate(r)
}

// Validate checks the AnalyzeRequest fields.
func (r *AnalyzeRequest) Validate() error {
	return Validate(r)
}

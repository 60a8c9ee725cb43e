package bulk

import "fmt"

// Stages at which a job can fail.
const (
	StageGenerate = "generate"
	StageHumanize = "humanize"
	StagePublish  = "publish"
	StageStore    = "store"
)

// Error describes a job failure.
type Error struct {
	Keyword string
	Stage   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bulk job %q failed at %s: %s: %v", e.Keyword, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("bulk job %q failed at %s: %s", e.Keyword, e.Stage, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

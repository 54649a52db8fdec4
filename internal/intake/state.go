package intake

import (
	"errors"

	"github.com/curesight/client-go/internal/models"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// State is the orchestrator's published submission state. Generation
// identifies which submission the phase belongs to, so an overlapping
// submission is representable rather than a shared boolean.
type State struct {
	Phase      Phase                  `json:"phase"`
	Generation uint64                 `json:"generation"`
	Result     *models.AnalysisResult `json:"result,omitempty"`
	Failure    string                 `json:"failure,omitempty"`
}

// ErrSuperseded is returned to a submitter whose response resolved after a
// newer submission had already been issued. The response is discarded; it
// never overwrites the newer state.
var ErrSuperseded = errors.New("submission superseded by a newer one")

package intake

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/internal/metrics"
	"github.com/curesight/client-go/internal/models"
	"github.com/curesight/client-go/pkg/logger"
)

// Speaker reads a verdict summary aloud.
type Speaker interface {
	EnsurePlayed(ctx context.Context, text, lang string) error
}

// Recorder keeps a local trail of successful submissions.
type Recorder interface {
	Record(ctx context.Context, modality models.InputType, symptoms, lang string, result *models.AnalysisResult) error
}

// Orchestrator drives the patient flow: one submission path per modality,
// each ending in the same verdict handling. Submissions carry a monotonically
// increasing generation; only the response matching the latest generation may
// update the published state, so a slow response can never overwrite a newer
// one.
type Orchestrator struct {
	gw       *gateway.Client
	speaker  Speaker
	recorder Recorder

	mu         sync.Mutex
	generation uint64
	state      State
	watchers   []chan State
}

func NewOrchestrator(gw *gateway.Client, speaker Speaker, recorder Recorder) *Orchestrator {
	return &Orchestrator{
		gw:       gw,
		speaker:  speaker,
		recorder: recorder,
		state:    State{Phase: PhaseIdle},
	}
}

// SubmitText sends a typed symptom description for analysis.
func (o *Orchestrator) SubmitText(ctx context.Context, symptoms, lang string) (*models.AnalysisResult, error) {
	gen := o.begin(models.InputText)

	var result models.AnalysisResult
	err := o.gw.PostJSON(ctx, "/api/analyze/text", map[string]string{
		"text":     symptoms,
		"language": lang,
	}, &result)

	return o.finish(ctx, gen, models.InputText, symptoms, lang, &result, err)
}

// SubmitImage sends a prescription image plus the current free-text context.
func (o *Orchestrator) SubmitImage(ctx context.Context, file io.Reader, filename, symptoms, lang string) (*models.AnalysisResult, error) {
	return o.submitUpload(ctx, "/api/analyze/image", models.InputImage, file, filename, symptoms, lang)
}

// SubmitAudio sends a recorded voice description plus the free-text context.
func (o *Orchestrator) SubmitAudio(ctx context.Context, file io.Reader, filename, symptoms, lang string) (*models.AnalysisResult, error) {
	return o.submitUpload(ctx, "/api/analyze/audio", models.InputAudio, file, filename, symptoms, lang)
}

func (o *Orchestrator) submitUpload(ctx context.Context, endpoint string, modality models.InputType, file io.Reader, filename, symptoms, lang string) (*models.AnalysisResult, error) {
	gen := o.begin(modality)

	var result models.AnalysisResult
	err := o.gw.PostMultipart(ctx, endpoint, file, filename, map[string]string{
		"language": lang,
		"symptoms": symptoms,
	}, &result)

	return o.finish(ctx, gen, modality, symptoms, lang, &result, err)
}

// begin issues a new generation and publishes Submitting. Any in-flight
// submission is implicitly superseded; its response will be dropped.
func (o *Orchestrator) begin(modality models.InputType) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.state = State{Phase: PhaseSubmitting, Generation: o.generation}
	o.publishLocked()

	logger.Debug("Submission started",
		zap.Uint64("generation", o.generation),
		zap.String("modality", string(modality)),
	)
	return o.generation
}

func (o *Orchestrator) finish(ctx context.Context, gen uint64, modality models.InputType, symptoms, lang string, result *models.AnalysisResult, err error) (*models.AnalysisResult, error) {
	o.mu.Lock()

	if gen != o.generation {
		o.mu.Unlock()
		metrics.StaleResponsesDropped.Inc()
		logger.Debug("Stale submission response dropped", zap.Uint64("generation", gen))
		return nil, ErrSuperseded
	}

	if err != nil {
		o.state = State{Phase: PhaseFailed, Generation: gen, Failure: err.Error()}
		o.publishLocked()
		o.mu.Unlock()

		metrics.SubmissionTotal.WithLabelValues(string(modality), "failure").Inc()
		return nil, err
	}

	o.state = State{Phase: PhaseSucceeded, Generation: gen, Result: result}
	o.publishLocked()
	o.mu.Unlock()

	metrics.SubmissionTotal.WithLabelValues(string(modality), "success").Inc()
	logger.Info("Submission analyzed",
		zap.String("modality", string(modality)),
		zap.String("category", result.Category),
		zap.String("severity", result.Severity),
	)

	o.speak(ctx, result, lang)
	o.record(ctx, modality, symptoms, lang, result)

	return result, nil
}

// speak reads the verdict aloud. A playback or synthesis problem never fails
// the submission that produced the verdict.
func (o *Orchestrator) speak(ctx context.Context, result *models.AnalysisResult, lang string) {
	if o.speaker == nil {
		return
	}
	if err := o.speaker.EnsurePlayed(ctx, result.SpokenSummary(), lang); err != nil {
		logger.Warn("Failed to speak verdict", zap.Error(err))
	}
}

func (o *Orchestrator) record(ctx context.Context, modality models.InputType, symptoms, lang string, result *models.AnalysisResult) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, modality, symptoms, lang, result); err != nil {
		logger.Warn("Failed to record submission", zap.Error(err))
	}
}

// State returns the current published submission state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the currently displayed verdict, if any.
func (o *Orchestrator) Result() *models.AnalysisResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Result
}

// Subscribe returns a channel receiving every state transition. Slow
// consumers miss intermediate states rather than blocking submissions.
func (o *Orchestrator) Subscribe() <-chan State {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan State, 16)
	o.watchers = append(o.watchers, ch)
	return ch
}

// Unsubscribe detaches a channel returned by Subscribe.
func (o *Orchestrator) Unsubscribe(ch <-chan State) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, w := range o.watchers {
		if (<-chan State)(w) == ch {
			o.watchers = append(o.watchers[:i], o.watchers[i+1:]...)
			return
		}
	}
}

func (o *Orchestrator) publishLocked() {
	for _, ch := range o.watchers {
		select {
		case ch <- o.state:
		default:
		}
	}
}

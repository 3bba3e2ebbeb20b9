package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"sevoc/internal/domain"
	"sevoc/internal/port"
)

// EvaluationService runs one audio file through staging, inference and parsing.
type EvaluationService interface {
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.EvaluationResponse, error)
}

type evaluationService struct {
	stager  port.FileStager
	invoker port.InferenceInvoker
	parser  port.ResultParser
	status  StatusService
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewEvaluationService creates a new EvaluationService implementation.
func NewEvaluationService(
	stager port.FileStager,
	invoker port.InferenceInvoker,
	parser port.ResultParser,
	status StatusService,
	log *zap.Logger,
) EvaluationService {
	return &evaluationService{
		stager:  stager,
		invoker: invoker,
		parser:  parser,
		status:  status,
		log:     log,
		now:     time.Now,
		newID:   domain.NewRequestID,
	}
}

// evaluation tracks one request through its states.
type evaluation struct {
	id     string
	state  domain.RequestState
	start  time.Time
	staged *domain.StagedAudioFile
}

func (s *evaluationService) Evaluate(ctx context.Context, req domain.EvaluationRequest) (resp *domain.EvaluationResponse, err error) {
	ev := &evaluation{id: s.newID(), state: domain.StateReceived, start: s.now()}
	log := s.log.With(zap.String("request_id", ev.id))
	log.Info("new evaluation request received", zap.String("filename", req.Filename()))

	defer func() {
		s.release(log, ev)
		if err != nil {
			elapsed := s.now().Sub(ev.start)
			failedIn := ev.state
			ev.state = domain.StateFailed
			if domain.IsValidation(err) {
				log.Warn("evaluation rejected", zap.String("state", string(failedIn)), zap.Error(err))
			} else {
				log.Error("evaluation failed", zap.String("state", string(failedIn)), zap.Duration("elapsed", elapsed), zap.Error(err))
			}
			err = &domain.EvaluationFailure{RequestID: ev.id, State: failedIn, Elapsed: elapsed, Err: err}
		}
	}()

	modelPath := s.status.ModelPath()
	if !s.status.ModelExists() {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, modelPath)
	}

	ev.state = domain.StateValidating
	staged, err := s.stager.Stage(ctx, ev.id, req)
	if err != nil {
		return nil, err
	}
	ev.staged = staged
	ev.state = domain.StateStaged

	ev.state = domain.StateInvoking
	outcome := s.invoker.Run(ctx, staged, modelPath, s.status.InferenceTimeout())
	if err := outcomeError(outcome, modelPath, s.status.InferenceTimeout()); err != nil {
		return nil, err
	}

	ev.state = domain.StateParsing
	result := s.parser.Parse(outcome.RawText)
	if result.MultiClassSummary == "" || result.BinarySummary == "" {
		log.Warn("classification markers missing from inference output",
			zap.Bool("multi_found", result.MultiClassSummary != ""),
			zap.Bool("binary_found", result.BinarySummary != ""))
	}

	finished := s.now()
	elapsed := finished.Sub(ev.start)
	ev.state = domain.StateCompleted
	log.Info("evaluation completed", zap.Duration("elapsed", elapsed), zap.Duration("inference", outcome.Duration))

	return &domain.EvaluationResponse{
		RequestID:             ev.id,
		Status:                domain.StatusSuccess,
		ProcessingTimeSeconds: roundSeconds(elapsed),
		RawOutput:             outcome.RawText,
		MultiClassification:   result.MultiClassSummary,
		BinaryClassification:  result.BinarySummary,
		Timestamp:             finished,
	}, nil
}

func (s *evaluationService) release(log *zap.Logger, ev *evaluation) {
	if ev.staged == nil || !ev.staged.Ephemeral {
		return
	}
	if err := s.stager.Release(ev.staged); err != nil {
		log.Warn("failed to clean up uploaded file", zap.String("path", ev.staged.Path), zap.Error(err))
		return
	}
	log.Debug("cleaned up uploaded file", zap.String("path", ev.staged.Path))
}

// outcomeError converts a non-success inference outcome into a domain error.
func outcomeError(outcome domain.InferenceOutcome, modelPath string, timeout time.Duration) error {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		return nil
	case domain.OutcomeNotFound:
		return fmt.Errorf("%w: %s", domain.ErrModelNotFound, modelPath)
	case domain.OutcomeTimedOut:
		return fmt.Errorf("%w after %s", domain.ErrInferenceTimeout, timeout)
	case domain.OutcomeBusy:
		return domain.ErrInferenceBusy
	case domain.OutcomeProcessFailed:
		return &domain.InferenceError{ExitCode: outcome.ExitCode, Diagnostics: outcome.Diagnostics}
	default:
		return fmt.Errorf("unknown inference outcome %q", outcome.Kind)
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

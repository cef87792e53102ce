package engine

import (
	"context"

	"github.com/appforge/discovery-ai-platform/internal/agent"
	"github.com/appforge/discovery-ai-platform/internal/session"
)

// ProgressEvidence is what a caller must present to advance a stage.
type ProgressEvidence struct {
	AnsweredQuestions int     `json:"answered_questions"`
	StageConfidence   float64 `json:"stage_confidence"`
}

// stageConfidenceFloor is the minimum confidence evidence must carry for
// an advance; below it the engine keeps questioning in the same stage.
const stageConfidenceFloor = 0.6

// ProgressResult reports the outcome of a progress request.
type ProgressResult struct {
	Stage    agent.Stage `json:"stage"`
	Advanced bool        `json:"advanced"`
	Terminal bool        `json:"terminal"`
	Reason   string      `json:"reason"`
}

// ProgressStage advances the session's stage machine when the evidence
// meets the template's bar. The engine never skips a stage silently, and
// progress requests past the terminal stage are idempotent no-ops.
func (e *Engine) ProgressStage(ctx context.Context, sess *session.Session, evidence ProgressEvidence) (*ProgressResult, error) {
	if sess == nil {
		return nil, ErrInvalidInput
	}

	sctx := sess.GetContext()
	if sctx.Agent == nil {
		return nil, ErrInvalidInput
	}
	stages := sctx.Agent.Template.Stages

	if sctx.StageIndex >= len(stages)-1 {
		return &ProgressResult{
			Stage:    sctx.CurrentStage,
			Advanced: false,
			Terminal: true,
			Reason:   "terminal stage reached",
		}, nil
	}

	required := sctx.Agent.Template.QuestionsPerStage
	if evidence.AnsweredQuestions < required {
		return &ProgressResult{
			Stage:  sctx.CurrentStage,
			Reason: "insufficient answered questions",
		}, nil
	}
	if evidence.StageConfidence < stageConfidenceFloor {
		return &ProgressResult{
			Stage:  sctx.CurrentStage,
			Reason: "stage confidence below floor",
		}, nil
	}

	next := sctx.StageIndex + 1
	err := e.sessions.WithSessionLock(sctx.SessionID, func() error {
		// A failed save reverts the advance, so a retry moves exactly
		// one stage from where the last commit left the session.
		return sess.MutateAndSave(ctx, func() {
			sess.SetStage(stages[next], next)
			sess.UpdateMetadata(map[string]any{MetaAnsweredCount: 0})
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("stage advanced",
		"session_id", sctx.SessionID,
		"from", sctx.CurrentStage,
		"to", stages[next],
	)
	return &ProgressResult{
		Stage:    stages[next],
		Advanced: true,
		Terminal: next == len(stages)-1,
		Reason:   "completion evidence accepted",
	}, nil
}

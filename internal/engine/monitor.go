package engine

import "github.com/appforge/discovery-ai-platform/internal/session"

// StyleRecommendation is the advisory outcome of effectiveness monitoring.
type StyleRecommendation string

const (
	RecommendHold   StyleRecommendation = "hold"
	RecommendSwitch StyleRecommendation = "switch"
)

// EffectivenessReport compares predicted and observed response quality
// for the current questioning style. It is advisory input to the next
// GenerateAdaptiveQuestion call; the monitor never switches style itself.
type EffectivenessReport struct {
	EffectivenessScore float64             `json:"effectiveness_score"`
	Recommendation     StyleRecommendation `json:"recommendation"`
	Observation        string              `json:"observation"`
}

// predictedEngagement is the target engagement each style is designed to
// sustain; falling well short of it is evidence the style misfits.
var predictedEngagement = map[QuestioningStyle]float64{
	StyleNoviceFriendly:           0.55,
	StyleIntermediateGuided:       0.6,
	StyleAdvancedTechnical:        0.6,
	StyleExpertEfficient:          0.5,
	StyleImpatientAccelerated:     0.45,
	StyleConfusedSupportive:       0.5,
	StyleCollaborativeExploratory: 0.65,
}

// MonitorStyleEffectiveness scores how well the current style is landing,
// blending observed engagement, clarity, and whether the turn produced
// distress signals.
func (e *Engine) MonitorStyleEffectiveness(sctx *session.Context, currentStyle QuestioningStyle, analysis *ResponseAnalysis) (*EffectivenessReport, error) {
	if sctx == nil || analysis == nil {
		return nil, ErrInvalidInput
	}

	predicted, ok := predictedEngagement[currentStyle]
	if !ok {
		predicted = 0.5
	}

	score := 0.6*clamp01(analysis.Engagement/predicted) + 0.4*analysis.Clarity
	if analysis.HasStrongSignal() {
		// A strong confusion/impatience/skip signal means the current style
		// provoked a correction, regardless of raw engagement.
		score *= 0.5
	}
	score = clamp01(score)

	report := &EffectivenessReport{
		EffectivenessScore: score,
		Recommendation:     RecommendHold,
		Observation:        "engagement tracking prediction",
	}
	if score < 0.4 {
		report.Recommendation = RecommendSwitch
		report.Observation = "observed engagement well below prediction for style"
	}

	e.logger.Debug("style effectiveness",
		"session_id", sctx.SessionID,
		"style", currentStyle,
		"score", score,
		"recommendation", report.Recommendation,
	)
	return report, nil
}

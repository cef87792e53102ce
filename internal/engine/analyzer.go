package engine

import (
	"strings"
	"time"

	"github.com/appforge/discovery-ai-platform/internal/profile"
)

// ResponseAnalysis is the ephemeral per-turn read of a single user
// utterance, independent of the aggregate profile. It is never persisted
// beyond the turn that produced it.
type ResponseAnalysis struct {
	SophisticationScore float64                       `json:"sophistication_score"`
	SophisticationLevel profile.SophisticationLevel   `json:"sophistication_level"`
	Factors             profile.SophisticationFactors `json:"factors"`

	Clarity    float64 `json:"clarity"`
	Engagement float64 `json:"engagement"`

	Signals         []Signal `json:"signals,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// HasStrongSignal reports whether any detected signal clears the
// hysteresis threshold.
func (a *ResponseAnalysis) HasStrongSignal() bool {
	for _, s := range a.Signals {
		if s.Confidence >= strongSignalThreshold {
			return true
		}
	}
	return false
}

// analyzeUtterance computes the full per-turn metrics for one response.
func analyzeUtterance(userResponse string) *ResponseAnalysis {
	score, factors := profile.ScoreUtterance(userResponse)

	analysis := &ResponseAnalysis{
		SophisticationScore: score,
		SophisticationLevel: profile.BucketSophistication(score),
		Factors:             factors,
		Clarity:             factors.CommunicationClarity,
		Engagement:          engagementScore(userResponse),
		Signals:             detectSignals(userResponse),
		AnalyzedAt:          time.Now().UTC(),
	}
	analysis.Recommendations = recommend(analysis)
	return analysis
}

// engagementScore reads effort cues out of the utterance: length, detail,
// and questions back to the agent all count as engagement.
func engagementScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	score := 0.2
	switch {
	case len(words) >= 30:
		score += 0.4
	case len(words) >= 12:
		score += 0.3
	case len(words) >= 5:
		score += 0.2
	}
	if strings.Contains(text, "?") {
		score += 0.15
	}
	// Enumerations and specifics signal invested answers.
	if strings.ContainsAny(text, ",;:") || strings.Contains(text, " and ") {
		score += 0.15
	}
	lower := strings.ToLower(text)
	for _, dismissive := range []string{"whatever", "i guess", "sure", "fine", "dunno", "idk"} {
		if lower == dismissive {
			return 0.1
		}
	}
	if v := clamp01(score); v > 0 {
		return v
	}
	return 0
}

func recommend(a *ResponseAnalysis) []string {
	var out []string
	if _, ok := findSignal(a.Signals, SignalConfusion); ok {
		out = append(out, "restate the last question in plainer language")
	}
	if _, ok := findSignal(a.Signals, SignalImpatience); ok {
		out = append(out, "reduce to essential questions only")
	}
	if _, ok := findSignal(a.Signals, SignalExpertSkip); ok {
		out = append(out, "batch remaining questions and raise assumed depth")
	}
	if _, ok := findSignal(a.Signals, SignalEscapeHatch); ok {
		out = append(out, "offer assumption-driven completion")
	}
	if a.Engagement < 0.3 && len(out) == 0 {
		out = append(out, "shorten questions to rebuild engagement")
	}
	return out
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

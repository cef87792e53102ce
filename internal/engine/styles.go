package engine

import "github.com/appforge/discovery-ai-platform/internal/profile"

// QuestioningStyle is the closed set of tone/pacing/depth profiles the
// engine can question in.
type QuestioningStyle string

const (
	StyleNoviceFriendly           QuestioningStyle = "novice-friendly"
	StyleIntermediateGuided       QuestioningStyle = "intermediate-guided"
	StyleAdvancedTechnical        QuestioningStyle = "advanced-technical"
	StyleExpertEfficient          QuestioningStyle = "expert-efficient"
	StyleImpatientAccelerated     QuestioningStyle = "impatient-accelerated"
	StyleConfusedSupportive       QuestioningStyle = "confused-supportive"
	StyleCollaborativeExploratory QuestioningStyle = "collaborative-exploratory"
)

// StyleParams bundles the generation parameters one style implies.
type StyleParams struct {
	Tone           string `json:"tone"`
	Pacing         string `json:"pacing"`
	AssumedDepth   string `json:"assumed_depth"`
	ExampleDensity string `json:"example_density"`
}

var styleParams = map[QuestioningStyle]StyleParams{
	StyleNoviceFriendly: {
		Tone:           "warm and jargon-free",
		Pacing:         "one small question at a time",
		AssumedDepth:   "none",
		ExampleDensity: "high",
	},
	StyleIntermediateGuided: {
		Tone:           "friendly and explanatory",
		Pacing:         "steady",
		AssumedDepth:   "basic product vocabulary",
		ExampleDensity: "medium",
	},
	StyleAdvancedTechnical: {
		Tone:           "precise and technical",
		Pacing:         "brisk",
		AssumedDepth:   "engineering fluency",
		ExampleDensity: "low",
	},
	StyleExpertEfficient: {
		Tone:           "terse and peer-level",
		Pacing:         "compressed, batched questions",
		AssumedDepth:   "expert",
		ExampleDensity: "none",
	},
	StyleImpatientAccelerated: {
		Tone:           "direct and brief",
		Pacing:         "essentials only",
		AssumedDepth:   "whatever the user has shown",
		ExampleDensity: "none",
	},
	StyleConfusedSupportive: {
		Tone:           "patient and reassuring",
		Pacing:         "slow, with restating",
		AssumedDepth:   "restart from plain language",
		ExampleDensity: "high",
	},
	StyleCollaborativeExploratory: {
		Tone:           "curious and open-ended",
		Pacing:         "conversational",
		AssumedDepth:   "shared discovery",
		ExampleDensity: "medium",
	},
}

// Params returns the generation parameters for a style.
func (s QuestioningStyle) Params() StyleParams {
	return styleParams[s]
}

// strongSignalThreshold is the hysteresis gate: only a signal at or above
// this confidence may flip the remembered style in a single turn.
const strongSignalThreshold = 0.7

// defaultStyleFor maps a sophistication level onto the default style used
// when no explicit behavioral signal overrides it.
func defaultStyleFor(level profile.SophisticationLevel, engagement float64) QuestioningStyle {
	switch level {
	case profile.SophisticationHigh:
		return StyleAdvancedTechnical
	case profile.SophisticationMedium:
		if engagement >= 0.75 {
			return StyleCollaborativeExploratory
		}
		return StyleIntermediateGuided
	default:
		return StyleNoviceFriendly
	}
}

// selectStyle applies the precedence rule (confusion over impatience over
// expert-skip over the sophistication default) with hysteresis: weak
// signals hold the previously remembered style, and the default mapping
// only displaces it after two consecutive turns of disagreement.
func selectStyle(previous QuestioningStyle, analysis *ResponseAnalysis, pendingDefault QuestioningStyle) (style QuestioningStyle, reason string) {
	if sig, ok := findSignal(analysis.Signals, SignalConfusion); ok && sig.Confidence >= strongSignalThreshold {
		return StyleConfusedSupportive, "confusion signal: " + sig.MatchedPhrase
	}
	if sig, ok := findSignal(analysis.Signals, SignalImpatience); ok && sig.Confidence >= strongSignalThreshold {
		return StyleImpatientAccelerated, "impatience signal: " + sig.MatchedPhrase
	}
	if sig, ok := findSignal(analysis.Signals, SignalExpertSkip); ok && sig.Confidence >= strongSignalThreshold {
		return StyleExpertEfficient, "expert-skip signal: " + sig.MatchedPhrase
	}

	preferred := defaultStyleFor(analysis.SophisticationLevel, analysis.Engagement)
	if previous == "" {
		return preferred, "initial sophistication mapping"
	}
	if preferred == previous {
		return previous, "sophistication mapping agrees with current style"
	}
	// Disagreement with the remembered style: require a second consecutive
	// turn before switching, so one ambiguous turn cannot thrash.
	if preferred == pendingDefault {
		return preferred, "sophistication mapping confirmed on consecutive turns"
	}
	return previous, "holding style; single-turn disagreement"
}

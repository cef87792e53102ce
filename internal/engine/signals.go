package engine

import (
	"regexp"
	"strings"
)

// SignalKind identifies one of the behavioral signals the analyzer scans
// each user turn for.
type SignalKind string

const (
	SignalConfusion   SignalKind = "confusion"
	SignalImpatience  SignalKind = "impatience"
	SignalExpertSkip  SignalKind = "expert-skip"
	SignalEscapeHatch SignalKind = "escape-hatch"
)

// Signal is a detected behavioral signal with its match confidence.
type Signal struct {
	Kind          SignalKind `json:"kind"`
	Confidence    float64    `json:"confidence"`
	MatchedPhrase string     `json:"matched_phrase"`
}

type signalPattern struct {
	regex  *regexp.Regexp
	weight float64
	phrase string
}

var confusionPatterns = []signalPattern{
	{regexp.MustCompile(`(?i)\b(i'?m|i am|this is|it'?s)\s+(all\s+)?(very\s+|so\s+|really\s+)?confus(ing|ed)\b`), 0.9, "confused"},
	{regexp.MustCompile(`(?i)\bnot\s+sure\s+what\s+you\s+mean\b`), 0.9, "not sure what you mean"},
	{regexp.MustCompile(`(?i)\bwhat\s+(do|does)\s+(you|that)\s+mean\b`), 0.85, "what do you mean"},
	{regexp.MustCompile(`(?i)\bi\s+don'?t\s+(understand|follow|get\s+it)\b`), 0.9, "don't understand"},
	{regexp.MustCompile(`(?i)\b(lost|confused)\s+me\b`), 0.8, "lost me"},
	{regexp.MustCompile(`(?i)\bcan\s+you\s+(explain|clarify|simplify)\b`), 0.7, "explain"},
	{regexp.MustCompile(`(?i)\bwhat\s+is\s+(a|an)\s+\w+\??\s*$`), 0.6, "what is a"},
	{regexp.MustCompile(`(?i)\bover\s+my\s+head\b`), 0.8, "over my head"},
}

var impatiencePatterns = []signalPattern{
	{regexp.MustCompile(`(?i)\b(hurry|quick(ly)?|asap|right\s+away)\b`), 0.75, "hurry"},
	{regexp.MustCompile(`(?i)\bdon'?t\s+have\s+(much\s+)?time\b`), 0.85, "don't have time"},
	{regexp.MustCompile(`(?i)\b(get|cut)\s+to\s+the\s+(point|chase)\b`), 0.9, "get to the point"},
	{regexp.MustCompile(`(?i)\bhow\s+(much\s+longer|many\s+more\s+questions)\b`), 0.85, "how much longer"},
	{regexp.MustCompile(`(?i)\bthis\s+is\s+taking\s+(too\s+long|forever)\b`), 0.9, "taking too long"},
	{regexp.MustCompile(`(?i)\bjust\s+(tell|show|give)\s+me\b`), 0.7, "just tell me"},
	{regexp.MustCompile(`(?i)\bin\s+a\s+(rush|hurry)\b`), 0.85, "in a rush"},
}

var expertSkipPatterns = []signalPattern{
	{regexp.MustCompile(`(?i)\b(can\s+we\s+|let'?s\s+)?skip\s+(the\s+)?(basics|intro|this)\b`), 0.9, "skip the basics"},
	{regexp.MustCompile(`(?i)\bi\s+(already\s+)?know\s+(all\s+)?(this|that|the\s+basics)\b`), 0.85, "already know this"},
	{regexp.MustCompile(`(?i)\bi'?ve\s+(built|shipped|done)\s+(this|\d+|several|many)\b`), 0.8, "built before"},
	{regexp.MustCompile(`(?i)\bno\s+need\s+to\s+explain\b`), 0.85, "no need to explain"},
	{regexp.MustCompile(`(?i)\bmove\s+(on|ahead|forward)\b`), 0.6, "move on"},
	{regexp.MustCompile(`(?i)\bnext\s+(stage|section|topic)\b`), 0.6, "next stage"},
}

var escapeHatchPatterns = []signalPattern{
	{regexp.MustCompile(`(?i)\b(stop|enough)\s+(with\s+the\s+)?(questions|asking)\b`), 0.9, "stop the questions"},
	{regexp.MustCompile(`(?i)\bjust\s+(build|make|generate)\s+(it|something|the\s+app)\b`), 0.9, "just build it"},
	{regexp.MustCompile(`(?i)\b(use|make)\s+(your\s+best\s+)?(judgment|assumptions|defaults)\b`), 0.85, "use your judgment"},
	{regexp.MustCompile(`(?i)\b(you|i'?ll\s+let\s+you)\s+decide\b`), 0.8, "you decide"},
	{regexp.MustCompile(`(?i)\bfill\s+in\s+the\s+(gaps|blanks|rest)\b`), 0.85, "fill in the gaps"},
	{regexp.MustCompile(`(?i)\bwhatever\s+you\s+think\s+(is\s+)?best\b`), 0.85, "whatever you think"},
}

// detectSignals scans one utterance with every rule set and returns the
// best match per signal kind.
func detectSignals(message string) []Signal {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	sets := []struct {
		kind     SignalKind
		patterns []signalPattern
	}{
		{SignalConfusion, confusionPatterns},
		{SignalImpatience, impatiencePatterns},
		{SignalExpertSkip, expertSkipPatterns},
		{SignalEscapeHatch, escapeHatchPatterns},
	}

	var out []Signal
	for _, set := range sets {
		best := Signal{}
		for _, p := range set.patterns {
			if p.regex.MatchString(message) && p.weight > best.Confidence {
				best = Signal{Kind: set.kind, Confidence: p.weight, MatchedPhrase: p.phrase}
			}
		}
		if best.Confidence > 0 {
			out = append(out, best)
		}
	}
	return out
}

// findSignal returns the detected signal of a kind, if present.
func findSignal(signals []Signal, kind SignalKind) (Signal, bool) {
	for _, s := range signals {
		if s.Kind == kind {
			return s, true
		}
	}
	return Signal{}, false
}

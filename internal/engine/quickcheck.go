package engine

import (
	"strings"

	"github.com/appforge/discovery-ai-platform/internal/profile"
)

// QuickEstimate is the low-latency sophistication approximation used
// where full analysis is unnecessary, such as live typing indicators.
type QuickEstimate struct {
	Score  float64                     `json:"score"`
	Level  profile.SophisticationLevel `json:"level"`
	Domain string                      `json:"domain,omitempty"`
}

// QuickSophisticationCheck estimates sophistication from vocabulary and
// domain cues only. On clear-cut inputs its bucket agrees with the full
// analyzer; both paths share the profile package's factor model.
func (e *Engine) QuickSophisticationCheck(userResponse, domain string) QuickEstimate {
	score := profile.QuickScore(userResponse)
	return QuickEstimate{
		Score:  score,
		Level:  profile.BucketSophistication(score),
		Domain: strings.TrimSpace(domain),
	}
}

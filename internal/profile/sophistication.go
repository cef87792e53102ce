package profile

import "strings"

// Factor weights for the combined sophistication score. Domain expertise
// and vocabulary dominate; depth and terminology are weak single-utterance
// signals so they count least.
const (
	weightVocabulary   = 0.25
	weightDomain       = 0.35
	weightDepth        = 0.10
	weightProfessional = 0.10
	weightClarity      = 0.20
)

// noviceMarkers are explicit self-identification phrases that cap the
// domain-expertise factor regardless of other cues.
var noviceMarkers = []string{
	"don't know anything", "dont know anything", "know nothing",
	"not technical", "non-technical", "no technical background",
	"new to this", "never done this", "no idea how", "not a developer",
	"first time", "complete beginner", "total beginner",
}

// expertMarkers are explicit experience claims that lift domain expertise.
var expertMarkers = []string{
	"i've built", "ive built", "i have built", "we've built", "i've shipped",
	"years of experience", "my previous startup", "already know",
	"i'm an engineer", "i'm a developer", "i am a developer", "we run",
	"in production", "at scale",
}

var depthMarkers = []string{
	"trade-off", "tradeoff", "trade off", "depends on", "because",
	"constraint", "implication", "assuming", "in contrast", "however",
	"edge case", "failure mode", "bottleneck", "consistency",
}

var hedgeMarkers = []string{
	"maybe", "i guess", "i think", "not sure", "kind of", "sort of",
	"possibly", "um", "uh", "i don't know", "i dont know", "confusing",
	"confused", "what do you mean",
}

// ScoreUtterance runs the full five-factor sophistication analysis on one
// utterance, independent of any aggregate profile. The conversation
// engine uses this for per-turn analysis so the full analyzer and the
// quick check share one factor model.
func ScoreUtterance(input string) (float64, SophisticationFactors) {
	text := strings.ToLower(strings.TrimSpace(input))
	_, _, technicalHits, businessHits := classifyRole(text)
	return scoreSophistication(text, technicalHits, businessHits)
}

// QuickScore is the low-latency sophistication approximation: vocabulary
// and domain cues only, skipping depth/terminology/clarity passes. On
// clear-cut inputs its bucket agrees with ScoreUtterance.
func QuickScore(input string) float64 {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return 0
	}
	for _, m := range noviceMarkers {
		if strings.Contains(text, m) {
			return 0.15
		}
	}
	hits := 0
	for _, cue := range technicalIndicators {
		if containsWord(text, cue) {
			hits++
		}
	}
	for _, m := range expertMarkers {
		if strings.Contains(text, m) {
			hits += 2
		}
	}
	words := strings.Fields(text)
	score := 0.3*vocabularyComplexity(words) + clamp01(float64(hits)*0.2)*0.7
	return clamp01(score)
}

// scoreSophistication decomposes the lowercased input into the five named
// factors and combines them into a single [0,1] score.
func scoreSophistication(text string, technicalHits, businessHits []string) (float64, SophisticationFactors) {
	words := strings.Fields(text)
	f := SophisticationFactors{
		VocabularyComplexity:    vocabularyComplexity(words),
		DomainExpertise:         domainExpertise(text, technicalHits),
		ConceptualDepth:         conceptualDepth(text, words),
		ProfessionalTerminology: professionalTerminology(text, businessHits),
		CommunicationClarity:    communicationClarity(text, words),
	}

	score := weightVocabulary*f.VocabularyComplexity +
		weightDomain*f.DomainExpertise +
		weightDepth*f.ConceptualDepth +
		weightProfessional*f.ProfessionalTerminology +
		weightClarity*f.CommunicationClarity

	return clamp01(score), f
}

func vocabularyComplexity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	long := 0
	totalLen := 0
	for _, w := range words {
		totalLen += len(w)
		if len(w) >= 8 {
			long++
		}
	}
	avgLen := float64(totalLen) / float64(len(words))
	longRatio := float64(long) / float64(len(words))

	// Average English word length is ~4.7; 7+ signals dense vocabulary.
	score := (avgLen-3.5)/3.5 + longRatio
	return clamp01(score)
}

func domainExpertise(text string, technicalHits []string) float64 {
	for _, m := range noviceMarkers {
		if strings.Contains(text, m) {
			return 0.1
		}
	}

	score := float64(len(technicalHits)) * 0.18
	for _, m := range expertMarkers {
		if strings.Contains(text, m) {
			score += 0.3
		}
	}
	return clamp01(score)
}

func conceptualDepth(text string, words []string) float64 {
	score := 0.0
	for _, m := range depthMarkers {
		if strings.Contains(text, m) {
			score += 0.2
		}
	}
	// Longer utterances carry more structure; saturate at 40 words.
	score += clamp01(float64(len(words))/40) * 0.3
	return clamp01(score)
}

func professionalTerminology(text string, businessHits []string) float64 {
	score := float64(len(businessHits)) * 0.1
	for _, term := range professionalTerms {
		if containsWord(text, term) {
			score += 0.15
		}
	}
	return clamp01(score)
}

func communicationClarity(text string, words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	score := 0.8
	for _, m := range hedgeMarkers {
		if strings.Contains(text, m) {
			score -= 0.2
		}
	}
	// Very short replies give little evidence of structured communication.
	if len(words) < 4 {
		score -= 0.2
	}
	return clamp01(score)
}

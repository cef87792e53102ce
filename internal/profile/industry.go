package profile

import (
	"sort"
	"strings"
)

const (
	strongCueWeight = 0.3
	weakCueWeight   = 0.12
)

// classifyIndustry scores the fixed taxonomy against the lowercased input
// and returns the ranked list, best first. The winner is the highest score;
// ties break by richer keyword-match count, then by taxonomy declaration
// order. Inputs that match nothing fall back to the general industry.
func classifyIndustry(text string) (best IndustryScore, alternates []IndustryScore, keywords []string) {
	scores := make([]IndustryScore, 0, len(industryTaxonomy))
	orderOf := make(map[Industry]int, len(industryTaxonomy))
	matchedKeywords := make(map[string]struct{})

	for i, lex := range industryTaxonomy {
		orderOf[lex.industry] = i
		score := 0.0
		count := 0

		for _, cue := range lex.strong {
			if strings.Contains(text, cue) {
				score += strongCueWeight
				count++
				matchedKeywords[cue] = struct{}{}
			}
		}
		for _, cue := range lex.weak {
			if containsWord(text, cue) {
				score += weakCueWeight
				count++
				matchedKeywords[cue] = struct{}{}
			}
		}

		if count > 0 {
			scores = append(scores, IndustryScore{
				Industry:     lex.industry,
				Confidence:   clamp01(score),
				KeywordCount: count,
			})
		}
	}

	if len(scores) == 0 {
		return IndustryScore{Industry: IndustryGeneral, Confidence: 0.2}, nil, nil
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		if scores[i].KeywordCount != scores[j].KeywordCount {
			return scores[i].KeywordCount > scores[j].KeywordCount
		}
		return orderOf[scores[i].Industry] < orderOf[scores[j].Industry]
	})

	for kw := range matchedKeywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	return scores[0], scores[1:], keywords
}

// containsWord checks for a cue bounded by non-letter characters, so
// "api" does not match inside "rapid". Multi-word cues use substring match.
func containsWord(text, cue string) bool {
	if strings.ContainsRune(cue, ' ') {
		return strings.Contains(text, cue)
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], cue)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(cue)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
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

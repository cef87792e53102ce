package profile

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/appforge/discovery-ai-platform/internal/observability/metrics"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// AnalysisVersion tags profiles with the scorer revision that produced
// them so persisted profiles can be reprocessed safely.
const AnalysisVersion = "2.1.0"

// Detector turns free text into a confidence-scored UserProfile. It is
// stateless and safe for concurrent use.
type Detector struct {
	logger  *logging.Logger
	tracer  trace.Tracer
	metrics *metrics.EngineMetrics
}

// Option customizes detector construction.
type Option func(*Detector)

// WithMetrics attaches prometheus instrumentation.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(d *Detector) { d.metrics = m }
}

// NewDetector creates a profile detector.
func NewDetector(logger *logging.Logger, opts ...Option) *Detector {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Detector{
		logger: logger,
		tracer: otel.Tracer("discovery.internal.profile"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectProfile classifies a single utterance, optionally merging with a
// previous profile. Empty input after trimming fails with ErrInvalidInput.
func (d *Detector) DetectProfile(ctx context.Context, input string, opts DetectOptions) (*DetectionResult, error) {
	_, span := d.tracer.Start(ctx, "profile.detect")
	defer span.End()

	input = strings.TrimSpace(input)
	if input == "" {
		span.RecordError(ErrInvalidInput)
		return nil, ErrInvalidInput
	}

	text := strings.ToLower(input)
	now := time.Now().UTC()

	// The history gives the classifiers more lexical surface than a single
	// utterance; only user turns count as evidence about the user.
	corpus := text
	for _, entry := range opts.ConversationHistory {
		if entry.Role == "user" {
			corpus += "\n" + strings.ToLower(entry.Content)
		}
	}

	industry, alternates, industryKeywords := classifyIndustry(corpus)
	role, roleConfidence, technicalHits, businessHits := classifyRole(corpus)
	score, factors := scoreSophistication(text, technicalHits, businessHits)

	keywords := mergeKeywordSets(industryKeywords, technicalHits, businessHits)

	fresh := &UserProfile{
		Industry:            industry.Industry,
		IndustryConfidence:  industry.Confidence,
		Role:                role,
		RoleConfidence:      roleConfidence,
		SophisticationLevel: BucketSophistication(score),
		SophisticationScore: score,
		Factors:             factors,
		DetectedKeywords:    keywords,
		AssumptionTolerance: toleranceFor(score),
		Created:             now,
		LastUpdated:         now,
		AnalysisVersion:     AnalysisVersion,
	}

	merged := false
	if opts.PreviousProfile != nil {
		fresh = mergeProfiles(opts.PreviousProfile, fresh, now)
		merged = true
	}

	span.SetAttributes(
		attribute.String("profile.industry", string(fresh.Industry)),
		attribute.Float64("profile.industry_confidence", fresh.IndustryConfidence),
		attribute.String("profile.role", string(fresh.Role)),
		attribute.String("profile.sophistication", string(fresh.SophisticationLevel)),
		attribute.Bool("profile.merged", merged),
	)

	d.metrics.ObserveDetection(string(fresh.Industry), string(fresh.Role))
	d.logger.Debug("profile detected",
		"session_id", opts.SessionID,
		"industry", fresh.Industry,
		"industry_confidence", fresh.IndustryConfidence,
		"role", fresh.Role,
		"sophistication", fresh.SophisticationLevel,
		"merged", merged,
	)

	return &DetectionResult{
		Profile: fresh,
		Metadata: DetectionMetadata{
			AnalysisVersion:    AnalysisVersion,
			IndustryAlternates: alternates,
			MergedWithPrevious: merged,
			ProcessedAt:        now,
		},
	}, nil
}

// mergeProfiles folds a fresh single-utterance classification into an
// established profile. Higher-confidence historical signal wins: a field
// only moves to the new value when the new confidence strictly exceeds
// the prior one, and prior confidences are never lowered.
func mergeProfiles(prev, fresh *UserProfile, now time.Time) *UserProfile {
	out := *prev

	if fresh.IndustryConfidence > prev.IndustryConfidence {
		out.Industry = fresh.Industry
		out.IndustryConfidence = fresh.IndustryConfidence
	}
	if fresh.RoleConfidence > prev.RoleConfidence {
		out.Role = fresh.Role
		out.RoleConfidence = fresh.RoleConfidence
	}

	// Sophistication drifts as a weighted average instead of snapping, so
	// one uncharacteristic utterance cannot rewrite the level.
	out.SophisticationScore = clamp01(0.7*prev.SophisticationScore + 0.3*fresh.SophisticationScore)
	out.SophisticationLevel = BucketSophistication(out.SophisticationScore)
	out.Factors = blendFactors(prev.Factors, fresh.Factors)
	out.AssumptionTolerance = toleranceFor(out.SophisticationScore)

	out.DetectedKeywords = mergeKeywordSets(prev.DetectedKeywords, fresh.DetectedKeywords)
	out.Created = prev.Created
	out.LastUpdated = now
	out.AnalysisVersion = AnalysisVersion
	return &out
}

func blendFactors(prev, fresh SophisticationFactors) SophisticationFactors {
	blend := func(a, b float64) float64 { return clamp01(0.7*a + 0.3*b) }
	return SophisticationFactors{
		VocabularyComplexity:    blend(prev.VocabularyComplexity, fresh.VocabularyComplexity),
		DomainExpertise:         blend(prev.DomainExpertise, fresh.DomainExpertise),
		ConceptualDepth:         blend(prev.ConceptualDepth, fresh.ConceptualDepth),
		ProfessionalTerminology: blend(prev.ProfessionalTerminology, fresh.ProfessionalTerminology),
		CommunicationClarity:    blend(prev.CommunicationClarity, fresh.CommunicationClarity),
	}
}

func toleranceFor(score float64) AssumptionTolerance {
	switch BucketSophistication(score) {
	case SophisticationHigh:
		return ToleranceHigh
	case SophisticationMedium:
		return ToleranceMedium
	default:
		return ToleranceLow
	}
}

func mergeKeywordSets(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range sets {
		for _, kw := range set {
			if _, ok := seen[kw]; !ok {
				seen[kw] = struct{}{}
				out = append(out, kw)
			}
		}
	}
	sort.Strings(out)
	return out
}

// hasTechnicalKeyword reports whether any detected keyword is a technical
// indicator; used by validation for role/terminology consistency.
func hasTechnicalKeyword(keywords []string) bool {
	for _, kw := range keywords {
		for _, cue := range technicalIndicators {
			if kw == cue {
				return true
			}
		}
	}
	return false
}

package profile

import "time"

// Industry is a closed taxonomy of business verticals we classify against.
type Industry string

const (
	IndustryFintech     Industry = "fintech"
	IndustryHealthcare  Industry = "healthcare"
	IndustryEcommerce   Industry = "ecommerce"
	IndustrySaaS        Industry = "saas"
	IndustryEducation   Industry = "education"
	IndustryRealEstate  Industry = "realestate"
	IndustryLogistics   Industry = "logistics"
	IndustryHospitality Industry = "hospitality"
	IndustryGeneral     Industry = "general"
)

// Role classifies how the user frames problems and solutions.
type Role string

const (
	RoleTechnical Role = "technical"
	RoleBusiness  Role = "business"
	RoleHybrid    Role = "hybrid"
	RoleUnknown   Role = "unknown"
)

// SophisticationLevel is the coarse bucket derived from the continuous score.
type SophisticationLevel string

const (
	SophisticationLow    SophisticationLevel = "low"
	SophisticationMedium SophisticationLevel = "medium"
	SophisticationHigh   SophisticationLevel = "high"
)

// AssumptionTolerance indicates how comfortable the user is with the system
// filling gaps on their behalf.
type AssumptionTolerance string

const (
	ToleranceLow    AssumptionTolerance = "low"
	ToleranceMedium AssumptionTolerance = "medium"
	ToleranceHigh   AssumptionTolerance = "high"
)

// SophisticationFactors is the five-way decomposition of the continuous
// sophistication score. Each factor is in [0,1].
type SophisticationFactors struct {
	VocabularyComplexity    float64 `json:"vocabulary_complexity"`
	DomainExpertise         float64 `json:"domain_expertise"`
	ConceptualDepth         float64 `json:"conceptual_depth"`
	ProfessionalTerminology float64 `json:"professional_terminology"`
	CommunicationClarity    float64 `json:"communication_clarity"`
}

// HistoryEntry is one message in a conversation transcript.
type HistoryEntry struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserProfile is the confidence-scored classification of a user.
// Confidences are in [0,1]; LastUpdated is never before Created;
// ConversationHistory is append-only for the life of a session.
type UserProfile struct {
	Industry           Industry              `json:"industry"`
	IndustryConfidence float64               `json:"industry_confidence"`
	Role               Role                  `json:"role"`
	RoleConfidence     float64               `json:"role_confidence"`

	SophisticationLevel SophisticationLevel   `json:"sophistication_level"`
	SophisticationScore float64               `json:"sophistication_score"`
	Factors             SophisticationFactors `json:"factors"`

	DetectedKeywords    []string            `json:"detected_keywords"`
	ConversationHistory []HistoryEntry      `json:"conversation_history,omitempty"`

	PreferredCommunicationStyle string              `json:"preferred_communication_style,omitempty"`
	AssumptionTolerance         AssumptionTolerance `json:"assumption_tolerance"`

	Created         time.Time `json:"created"`
	LastUpdated     time.Time `json:"last_updated"`
	AnalysisVersion string    `json:"analysis_version"`
}

// IndustryScore is one alternate in the ranked industry list.
type IndustryScore struct {
	Industry     Industry `json:"industry"`
	Confidence   float64  `json:"confidence"`
	KeywordCount int      `json:"keyword_count"`
}

// DetectOptions controls a single detection call.
type DetectOptions struct {
	SessionID                string
	ConversationHistory      []HistoryEntry
	PreviousProfile          *UserProfile
	RequireMinimumConfidence float64
	EnableLearning           bool
}

// DetectionMetadata describes how a detection result was produced.
type DetectionMetadata struct {
	AnalysisVersion    string          `json:"analysis_version"`
	IndustryAlternates []IndustryScore `json:"industry_alternates,omitempty"`
	MergedWithPrevious bool            `json:"merged_with_previous"`
	ProcessedAt        time.Time       `json:"processed_at"`
}

// DetectionResult bundles the classified profile with its metadata.
type DetectionResult struct {
	Profile  *UserProfile      `json:"profile"`
	Metadata DetectionMetadata `json:"metadata"`
}

// ValidationIssue is a specific problem found by ValidateProfile.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of an independent profile validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// Sophistication bucket thresholds: score < 0.4 is low, < 0.7 medium,
// otherwise high.
const (
	mediumThreshold = 0.4
	highThreshold   = 0.7
)

// BucketSophistication maps a continuous score onto the coarse level.
func BucketSophistication(score float64) SophisticationLevel {
	switch {
	case score >= highThreshold:
		return SophisticationHigh
	case score >= mediumThreshold:
		return SophisticationMedium
	default:
		return SophisticationLow
	}
}

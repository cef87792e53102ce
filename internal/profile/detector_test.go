package profile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDetectProfile_EmptyInput(t *testing.T) {
	d := NewDetector(nil)

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := d.DetectProfile(context.Background(), input, DetectOptions{})
		require.ErrorIs(t, err, ErrInvalidInput, "input %q", input)
	}
}

func TestDetectProfile_ConfidencesInRange(t *testing.T) {
	d := NewDetector(nil)

	inputs := []string{
		"I want to build an app but I don't know anything about technology",
		"We need SOC2 compliance with real-time API integration for our microservices architecture",
		"hello",
		"My shop sells handmade candles and I need online orders and shipping",
		"Our hospital needs a HIPAA compliant patient portal with EHR integration",
	}
	for _, input := range inputs {
		res, err := d.DetectProfile(context.Background(), input, DetectOptions{})
		require.NoError(t, err)

		p := res.Profile
		require.GreaterOrEqual(t, p.IndustryConfidence, 0.0)
		require.LessOrEqual(t, p.IndustryConfidence, 1.0)
		require.GreaterOrEqual(t, p.RoleConfidence, 0.0)
		require.LessOrEqual(t, p.RoleConfidence, 1.0)
		require.GreaterOrEqual(t, p.SophisticationScore, 0.0)
		require.LessOrEqual(t, p.SophisticationScore, 1.0)

		// Level must agree with the score's own bucketing.
		require.Equal(t, BucketSophistication(p.SophisticationScore), p.SophisticationLevel)
		require.False(t, p.LastUpdated.Before(p.Created))
	}
}

func TestDetectProfile_TechnicalFintech(t *testing.T) {
	d := NewDetector(nil)

	res, err := d.DetectProfile(context.Background(),
		"We need SOC2 compliance with real-time API integration for our microservices architecture",
		DetectOptions{})
	require.NoError(t, err)

	p := res.Profile
	require.Contains(t, []Industry{IndustryFintech, IndustrySaaS}, p.Industry)
	require.Contains(t, []Role{RoleTechnical, RoleHybrid}, p.Role)
	require.Equal(t, SophisticationHigh, p.SophisticationLevel)
	require.NotEmpty(t, p.DetectedKeywords)
}

func TestDetectProfile_NoviceGetsLowSophistication(t *testing.T) {
	d := NewDetector(nil)

	res, err := d.DetectProfile(context.Background(),
		"I want to build an app but I don't know anything about technology",
		DetectOptions{})
	require.NoError(t, err)

	require.Equal(t, SophisticationLow, res.Profile.SophisticationLevel)
	require.Equal(t, ToleranceLow, res.Profile.AssumptionTolerance)
}

func TestDetectProfile_IndustryScenarios(t *testing.T) {
	d := NewDetector(nil)

	cases := []struct {
		input string
		want  Industry
	}{
		{"Our hospital needs a HIPAA compliant patient portal", IndustryHealthcare},
		{"I run a Shopify storefront and need better checkout and inventory", IndustryEcommerce},
		{"We're building an LMS so teachers can manage courses and grading", IndustryEducation},
		{"Fleet management with last mile delivery tracking for our drivers", IndustryLogistics},
		{"A payment processing platform with KYC and fraud detection", IndustryFintech},
		{"I like turtles", IndustryGeneral},
	}
	for _, tc := range cases {
		res, err := d.DetectProfile(context.Background(), tc.input, DetectOptions{})
		require.NoError(t, err)
		require.Equal(t, tc.want, res.Profile.Industry, "input %q", tc.input)
	}
}

func TestDetectProfile_AlternatesOrdered(t *testing.T) {
	d := NewDetector(nil)

	res, err := d.DetectProfile(context.Background(),
		"A SaaS subscription billing platform handling payments and compliance for banking customers",
		DetectOptions{})
	require.NoError(t, err)

	prev := res.Profile.IndustryConfidence
	for _, alt := range res.Metadata.IndustryAlternates {
		require.LessOrEqual(t, alt.Confidence, prev)
		prev = alt.Confidence
	}
}

func TestDetectProfile_MonotonicMerge(t *testing.T) {
	d := NewDetector(nil)

	strong, err := d.DetectProfile(context.Background(),
		"A payment processing platform with KYC, AML, fraud detection, lending, and banking ledger settlement",
		DetectOptions{})
	require.NoError(t, err)
	require.Equal(t, IndustryFintech, strong.Profile.Industry)

	// A vague follow-up must not overwrite the high-confidence prior.
	merged, err := d.DetectProfile(context.Background(), "ok sounds good, what's next?",
		DetectOptions{PreviousProfile: strong.Profile})
	require.NoError(t, err)

	require.True(t, merged.Metadata.MergedWithPrevious)
	require.Equal(t, IndustryFintech, merged.Profile.Industry)
	require.GreaterOrEqual(t, merged.Profile.IndustryConfidence, strong.Profile.IndustryConfidence)
	require.Equal(t, strong.Profile.Created, merged.Profile.Created)
	require.False(t, merged.Profile.LastUpdated.Before(strong.Profile.LastUpdated))
}

func TestDetectProfile_HistoryInformsClassification(t *testing.T) {
	d := NewDetector(nil)

	history := []HistoryEntry{
		{Role: "user", Content: "We process payments and need KYC checks", Timestamp: time.Now()},
		{Role: "assistant", Content: "Tell me more about your flows", Timestamp: time.Now()},
	}
	res, err := d.DetectProfile(context.Background(), "and it has to be fast",
		DetectOptions{ConversationHistory: history})
	require.NoError(t, err)
	require.Equal(t, IndustryFintech, res.Profile.Industry)
}

func TestValidateProfile(t *testing.T) {
	d := NewDetector(nil)

	res, err := d.DetectProfile(context.Background(),
		"We need SOC2 compliance with real-time API integration for our microservices architecture",
		DetectOptions{})
	require.NoError(t, err)

	result := ValidateProfile(res.Profile, 0.1)
	require.True(t, result.Valid, "issues: %v", result.Issues)

	// Raising the floor above the detected confidences must fail.
	result = ValidateProfile(res.Profile, 0.99)
	require.False(t, result.Valid)
	require.NotEmpty(t, result.Issues)
}

func TestValidateProfile_TechnicalRoleWithoutKeywords(t *testing.T) {
	p := &UserProfile{
		Industry:            IndustrySaaS,
		IndustryConfidence:  0.8,
		Role:                RoleTechnical,
		RoleConfidence:      0.8,
		SophisticationScore: 0.8,
		SophisticationLevel: SophisticationHigh,
		Created:             time.Now(),
		LastUpdated:         time.Now(),
	}
	result := ValidateProfile(p, 0.1)
	require.False(t, result.Valid)

	found := false
	for _, issue := range result.Issues {
		if issue.Field == "role" {
			found = true
		}
	}
	require.True(t, found, "expected a role consistency issue, got %v", result.Issues)
}

func TestValidateProfile_Nil(t *testing.T) {
	result := ValidateProfile(nil, 0)
	require.False(t, result.Valid)
}

func TestBatchDetectProfiles_TooLarge(t *testing.T) {
	d := NewDetector(nil)

	inputs := make([]string, MaxBatchSize+1)
	for i := range inputs {
		inputs[i] = "we sell products online"
	}
	_, err := d.BatchDetectProfiles(context.Background(), inputs, DetectOptions{})
	require.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestBatchDetectProfiles_RejectsEmptyItemBeforeProcessing(t *testing.T) {
	d := NewDetector(nil)

	_, err := d.BatchDetectProfiles(context.Background(),
		[]string{"we sell products online", "   "}, DetectOptions{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBatchDetectProfiles_PreservesInputOrder(t *testing.T) {
	d := NewDetector(nil)

	inputs := []string{
		"our hospital treats patients and books appointments",
		"payment processing with KYC and fraud detection",
		"students take courses in our LMS classroom",
	}
	results, err := d.BatchDetectProfiles(context.Background(), inputs, DetectOptions{})
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	require.Equal(t, IndustryHealthcare, results[0].Profile.Industry)
	require.Equal(t, IndustryFintech, results[1].Profile.Industry)
	require.Equal(t, IndustryEducation, results[2].Profile.Industry)
}

func TestBucketSophistication(t *testing.T) {
	cases := []struct {
		score float64
		want  SophisticationLevel
	}{
		{0.0, SophisticationLow},
		{0.39, SophisticationLow},
		{0.4, SophisticationMedium},
		{0.69, SophisticationMedium},
		{0.7, SophisticationHigh},
		{1.0, SophisticationHigh},
	}
	for _, tc := range cases {
		if got := BucketSophistication(tc.score); got != tc.want {
			t.Errorf("BucketSophistication(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestContainsWord(t *testing.T) {
	if containsWord("rapid growth", "api") {
		t.Error("api should not match inside rapid")
	}
	if !containsWord("our api is slow", "api") {
		t.Error("expected api to match as a word")
	}
	if !containsWord(strings.ToLower("REST API integration"), "api") {
		t.Error("expected api to match after lowering")
	}
}

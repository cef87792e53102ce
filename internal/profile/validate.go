package profile

import "fmt"

// ValidateProfile independently checks a detected profile against a
// confidence floor and internal consistency rules. It never mutates the
// profile; callers decide what to do with a failing result.
func ValidateProfile(p *UserProfile, minConfidence float64) ValidationResult {
	var issues []ValidationIssue

	if p == nil {
		return ValidationResult{
			Valid:  false,
			Issues: []ValidationIssue{{Field: "profile", Message: "profile is nil"}},
		}
	}

	check := func(field string, value float64) {
		if value < 0 || value > 1 {
			issues = append(issues, ValidationIssue{
				Field:   field,
				Message: fmt.Sprintf("confidence %.3f outside [0,1]", value),
			})
			return
		}
		if value < minConfidence {
			issues = append(issues, ValidationIssue{
				Field:   field,
				Message: fmt.Sprintf("confidence %.3f below minimum %.3f", value, minConfidence),
			})
		}
	}
	check("industry_confidence", p.IndustryConfidence)
	check("role_confidence", p.RoleConfidence)

	if p.SophisticationScore < 0 || p.SophisticationScore > 1 {
		issues = append(issues, ValidationIssue{
			Field:   "sophistication_score",
			Message: fmt.Sprintf("score %.3f outside [0,1]", p.SophisticationScore),
		})
	} else if BucketSophistication(p.SophisticationScore) != p.SophisticationLevel {
		issues = append(issues, ValidationIssue{
			Field:   "sophistication_level",
			Message: fmt.Sprintf("level %q inconsistent with score %.3f", p.SophisticationLevel, p.SophisticationScore),
		})
	}

	// A technical classification with no technical vocabulary anywhere in
	// the detected keywords is a terminology inconsistency.
	if (p.Role == RoleTechnical || p.Role == RoleHybrid) && !hasTechnicalKeyword(p.DetectedKeywords) {
		issues = append(issues, ValidationIssue{
			Field:   "role",
			Message: fmt.Sprintf("role %q but no technical keywords detected", p.Role),
		})
	}

	if p.LastUpdated.Before(p.Created) {
		issues = append(issues, ValidationIssue{
			Field:   "last_updated",
			Message: "last_updated precedes created",
		})
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

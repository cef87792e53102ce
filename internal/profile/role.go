package profile

// jointRoleThreshold is the score both indicator sets must clear for a
// hybrid classification; a single set clearing it yields that role alone.
const jointRoleThreshold = 0.35

// indicatorWeight is the score contribution of one matched indicator.
// Four distinct matches saturate a clear single-role classification.
const indicatorWeight = 0.15

// classifyRole scores technical vs. business framing in the lowercased
// input. Both above threshold means hybrid; neither means unknown.
func classifyRole(text string) (role Role, confidence float64, technicalHits, businessHits []string) {
	techScore := 0.0
	for _, cue := range technicalIndicators {
		if containsWord(text, cue) {
			techScore += indicatorWeight
			technicalHits = append(technicalHits, cue)
		}
	}
	bizScore := 0.0
	for _, cue := range businessIndicators {
		if containsWord(text, cue) {
			bizScore += indicatorWeight
			businessHits = append(businessHits, cue)
		}
	}
	techScore = clamp01(techScore)
	bizScore = clamp01(bizScore)

	switch {
	case techScore >= jointRoleThreshold && bizScore >= jointRoleThreshold:
		role = RoleHybrid
		confidence = (techScore + bizScore) / 2
	case techScore >= jointRoleThreshold:
		role = RoleTechnical
		confidence = techScore
	case bizScore >= jointRoleThreshold:
		role = RoleBusiness
		confidence = bizScore
	default:
		role = RoleUnknown
		// Weak evidence still informs the confidence we report.
		confidence = maxFloat(techScore, bizScore)
	}
	return role, confidence, technicalHits, businessHits
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

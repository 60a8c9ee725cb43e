package humanize

import (
	"fmt"
	"regexp"
	"strings"
)

// RiskLevel is the detection-risk tier derived from a score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

const (
	maxVocabularyPenalty = 30
	vocabularyPenaltyPer = 2
	burstinessPenalty    = 15
	listPenalty          = 10
	listAllowance        = 3
	negationPenalty      = 10
	negationAllowance    = 5
	conclusionPenalty    = 5
)

var threeItemListRe = regexp.MustCompile(`(?i)\b[\w'-]+,\s+[\w'-]+,?\s+and\s+[\w'-]+\b`)

// RiskReport is the diagnostic produced by AnalyzeRisk. Issues and
// Recommendations are parallel and kept in detection order.
type RiskReport struct {
	Score           int        `json:"score"`
	RiskLevel       RiskLevel  `json:"risk_level"`
	Issues          []string   `json:"issues"`
	Recommendations []string   `json:"recommendations"`
	MarkedTerms     int        `json:"marked_terms"`
	Burstiness      Burstiness `json:"burstiness"`
}

func (r *RiskReport) add(deduction int, issue, recommendation string) {
	r.Score -= deduction
	r.Issues = append(r.Issues, issue)
	r.Recommendations = append(r.Recommendations, recommendation)
}

// AnalyzeRisk scores how likely text is to read as machine-generated.
// It is a pure function of text; 100 is the most human-like score.
func AnalyzeRisk(text string) RiskReport {
	report := RiskReport{
		Score:           100,
		Issues:          []string{},
		Recommendations: []string{},
	}

	report.MarkedTerms = vocabulary.Count(text)
	if report.MarkedTerms > 0 {
		report.add(min(maxVocabularyPenalty, report.MarkedTerms*vocabularyPenaltyPer),
			fmt.Sprintf("Found %d AI-typical vocabulary terms", report.MarkedTerms),
			"Replace flagged vocabulary with plain, everyday alternatives")
	}

	report.Burstiness = ComputeBurstiness(text)
	if report.Burstiness.Sentences >= 2 && report.Burstiness.Score <= humanLikeThreshold {
		report.add(burstinessPenalty,
			fmt.Sprintf("Burstiness too low (%.1f%%), needs >40%%", report.Burstiness.Score),
			"Vary sentence length: mix short fragments with longer sentences")
	}

	plain := stripTags(text)
	if lists := len(threeItemListRe.FindAllStringIndex(plain, -1)); lists > listAllowance {
		report.add(listPenalty,
			fmt.Sprintf("Found %d three-item lists", lists),
			"Break up rule-of-three lists; use two or four items instead")
	}

	if count := negations.Count(text); count > negationAllowance {
		report.add(negationPenalty,
			fmt.Sprintf("Found %d uncontracted negations", count),
			"Use contractions such as don't, can't and isn't")
	}

	lower := strings.ToLower(plain)
	for _, phrase := range conclusionLeadIns {
		if strings.Contains(lower, phrase) {
			report.add(conclusionPenalty,
				fmt.Sprintf("Formal conclusion phrase detected: %q", phrase),
				"Drop formulaic closers and end on a concrete point")
			break
		}
	}

	report.Score = max(report.Score, 0)
	report.RiskLevel = tierFor(report.Score)
	return report
}

func tierFor(score int) RiskLevel {
	switch {
	case score >= 85:
		return RiskLow
	case score >= 70:
		return RiskMedium
	default:
		return RiskHigh
	}
}

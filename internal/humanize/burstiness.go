package humanize

import (
	"math"
	"regexp"
	"strings"
)

// humanLikeThreshold is the coefficient of variation (percent) above which
// sentence rhythm reads as human.
const humanLikeThreshold = 40.0

var metricSentenceRe = regexp.MustCompile(`[.!?]+|\n`)

// Burstiness describes the spread of sentence lengths in words.
type Burstiness struct {
	Score       float64 `json:"score"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	IsHumanLike bool    `json:"is_human_like"`
	Sentences   int     `json:"sentences"`
}

// ComputeBurstiness measures sentence-length variation over the visible text.
// Score is the coefficient of variation in percent. Fewer than two sentences
// yield a zero score.
func ComputeBurstiness(text string) Burstiness {
	lengths := sentenceLengths(text)
	if len(lengths) < 2 {
		return Burstiness{Sentences: len(lengths)}
	}

	var sum float64
	for _, n := range lengths {
		sum += float64(n)
	}
	mean := sum / float64(len(lengths))

	var variance float64
	for _, n := range lengths {
		d := float64(n) - mean
		variance += d * d
	}
	variance /= float64(len(lengths))
	stdDev := math.Sqrt(variance)

	score := 0.0
	if mean > 0 {
		score = stdDev / mean * 100
	}

	return Burstiness{
		Score:       round2(score),
		Mean:        round2(mean),
		StdDev:      round2(stdDev),
		IsHumanLike: score > humanLikeThreshold,
		Sentences:   len(lengths),
	}
}

// sentenceLengths returns word counts of the non-empty sentences in text.
func sentenceLengths(text string) []int {
	plain := stripTags(text)
	var lengths []int
	for _, s := range metricSentenceRe.Split(plain, -1) {
		if n := len(strings.Fields(s)); n > 0 {
			lengths = append(lengths, n)
		}
	}
	return lengths
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

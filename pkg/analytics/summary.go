package analytics

import (
	"math"
	"strings"

	"mercator-hq/feedback/pkg/storage"
)

// Summary aggregates an account's analyses.
type Summary struct {
	Total    int     `json:"total"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Neutral  int     `json:"neutral"`
	Average  float64 `json:"average"`
}

// Summarize counts records by sentiment and averages their scores, rounded
// to two decimals. Zero records yield a zero Summary.
func Summarize(records []storage.AnalysisRecord) Summary {
	var (
		s   Summary
		sum int
	)

	for _, r := range records {
		s.Total++
		sum += r.Score

		label := strings.ToLower(r.Sentiment)
		switch {
		case strings.Contains(label, "positiv"):
			s.Positive++
		case strings.Contains(label, "negativ"):
			s.Negative++
		case strings.Contains(label, "neutral"):
			s.Neutral++
		}
	}

	if s.Total > 0 {
		s.Average = math.Round(float64(sum)/float64(s.Total)*100) / 100
	}
	return s
}

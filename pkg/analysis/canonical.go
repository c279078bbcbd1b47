package analysis

import "strings"

// Canonical sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Canonicalize maps a model-provided label onto a canonical one by
// case-insensitive substring match, checked in order: "positiv", "negativ",
// "neutral". Anything else is neutral.
//
// The stems cover English and Spanish spellings ("positivo", "negativa").
func Canonicalize(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "positiv"):
		return SentimentPositive
	case strings.Contains(l, "negativ"):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"mercator-hq/feedback/pkg/cache"
)

// Score bounds and defaults.
const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5
)

// fallbackSummary is the summary of the fixed fallback payload.
const fallbackSummary = "Error"

// Kind tags how a Result was produced.
type Kind int

const (
	// KindParsed means the model reply contained a JSON object. Missing or
	// invalid fields were filled with defaults.
	KindParsed Kind = iota

	// KindFallback means the call failed or the reply held no usable JSON.
	KindFallback
)

// String returns the metrics label of the kind.
func (k Kind) String() string {
	if k == KindFallback {
		return "fallback"
	}
	return "parsed"
}

// Result is the outcome of interpreting one model reply.
type Result struct {
	Kind    Kind
	Payload cache.Payload
}

// Fallback returns the Result used whenever analysis fails.
func Fallback() Result {
	return Result{Kind: KindFallback, Payload: FallbackPayload()}
}

// FallbackPayload returns the fixed payload substituted for a failed
// analysis.
func FallbackPayload() cache.Payload {
	return cache.Payload{
		Sentiment:   SentimentNeutral,
		Score:       DefaultScore,
		Suggestions: []string{},
		Summary:     fallbackSummary,
		Fallback:    true,
	}
}

// reply mirrors the JSON object the prompt asks for. Fields are decoded
// individually so that one malformed field does not discard the others.
type reply struct {
	Sentiment   json.RawMessage `json:"sentiment"`
	Score       json.RawMessage `json:"score"`
	Suggestions json.RawMessage `json:"suggestions"`
	Summary     json.RawMessage `json:"summary"`
}

// Parse interprets a raw model reply.
//
// Defaults for missing or invalid fields: sentiment "neutral", score 5,
// suggestions [], summary "". A reply with no decodable JSON object yields
// the fallback.
func Parse(raw string) Result {
	r, ok := decodeReply(raw)
	if !ok {
		return Fallback()
	}

	return Result{
		Kind: KindParsed,
		Payload: cache.Payload{
			Sentiment:   Canonicalize(decodeString(r.Sentiment)),
			Score:       decodeScore(r.Score),
			Suggestions: decodeSuggestions(r.Suggestions),
			Summary:     strings.TrimSpace(decodeString(r.Summary)),
		},
	}
}

// decodeReply finds the first JSON object in raw that decodes as a reply.
// Decoding is attempted from each '{' in turn, so markdown fences and prose
// around the object, including prose with braces of its own, are skipped.
func decodeReply(raw string) (reply, bool) {
	for offset := 0; ; {
		i := strings.IndexByte(raw[offset:], '{')
		if i < 0 {
			return reply{}, false
		}
		start := offset + i

		var r reply
		if err := json.NewDecoder(strings.NewReader(raw[start:])).Decode(&r); err == nil {
			return r, true
		}
		offset = start + 1
	}
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeString(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// decodeScore accepts a JSON number or a numeric string, rounds it to the
// nearest integer, and clamps it to [MinScore, MaxScore].
func decodeScore(raw json.RawMessage) int {
	if isAbsent(raw) {
		return DefaultScore
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return DefaultScore
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return DefaultScore
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultScore
	}

	return ClampScore(int(math.Round(f)))
}

// ClampScore forces score into [MinScore, MaxScore].
func ClampScore(score int) int {
	return min(max(score, MinScore), MaxScore)
}

// decodeSuggestions accepts an array of strings (non-string and blank
// elements are dropped) or a single string.
func decodeSuggestions(raw json.RawMessage) []string {
	out := []string{}
	if isAbsent(raw) {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := strings.TrimSpace(decodeString(raw)); s != "" {
			out = append(out, s)
		}
		return out
	}

	for _, item := range items {
		if s := strings.TrimSpace(decodeString(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

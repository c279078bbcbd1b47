// Package analysis turns a piece of feedback text into a sentiment verdict.
//
// Service.Analyze is the orchestrator behind POST /api/analyze. For one
// admitted request it:
//
//  1. Validates the text length in characters (runes)
//  2. Looks the text up in the result cache by fingerprint
//  3. On a miss, asks the model through an Analyzer, bounded by a timeout
//  4. Parses the reply into a Result, Parsed or Fallback
//  5. Caches Parsed payloads only
//  6. Persists the record and the usage increment in one store call
//
// Any failure of the external call degrades to the fixed fallback payload
// (neutral, 5, no suggestions, summary "Error"). Such failures are never
// returned to the caller and never cached; the request still completes and
// still counts against the account's quota.
//
// Parse is lenient about the model's formatting: markdown code fences and
// prose around the JSON object are ignored, missing fields take defaults,
// numeric strings are accepted as scores, and scores are clamped to [1, 10].
// Sentiment labels are canonicalized right after parsing, so "Positivo" and
// "POSITIVE" both become "positive".
package analysis

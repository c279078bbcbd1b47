package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Standard keys follow OpenTelemetry semantic conventions;
// service-specific keys live under "feedback.".
const (
	AttrHTTPMethod = "http.method"
	AttrHTTPRoute  = "http.route"

	AttrProvider = "feedback.provider"
	AttrModel    = "feedback.model"

	AttrAccountID = "feedback.account_id"
	AttrRequestID = "feedback.request_id"

	AttrTokensPrompt     = "feedback.tokens.prompt"
	AttrTokensCompletion = "feedback.tokens.completion"

	AttrCacheHit    = "feedback.cache.hit"
	AttrFingerprint = "feedback.cache.fingerprint"

	AttrOutcome   = "feedback.analysis.outcome"
	AttrSentiment = "feedback.analysis.sentiment"
	AttrScore     = "feedback.analysis.score"
	AttrTextRunes = "feedback.analysis.text_runes"

	AttrErrorType    = "feedback.error.type"
	AttrErrorMessage = "error.message"
)

// SetHTTPAttributes sets the request method and route on a server span.
func SetHTTPAttributes(span trace.Span, method, route string) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
	)
}

// SetProviderAttributes sets provider-related attributes on a span.
//
// Example:
//
//	SetProviderAttributes(span, "openai", "gpt-3.5-turbo")
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetTokenAttributes sets token count attributes on a span.
func SetTokenAttributes(span trace.Span, promptTokens, completionTokens int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
	)
}

// SetCacheAttributes records the cache lookup of an analysis. Only a
// prefix of the fingerprint is attached.
func SetCacheAttributes(span trace.Span, hit bool, fingerprint string) {
	if len(fingerprint) > 12 {
		fingerprint = fingerprint[:12]
	}
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrFingerprint, fingerprint),
	)
}

// SetAnalysisAttributes records how an analysis ended.
func SetAnalysisAttributes(span trace.Span, outcome, sentiment string, score int) {
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.String(AttrSentiment, sentiment),
		attribute.Int(AttrScore, score),
	)
}

// SetAccountAttribute sets the account ID on a span. Credentials are never
// attached to spans.
func SetAccountAttribute(span trace.Span, accountID string) {
	if accountID != "" {
		span.SetAttributes(attribute.String(AttrAccountID, accountID))
	}
}

// SetErrorAttributes records err with its classification and marks the
// span failed.
//
// Example:
//
//	SetErrorAttributes(span, err, "timeout")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

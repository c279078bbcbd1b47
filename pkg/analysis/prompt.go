package analysis

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent as the system instruction on every call.
const SystemPrompt = "You analyze customer feedback. Reply with a single JSON object and nothing else."

const promptTemplate = `Analyze this customer feedback:
%q

Respond with valid JSON only, using exactly these fields:
{
    "sentiment": "positive" or "negative" or "neutral",
    "score": integer from 1 (very negative) to 10 (very positive),
    "suggestions": ["short actionable suggestion", "..."],
    "summary": "one short sentence"
}

Only JSON.`

// BuildPrompt returns the fixed analysis prompt for text. The text is quoted
// so that quotes or braces inside the feedback cannot be mistaken for the
// expected reply format.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(text))
}

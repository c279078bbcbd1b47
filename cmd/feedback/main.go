// Feedback is an HTTP API that analyzes customer feedback with an LLM.
//
// It classifies each piece of feedback as positive, negative or neutral,
// scores it from 1 to 10, suggests improvements, and keeps per-account
// history, quotas and rate limits.
//
// Usage:
//
//	# Start the server with ./config.yaml (if present) and the environment
//	feedback run
//
//	# Start with a custom configuration file
//	feedback run --config /etc/feedback/config.yaml
//
//	# Create an account and print its API key
//	feedback keys create --email ops@example.com --limit 1000
//
//	# Export an account's history
//	feedback export --email ops@example.com --format csv --output history.csv
//
//	# Delete records older than retention.days
//	feedback prune
package main

func main() {
	Execute()
}

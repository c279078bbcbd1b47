// Package providers contains test doubles for the LLM provider APIs.
package providers

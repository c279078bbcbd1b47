// Package types defines the JSON request, response and error bodies of the
// HTTP API.
package types

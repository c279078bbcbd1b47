// Package quota resolves API credentials to accounts and enforces the
// per-account lifetime request quota.
//
// The gate only reads. Usage is incremented later, together with the
// persisted analysis record, so a request rejected further down the
// pipeline does not consume quota.
package quota

// Package logging configures the service's structured logger.
//
// # Overview
//
// The package wraps log/slog and adds:
//   - JSON and text output
//   - A runtime-adjustable level (SetLevel), used by config hot reload
//   - request_id, account_id and trace_id taken from the context
//   - Redaction of API keys, bearer tokens, passwords and email addresses
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "analysis stored", "record_id", id)
//	// {"msg":"analysis stored","record_id":7,"request_id":"req-123"}
//
// # Redaction
//
//   - Keys containing password, token, secret, api_key or authorization:
//     value replaced by a short prefix and "***"
//   - sk_0123abcd... (account keys) and sk-... (provider keys): sk_012***
//   - user@example.com: u***@example.com
//   - Bearer abc.def: Bearer ***
package logging

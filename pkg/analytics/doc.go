// Package analytics summarizes and exports an account's analysis history.
//
// Summarize is a pure function over stored records. Labels are counted by
// case-insensitive substring ("positiv", "negativ", "neutral") rather than
// exact match, so records written before labels were canonicalized (for
// example "positivo") are still counted. A label matching none of the stems
// is counted in Total only.
//
// Exporters write the full record history as CSV or JSON for
// GET /api/analyses/export and the "feedback export" command.
package analytics

package types

import "mercator-hq/feedback/pkg/storage"

// StatusMessage is returned by GET /api/status.
const StatusMessage = "Feedback Analyzer API v1.0"

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AnalyzeResponse is the body of a successful POST /api/analyze.
type AnalyzeResponse struct {
	Success     bool     `json:"success"`
	ID          string   `json:"id"`
	Sentiment   string   `json:"sentiment"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary"`
}

// AnalyticsResponse is the body of GET /api/analytics.
type AnalyticsResponse struct {
	Total         int     `json:"total"`
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
	Neutral       int     `json:"neutral"`
	Average       float64 `json:"average"`
	RequestsUsed  int     `json:"requests_used"`
	RequestsLimit int     `json:"requests_limit"`
}

// ProfileResponse is the body of GET /api/user/profile.
type ProfileResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	APIKey        string `json:"api_key"`
	Plan          string `json:"plan"`
	RequestsUsed  int    `json:"requests_used"`
	RequestsLimit int    `json:"requests_limit"`
}

// NewProfileResponse projects an account onto the profile view.
func NewProfileResponse(a *storage.Account) ProfileResponse {
	return ProfileResponse{
		ID:            a.ID,
		Email:         a.Email,
		APIKey:        a.APIKey,
		Plan:          a.Plan,
		RequestsUsed:  a.RequestsUsed,
		RequestsLimit: a.RequestsLimit,
	}
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	Success       bool   `json:"success"`
	ID            string `json:"id"`
	Email         string `json:"email"`
	APIKey        string `json:"api_key"`
	Plan          string `json:"plan"`
	RequestsLimit int    `json:"requests_limit"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Success bool `json:"success"`
	ProfileResponse
}

package types

import (
	"time"

	"github.com/google/uuid"
)

type TextRequest struct {
	Text string `json:"text" example:"หาที่เที่ยวในเชียงใหม่"`
}

type QueryRequest struct {
	Text      string     `json:"text" example:"มีวัดสวยๆ ไหม"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
}

type ChatRequest struct {
	Text      string     `json:"text" example:"สวัสดีครับ"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
}

type CreateSessionRequest struct {
	UserID *string `json:"user_id,omitempty"`
}

type CreateSessionResponse struct {
	SessionID      uuid.UUID `json:"session_id"`
	ExpiresAt      time.Time `json:"expires_at"`
	ExpiresInHours float64   `json:"expires_in_hours"`
	Message        string    `json:"message"`
}

type PreferencesRequest struct {
	SessionID   uuid.UUID   `json:"session_id"`
	Preferences Preferences `json:"preferences"`
}

type PreferencesResponse struct {
	Success     bool        `json:"success"`
	SessionID   uuid.UUID   `json:"session_id"`
	Preferences Preferences `json:"preferences"`
}

// Response is the generic acknowledgement and error envelope.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

package lead

import (
	"encoding/json"
	"strings"
	"time"

	"caradmin/internal/pkg/pipeline"
)

// LeadInput is the body of POST /leads and PUT /leads/:id
type LeadInput struct {
	Name               string          `json:"name" validate:"required"`
	Email              string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone              string          `json:"phone,omitempty"`
	Source             Source          `json:"source,omitempty" validate:"omitempty,oneof=chat telegram phone email other"`
	Status             Status          `json:"status,omitempty" validate:"omitempty,oneof=new in_progress contacted closed lost"`
	Priority           Priority        `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	PipelineStage      pipeline.Stage  `json:"pipelineStage,omitempty"`
	HasTelegramContact bool            `json:"hasTelegramContact"`
	TelegramUsername   string          `json:"telegramUsername,omitempty"`
	ChatSessionID      string          `json:"chatSessionId,omitempty"`
	AssignedAdminID    *int64          `json:"assignedAdminId,omitempty"`
	Description        string          `json:"description,omitempty"`
	Budget             *Budget         `json:"budget,omitempty"`
	CarPreferences     json.RawMessage `json:"carPreferences,omitempty"`
	City               string          `json:"city,omitempty"`
	Region             string          `json:"region,omitempty"`
	Timeline           string          `json:"timeline,omitempty"`
	Objections         string          `json:"objections,omitempty"`
}

// Check enforces the rules validator tags cannot express.
func (in *LeadInput) Check() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.PipelineStage != "" && !pipeline.Valid(in.PipelineStage) {
		return ErrInvalidStage
	}
	return nil
}

// FromChatRequest is the body of POST /leads/from-chat/:sessionId
type FromChatRequest struct {
	AssignedAdminID *int64 `json:"assignedAdminId,omitempty"`
}

// CommentInput is the body of POST /leads/:id/comments
type CommentInput struct {
	AdminID int64  `json:"adminId"`
	Comment string `json:"comment" validate:"required"`
}

// TagInput is the body of POST /leads/tags
type TagInput struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty"`
}

// MeetingInput is the body of POST /leads/:id/meetings
type MeetingInput struct {
	AdminID     int64       `json:"adminId"`
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description,omitempty"`
	MeetingDate time.Time   `json:"meetingDate" validate:"required"`
	Location    string      `json:"location,omitempty"`
	MeetingType MeetingType `json:"meetingType,omitempty" validate:"omitempty,oneof=call email meeting visit other"`
}

// MeetingUpdate is the body of PUT /leads/meetings/:id
type MeetingUpdate struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	MeetingDate *time.Time   `json:"meetingDate,omitempty"`
	Location    *string      `json:"location,omitempty"`
	MeetingType *MeetingType `json:"meetingType,omitempty" validate:"omitempty,oneof=call email meeting visit other"`
	Completed   *bool        `json:"completed,omitempty"`
}

// ScoreResult is returned by POST /leads/:id/calculate-score
type ScoreResult struct {
	Score int    `json:"score"`
	Class string `json:"class"`
}

// UnprocessedCount is returned by GET /leads/stats/unprocessed-count
type UnprocessedCount struct {
	Count int `json:"count"`
}

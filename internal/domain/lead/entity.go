package lead

import (
	"encoding/json"
	"time"

	"caradmin/internal/pkg/pipeline"
)

// Status represents lead status
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusContacted  Status = "contacted"
	StatusClosed     Status = "closed"
	StatusLost       Status = "lost"
)

// Priority represents lead priority
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Source is where the lead came from
type Source string

const (
	SourceChat     Source = "chat"
	SourceTelegram Source = "telegram"
	SourcePhone    Source = "phone"
	SourceEmail    Source = "email"
	SourceOther    Source = "other"
)

// Person is the short admin reference embedded in lead records
type Person struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Budget is the price range a client is ready to pay
type Budget struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Lead is a sales prospect
type Lead struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Source             Source          `json:"source"`
	Status             Status          `json:"status"`
	Priority           Priority        `json:"priority"`
	PipelineStage      pipeline.Stage  `json:"pipelineStage,omitempty"`
	HasTelegramContact bool            `json:"hasTelegramContact"`
	TelegramUsername   string          `json:"telegramUsername,omitempty"`
	ChatSessionID      string          `json:"chatSessionId,omitempty"`
	AssignedAdminID    *int64          `json:"assignedAdminId,omitempty"`
	AssignedAdmin      *Person         `json:"assignedAdmin,omitempty"`
	ProjectID          string          `json:"projectId,omitempty"`
	Description        string          `json:"description,omitempty"`
	Comments           []Comment       `json:"comments,omitempty"`
	Tags               []Tag           `json:"tags,omitempty"`
	Score              *int            `json:"score,omitempty"`
	ConvertedToClient  bool            `json:"convertedToClient"`
	Budget             *Budget         `json:"budget,omitempty"`
	CarPreferences     json.RawMessage `json:"carPreferences,omitempty"`
	City               string          `json:"city,omitempty"`
	Region             string          `json:"region,omitempty"`
	Timeline           string          `json:"timeline,omitempty"`
	Objections         string          `json:"objections,omitempty"`
	ShownCars          []int64         `json:"shownCars,omitempty"`
	ContactAttempts    int             `json:"contactAttempts,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// IsUnassigned is true when nobody owns the lead yet
func (l *Lead) IsUnassigned() bool {
	return l.AssignedAdminID == nil || *l.AssignedAdminID == 0
}

// Stage returns the pipeline stage, defaulting to new_lead.
func (l *Lead) Stage() pipeline.Stage {
	if l.PipelineStage == "" {
		return pipeline.NewLead
	}
	return l.PipelineStage
}

// Comment is an admin note on a lead
type Comment struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"leadId,omitempty"`
	AdminID   int64     `json:"adminId,omitempty"`
	Admin     *Person   `json:"admin,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultTagColor is used when a tag is created without a color
const DefaultTagColor = "#4f8cff"

// Tag labels leads
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Attachment is a file uploaded to a lead
type Attachment struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	FileSize    int64     `json:"fileSize,omitempty"`
	Description string    `json:"description,omitempty"`
	Admin       *Person   `json:"admin,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MeetingType is the kind of planned contact
type MeetingType string

const (
	MeetingCall    MeetingType = "call"
	MeetingEmail   MeetingType = "email"
	MeetingInPlace MeetingType = "meeting"
	MeetingVisit   MeetingType = "visit"
	MeetingOther   MeetingType = "other"
)

// Meeting is a planned call, visit or meeting with the client
type Meeting struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	MeetingDate time.Time   `json:"meetingDate"`
	Location    string      `json:"location,omitempty"`
	MeetingType MeetingType `json:"meetingType"`
	Completed   bool        `json:"completed"`
	Admin       *Person     `json:"admin,omitempty"`
}

// ActivityType classifies entries of the lead history
type ActivityType string

const (
	ActivityCreated         ActivityType = "created"
	ActivityUpdated         ActivityType = "updated"
	ActivityCommented       ActivityType = "commented"
	ActivityAssigned        ActivityType = "assigned"
	ActivityConverted       ActivityType = "converted"
	ActivityTaskCreated     ActivityType = "task_created"
	ActivityTaskCompleted   ActivityType = "task_completed"
	ActivityMeetingCreated  ActivityType = "meeting_created"
	ActivityAttachmentAdded ActivityType = "attachment_added"
)

// Activity is one entry of the lead history
type Activity struct {
	ID           int64        `json:"id"`
	ActivityType ActivityType `json:"activityType"`
	Description  string       `json:"description,omitempty"`
	Admin        *Person      `json:"admin,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Filter is the query of GET /leads
type Filter struct {
	Status          string `form:"status"`
	Source          string `form:"source"`
	AssignedAdminID int64  `form:"assignedAdminId"`
	Search          string `form:"search"`
}

// StatsSummary is returned by GET /leads/stats/summary
type StatsSummary struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus,omitempty"`
	BySource   map[string]int `json:"bySource,omitempty"`
	Unassigned int            `json:"unassigned,omitempty"`
}

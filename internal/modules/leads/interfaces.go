package leads

import (
	"context"

	"caradmin/internal/backend"
	"caradmin/internal/domain/lead"
)

// Upstream is the part of the backend client the lead screens use
type Upstream interface {
	ListLeads(ctx context.Context, f lead.Filter) ([]lead.Lead, error)
	GetLead(ctx context.Context, id int64) (*lead.Lead, error)
	CreateLead(ctx context.Context, in lead.LeadInput) (*lead.Lead, error)
	CreateLeadFromChat(ctx context.Context, sessionID string, req lead.FromChatRequest) (*lead.Lead, error)
	UpdateLead(ctx context.Context, id int64, in lead.LeadInput) (*lead.Lead, error)
	PatchLead(ctx context.Context, id int64, fields map[string]any) (*lead.Lead, error)
	DeleteLead(ctx context.Context, id int64) error

	LeadComments(ctx context.Context, leadID int64) ([]lead.Comment, error)
	CreateLeadComment(ctx context.Context, leadID int64, in lead.CommentInput) (*lead.Comment, error)
	DeleteLeadComment(ctx context.Context, commentID int64) error

	LeadStats(ctx context.Context) (*lead.StatsSummary, error)
	UnprocessedLeads(ctx context.Context) (*lead.UnprocessedCount, error)
	LeadActivities(ctx context.Context, leadID int64) ([]lead.Activity, error)

	LeadTasks(ctx context.Context, leadID int64) ([]lead.Task, error)
	CreateLeadTask(ctx context.Context, leadID int64, in lead.TaskInput) (*lead.Task, error)

	AllTags(ctx context.Context) ([]lead.Tag, error)
	CreateTag(ctx context.Context, in lead.TagInput) (*lead.Tag, error)
	AddLeadTag(ctx context.Context, leadID, tagID int64) error
	RemoveLeadTag(ctx context.Context, leadID, tagID int64) error

	LeadAttachments(ctx context.Context, leadID int64) ([]lead.Attachment, error)
	CreateLeadAttachment(ctx context.Context, leadID int64, file backend.Upload, description string) (*lead.Attachment, error)
	DeleteLeadAttachment(ctx context.Context, attachmentID int64) error

	LeadMeetings(ctx context.Context, leadID int64) ([]lead.Meeting, error)
	CreateLeadMeeting(ctx context.Context, leadID int64, in lead.MeetingInput) (*lead.Meeting, error)
	UpdateLeadMeeting(ctx context.Context, meetingID int64, in lead.MeetingUpdate) (*lead.Meeting, error)
	DeleteLeadMeeting(ctx context.Context, meetingID int64) error

	CalculateLeadScore(ctx context.Context, leadID int64) (*lead.ScoreResult, error)
	ConvertLeadToClient(ctx context.Context, leadID int64) (*lead.Lead, error)
}

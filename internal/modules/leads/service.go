package leads

import (
	"context"
	"strings"

	"caradmin/internal/backend"
	"caradmin/internal/domain/lead"
	"caradmin/internal/pkg/fileurl"
	"caradmin/internal/pkg/pipeline"
)

type Service struct {
	apiURL string
}

func NewService(apiURL string) *Service {
	return &Service{apiURL: apiURL}
}

func views(list []lead.Lead) []LeadView {
	out := make([]LeadView, 0, len(list))
	for _, l := range list {
		out = append(out, newLeadView(l))
	}
	return out
}

func (s *Service) List(ctx context.Context, api Upstream, f lead.Filter) ([]LeadView, error) {
	f.Search = strings.TrimSpace(f.Search)
	list, err := api.ListLeads(ctx, f)
	if err != nil {
		return nil, err
	}
	return views(list), nil
}

func (s *Service) Get(ctx context.Context, api Upstream, id int64) (*LeadView, error) {
	l, err := api.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	v := newLeadView(*l)
	return &v, nil
}

func (s *Service) Create(ctx context.Context, api Upstream, in lead.LeadInput) (*LeadView, error) {
	if err := in.Check(); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = lead.StatusNew
	}
	if in.Priority == "" {
		in.Priority = lead.PriorityNormal
	}
	if in.Source == "" {
		in.Source = lead.SourceOther
	}
	l, err := api.CreateLead(ctx, in)
	if err != nil {
		return nil, err
	}
	v := newLeadView(*l)
	return &v, nil
}

// CreateFromChat turns a chat session into a lead.
func (s *Service) CreateFromChat(ctx context.Context, api Upstream, sessionID string, req lead.FromChatRequest) (*LeadView, error) {
	l, err := api.CreateLeadFromChat(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}
	v := newLeadView(*l)
	return &v, nil
}

func (s *Service) Update(ctx context.Context, api Upstream, id int64, in lead.LeadInput) (*LeadView, error) {
	if err := in.Check(); err != nil {
		return nil, err
	}
	l, err := api.UpdateLead(ctx, id, in)
	if err != nil {
		return nil, err
	}
	v := newLeadView(*l)
	return &v, nil
}

func (s *Service) patch(ctx context.Context, api Upstream, id int64, fields map[string]any) (*LeadView, error) {
	l, err := api.PatchLead(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	v := newLeadView(*l)
	return &v, nil
}

// MoveStage puts the lead on another funnel stage.
func (s *Service) MoveStage(ctx context.Context, api Upstream, id int64, stage pipeline.Stage) (*LeadView, error) {
	if !pipeline.Valid(stage) {
		return nil, lead.ErrInvalidStage
	}
	return s.patch(ctx, api, id, map[string]any{"pipelineStage": stage})
}

// Assign sets or clears the responsible admin.
func (s *Service) Assign(ctx context.Context, api Upstream, id int64, adminID *int64) (*LeadView, error) {
	return s.patch(ctx, api, id, map[string]any{"assignedAdminId": adminID})
}

func (s *Service) SetStatus(ctx context.Context, api Upstream, id int64, status lead.Status) (*LeadView, error) {
	return s.patch(ctx, api, id, map[string]any{"status": status})
}

func (s *Service) Delete(ctx context.Context, api Upstream, id int64) error {
	return api.DeleteLead(ctx, id)
}

// Pipeline builds the funnel card: the stage view plus the tasks that are
// relevant for the current and the next stage.
func (s *Service) Pipeline(ctx context.Context, api Upstream, id int64) (*PipelineResponse, error) {
	l, err := api.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := api.LeadTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	current := l.Stage()
	next, _ := pipeline.NextStage(current)
	relevant := pipeline.FilterTasks(tasks, current)
	if relevant == nil {
		relevant = []lead.Task{}
	}
	return &PipelineResponse{
		View:      pipeline.Build(current),
		LeadID:    l.ID,
		NextStage: next,
		Tasks:     relevant,
		ByStage:   pipeline.GroupTasks(tasks),
	}, nil
}

// Stats returns the summary and the number of leads nobody picked up.
func (s *Service) Stats(ctx context.Context, api Upstream) (*Stats, error) {
	sum, err := api.LeadStats(ctx)
	if err != nil {
		return nil, err
	}
	unprocessed, err := api.UnprocessedLeads(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{StatsSummary: *sum, Unprocessed: unprocessed.Count}, nil
}

func (s *Service) Comments(ctx context.Context, api Upstream, leadID int64) ([]lead.Comment, error) {
	out, err := api.LeadComments(ctx, leadID)
	if out == nil {
		out = []lead.Comment{}
	}
	return out, err
}

func (s *Service) AddComment(ctx context.Context, api Upstream, leadID, adminID int64, text string) (*lead.Comment, error) {
	return api.CreateLeadComment(ctx, leadID, lead.CommentInput{AdminID: adminID, Comment: strings.TrimSpace(text)})
}

func (s *Service) DeleteComment(ctx context.Context, api Upstream, commentID int64) error {
	return api.DeleteLeadComment(ctx, commentID)
}

func (s *Service) Activities(ctx context.Context, api Upstream, leadID int64) ([]lead.Activity, error) {
	out, err := api.LeadActivities(ctx, leadID)
	if out == nil {
		out = []lead.Activity{}
	}
	return out, err
}

func (s *Service) Tasks(ctx context.Context, api Upstream, leadID int64) ([]lead.Task, error) {
	out, err := api.LeadTasks(ctx, leadID)
	if out == nil {
		out = []lead.Task{}
	}
	return out, err
}

// CreateTask adds a task. The caller becomes the assignee when none is given.
func (s *Service) CreateTask(ctx context.Context, api Upstream, leadID, adminID int64, in lead.TaskInput) (*lead.Task, error) {
	if in.AdminID == 0 {
		in.AdminID = adminID
	}
	if in.Status == "" {
		in.Status = lead.TaskPending
	}
	return api.CreateLeadTask(ctx, leadID, in)
}

func (s *Service) Tags(ctx context.Context, api Upstream) ([]lead.Tag, error) {
	out, err := api.AllTags(ctx)
	if out == nil {
		out = []lead.Tag{}
	}
	return out, err
}

func (s *Service) CreateTag(ctx context.Context, api Upstream, in lead.TagInput) (*lead.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Color == "" {
		in.Color = lead.DefaultTagColor
	}
	return api.CreateTag(ctx, in)
}

func (s *Service) AddTag(ctx context.Context, api Upstream, leadID, tagID int64) error {
	return api.AddLeadTag(ctx, leadID, tagID)
}

func (s *Service) RemoveTag(ctx context.Context, api Upstream, leadID, tagID int64) error {
	return api.RemoveLeadTag(ctx, leadID, tagID)
}

func (s *Service) attachmentView(a lead.Attachment) AttachmentView {
	return AttachmentView{
		Attachment: a,
		SizeLabel:  lead.FormatFileSize(a.FileSize),
		URL:        fileurl.Resolve(s.apiURL, a.FilePath),
	}
}

func (s *Service) Attachments(ctx context.Context, api Upstream, leadID int64) ([]AttachmentView, error) {
	list, err := api.LeadAttachments(ctx, leadID)
	if err != nil {
		return nil, err
	}
	out := make([]AttachmentView, 0, len(list))
	for _, a := range list {
		out = append(out, s.attachmentView(a))
	}
	return out, nil
}

func (s *Service) AddAttachment(ctx context.Context, api Upstream, leadID int64, file backend.Upload, description string) (*AttachmentView, error) {
	a, err := api.CreateLeadAttachment(ctx, leadID, file, strings.TrimSpace(description))
	if err != nil {
		return nil, err
	}
	v := s.attachmentView(*a)
	return &v, nil
}

func (s *Service) DeleteAttachment(ctx context.Context, api Upstream, attachmentID int64) error {
	return api.DeleteLeadAttachment(ctx, attachmentID)
}

func (s *Service) Meetings(ctx context.Context, api Upstream, leadID int64) ([]lead.Meeting, error) {
	out, err := api.LeadMeetings(ctx, leadID)
	if out == nil {
		out = []lead.Meeting{}
	}
	return out, err
}

func (s *Service) CreateMeeting(ctx context.Context, api Upstream, leadID, adminID int64, in lead.MeetingInput) (*lead.Meeting, error) {
	if in.AdminID == 0 {
		in.AdminID = adminID
	}
	if in.MeetingType == "" {
		in.MeetingType = lead.MeetingCall
	}
	return api.CreateLeadMeeting(ctx, leadID, in)
}

func (s *Service) UpdateMeeting(ctx context.Context, api Upstream, meetingID int64, in lead.MeetingUpdate) (*lead.Meeting, error) {
	return api.UpdateLeadMeeting(ctx, meetingID, in)
}

func (s *Service) DeleteMeeting(ctx context.Context, api Upstream, meetingID int64) error {
	return api.DeleteLeadMeeting(ctx, meetingID)
}

func (s *Service) Score(ctx context.Context, api Upstream, leadID int64) (*lead.ScoreResult, error) {
	return api.CalculateLeadScore(ctx, leadID)
}

// Convert marks the lead as a client. Converting twice is rejected.
func (s *Service) Convert(ctx context.Context, api Upstream, leadID int64) (*LeadView, error) {
	l, err := api.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if l.ConvertedToClient {
		return nil, lead.ErrAlreadyConverted
	}
	converted, err := api.ConvertLeadToClient(ctx, leadID)
	if err != nil {
		return nil, err
	}
	v := newLeadView(*converted)
	return &v, nil
}

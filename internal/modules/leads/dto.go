package leads

import (
	"caradmin/internal/domain/lead"
	"caradmin/internal/pkg/pipeline"
)

// LeadView is a lead with the labels the console shows next to it
type LeadView struct {
	lead.Lead
	StatusLabel   string `json:"statusLabel"`
	PriorityLabel string `json:"priorityLabel"`
	SourceLabel   string `json:"sourceLabel"`
	ScoreClass    string `json:"scoreClass,omitempty"`
	StageName     string `json:"stageName"`
	Progress      int    `json:"progress"`
}

func newLeadView(l lead.Lead) LeadView {
	v := LeadView{
		Lead:          l,
		StatusLabel:   l.Status.Label(),
		PriorityLabel: l.Priority.Label(),
		SourceLabel:   l.Source.Label(),
		StageName:     pipeline.StageName(l.Stage()),
		Progress:      pipeline.Progress(l.Stage()),
	}
	if l.Score != nil {
		v.ScoreClass = lead.ScoreClass(*l.Score)
	}
	return v
}

// AttachmentView adds the readable size and the download URL
type AttachmentView struct {
	lead.Attachment
	SizeLabel string `json:"sizeLabel"`
	URL       string `json:"url"`
}

// PipelineResponse is the funnel card of a lead
type PipelineResponse struct {
	pipeline.View
	LeadID    int64                          `json:"leadId"`
	NextStage pipeline.Stage                 `json:"nextStage,omitempty"`
	Tasks     []lead.Task                    `json:"tasks"`
	ByStage   map[pipeline.Stage][]lead.Task `json:"byStage"`
}

// StageRequest is the body of PUT /leads/:id/stage
type StageRequest struct {
	Stage pipeline.Stage `json:"stage" validate:"required"`
}

// AssignRequest is the body of PUT /leads/:id/assign. Null unassigns.
type AssignRequest struct {
	AdminID *int64 `json:"adminId"`
}

// StatusRequest is the body of PUT /leads/:id/status
type StatusRequest struct {
	Status lead.Status `json:"status" validate:"required,oneof=new in_progress contacted closed lost"`
}

// Stats combines the backend summary with the unprocessed counter
type Stats struct {
	lead.StatsSummary
	Unprocessed int `json:"unprocessed"`
}

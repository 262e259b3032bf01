package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"caradmin/internal/domain/lead"
)

func (c *Client) ListLeads(ctx context.Context, f lead.Filter) ([]lead.Lead, error) {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Source != "" {
		v.Set("source", f.Source)
	}
	if f.AssignedAdminID != 0 {
		v.Set("assignedAdminId", itoa(f.AssignedAdminID))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	var out []lead.Lead
	err := c.getJSON(ctx, "/leads", v, &out)
	return out, err
}

func (c *Client) GetLead(ctx context.Context, id int64) (*lead.Lead, error) {
	var out lead.Lead
	if err := c.getJSON(ctx, "/leads/"+itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLead(ctx context.Context, in lead.LeadInput) (*lead.Lead, error) {
	var out lead.Lead
	if err := c.sendJSON(ctx, http.MethodPost, "/leads", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLeadFromChat(ctx context.Context, sessionID string, req lead.FromChatRequest) (*lead.Lead, error) {
	var out lead.Lead
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/from-chat/"+url.PathEscape(sessionID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLead(ctx context.Context, id int64, in lead.LeadInput) (*lead.Lead, error) {
	var out lead.Lead
	if err := c.sendJSON(ctx, http.MethodPut, "/leads/"+itoa(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchLead sends a partial update, used for stage moves and assignment.
func (c *Client) PatchLead(ctx context.Context, id int64, fields map[string]any) (*lead.Lead, error) {
	var out lead.Lead
	if err := c.sendJSON(ctx, http.MethodPut, "/leads/"+itoa(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLead(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/leads/"+itoa(id), nil, nil)
}

/* ==================== COMMENTS ==================== */

func (c *Client) LeadComments(ctx context.Context, leadID int64) ([]lead.Comment, error) {
	var out []lead.Comment
	err := c.getJSON(ctx, "/leads/"+itoa(leadID)+"/comments", nil, &out)
	return out, err
}

func (c *Client) CreateLeadComment(ctx context.Context, leadID int64, in lead.CommentInput) (*lead.Comment, error) {
	var out lead.Comment
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/"+itoa(leadID)+"/comments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLeadComment(ctx context.Context, commentID int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/leads/comments/"+itoa(commentID), nil, nil)
}

/* ==================== STATS ==================== */

func (c *Client) LeadStats(ctx context.Context) (*lead.StatsSummary, error) {
	var out lead.StatsSummary
	if err := c.getJSON(ctx, "/leads/stats/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UnprocessedLeads(ctx context.Context) (*lead.UnprocessedCount, error) {
	var out lead.UnprocessedCount
	if err := c.getJSON(ctx, "/leads/stats/unprocessed-count", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LeadActivities(ctx context.Context, leadID int64) ([]lead.Activity, error) {
	var out []lead.Activity
	err := c.getJSON(ctx, "/leads/"+itoa(leadID)+"/activities", nil, &out)
	return out, err
}

/* ==================== TASKS ==================== */

// MyTasks lists the caller's tasks. A nil completed flag is not sent.
func (c *Client) MyTasks(ctx context.Context, status string, completed *bool) ([]lead.Task, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	if completed != nil {
		v.Set("completed", strconv.FormatBool(*completed))
	}
	var out []lead.Task
	err := c.getJSON(ctx, "/leads/tasks/my", v, &out)
	return out, err
}

func (c *Client) LeadTasks(ctx context.Context, leadID int64) ([]lead.Task, error) {
	var out []lead.Task
	err := c.getJSON(ctx, "/leads/"+itoa(leadID)+"/tasks", nil, &out)
	return out, err
}

func (c *Client) CreateLeadTask(ctx context.Context, leadID int64, in lead.TaskInput) (*lead.Task, error) {
	var out lead.Task
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/"+itoa(leadID)+"/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLeadTask(ctx context.Context, taskID int64, in lead.TaskUpdate) (*lead.Task, error) {
	var out lead.Task
	if err := c.sendJSON(ctx, http.MethodPut, "/leads/tasks/"+itoa(taskID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLeadTask(ctx context.Context, taskID int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/leads/tasks/"+itoa(taskID), nil, nil)
}

/* ==================== TAGS ==================== */

func (c *Client) AllTags(ctx context.Context) ([]lead.Tag, error) {
	var out []lead.Tag
	err := c.getJSON(ctx, "/leads/tags/all", nil, &out)
	return out, err
}

func (c *Client) CreateTag(ctx context.Context, in lead.TagInput) (*lead.Tag, error) {
	var out lead.Tag
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/tags", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddLeadTag(ctx context.Context, leadID, tagID int64) error {
	return c.sendJSON(ctx, http.MethodPost, "/leads/"+itoa(leadID)+"/tags/"+itoa(tagID), struct{}{}, nil)
}

func (c *Client) RemoveLeadTag(ctx context.Context, leadID, tagID int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/leads/"+itoa(leadID)+"/tags/"+itoa(tagID), nil, nil)
}

/* ==================== ATTACHMENTS ==================== */

func (c *Client) LeadAttachments(ctx context.Context, leadID int64) ([]lead.Attachment, error) {
	var out []lead.Attachment
	err := c.getJSON(ctx, "/leads/"+itoa(leadID)+"/attachments", nil, &out)
	return out, err
}

// CreateLeadAttachment uploads one file as the multipart "file" part, with
// an optional "description" field.
func (c *Client) CreateLeadAttachment(ctx context.Context, leadID int64, file Upload, description string) (*lead.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("multipart %s: %w", file.Name, err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, fmt.Errorf("multipart %s: %w", file.Name, err)
	}
	if description != "" {
		if err := mw.WriteField("description", description); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out lead.Attachment
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/leads/" + itoa(leadID) + "/attachments",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLeadAttachment(ctx context.Context, attachmentID int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/leads/attachments/"+itoa(attachmentID), nil, nil)
}

/* ==================== MEETINGS ==================== */

func (c *Client) LeadMeetings(ctx context.Context, leadID int64) ([]lead.Meeting, error) {
	var out []lead.Meeting
	err := c.getJSON(ctx, "/leads/"+itoa(leadID)+"/meetings", nil, &out)
	return out, err
}

func (c *Client) CreateLeadMeeting(ctx context.Context, leadID int64, in lead.MeetingInput) (*lead.Meeting, error) {
	var out lead.Meeting
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/"+itoa(leadID)+"/meetings", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLeadMeeting(ctx context.Context, meetingID int64, in lead.MeetingUpdate) (*lead.Meeting, error) {
	var out lead.Meeting
	if err := c.sendJSON(ctx, http.MethodPut, "/leads/meetings/"+itoa(meetingID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLeadMeeting(ctx context.Context, meetingID int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/leads/meetings/"+itoa(meetingID), nil, nil)
}

/* ==================== SCORING ==================== */

func (c *Client) CalculateLeadScore(ctx context.Context, leadID int64) (*lead.ScoreResult, error) {
	var out lead.ScoreResult
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/"+itoa(leadID)+"/calculate-score", struct{}{}, &out); err != nil {
		return nil, err
	}
	out.Class = lead.ScoreClass(out.Score)
	return &out, nil
}

func (c *Client) ConvertLeadToClient(ctx context.Context, leadID int64) (*lead.Lead, error) {
	var out lead.Lead
	if err := c.sendJSON(ctx, http.MethodPost, "/leads/"+itoa(leadID)+"/convert-to-client", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

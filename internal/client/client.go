// Package client talks to a running coursegate server. Its Client satisfies
// scorm.Store, so a bridge session can persist to a remote server instead of
// the local database.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/contract"
	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/httpapi/middleware"
	"github.com/alexanderramin/coursegate/internal/httpapi/response"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("coursegate api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("coursegate api: status %d: %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

type dataReply[T any] struct {
	Success bool `json:"success"`
	Data    *T   `json:"data"`
}

func (c *Client) request(ctx context.Context, id contract.Identity) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader(middleware.HeaderUserID, id.UserID).
		SetHeader(middleware.HeaderClientID, id.ClientID).
		SetError(&response.ErrorEnvelope{})
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode(), Message: resp.String()}
	if env, ok := resp.Error().(*response.ErrorEnvelope); ok && env.Error.Message != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

func identityOf(t scorm.Target) contract.Identity {
	return contract.Identity{UserID: t.UserID, ClientID: t.ClientID}
}

func (c *Client) ResumeData(ctx context.Context, req contract.ContentRequest) (*contract.ResumeData, error) {
	var out dataReply[contract.ResumeData]
	resp, err := c.request(ctx, req.Identity).
		SetQueryParams(map[string]string{"courseId": req.CourseID, "contentId": req.ContentID}).
		SetResult(&out).
		Get("/api/progress/resume-data")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("fetching resume data: %w", err)
	}
	return out.Data, nil
}

func (c *Client) CheckProgress(ctx context.Context, req contract.ContentRequest) (*contract.CheckProgressResponse, error) {
	var out dataReply[contract.CheckProgressResponse]
	resp, err := c.request(ctx, req.Identity).
		SetBody(map[string]string{"courseId": req.CourseID, "contentId": req.ContentID}).
		SetResult(&out).
		Post("/api/progress/check-progress")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("checking progress: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("checking progress: empty reply")
	}
	return out.Data, nil
}

func (c *Client) Update(ctx context.Context, req contract.UpdateProgressRequest) error {
	body := map[string]any{
		"courseId":           req.CourseID,
		"contentId":          req.ContentID,
		"contentType":        req.ContentType,
		"serializedProgress": req.SerializedProgress,
	}
	if req.PrerequisiteID != "" {
		body["prerequisiteId"] = req.PrerequisiteID
	}
	if req.PackageID != "" {
		body["packageId"] = req.PackageID
	}
	if req.At != nil {
		body["at"] = req.At
	}
	resp, err := c.request(ctx, req.Identity).SetBody(body).Post("/api/progress/update")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	return nil
}

func (c *Client) MarkComplete(ctx context.Context, req contract.MarkCompleteRequest) error {
	resp, err := c.request(ctx, req.Identity).
		SetBody(map[string]any{
			"courseId":     req.CourseID,
			"contentId":    req.ContentID,
			"moduleId":     req.ModuleID,
			"contentType":  req.ContentType,
			"lessonStatus": req.LessonStatus,
			"packageId":    req.PackageID,
		}).
		Post("/api/progress/mark-complete")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("marking complete: %w", err)
	}
	return nil
}

// CourseProgress fetches the rolled-up course report for the learner.
func (c *Client) CourseProgress(ctx context.Context, req contract.CourseRequest) (*contract.CourseReport, error) {
	var out dataReply[contract.CourseReport]
	resp, err := c.request(ctx, req.Identity).
		SetPathParam("courseId", req.CourseID).
		SetResult(&out).
		Get("/api/courses/{courseId}/progress")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("fetching course progress: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("fetching course progress: empty reply")
	}
	return out.Data, nil
}

func (c *Client) Gate(ctx context.Context, req contract.CourseRequest) (*contract.GateResponse, error) {
	var out dataReply[contract.GateResponse]
	resp, err := c.request(ctx, req.Identity).
		SetPathParam("courseId", req.CourseID).
		SetResult(&out).
		Get("/api/courses/{courseId}/gate")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("fetching gate decision: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("fetching gate decision: empty reply")
	}
	return out.Data, nil
}

// Load rebuilds a snapshot from the resume-data and check-progress
// endpoints. It returns nil when the server knows nothing of the content.
func (c *Client) Load(ctx context.Context, t scorm.Target) (*scorm.Snapshot, error) {
	req := contract.ContentRequest{Identity: identityOf(t), CourseID: t.CourseID, ContentID: t.ContentID}
	resume, err := c.ResumeData(ctx, req)
	if err != nil {
		return nil, err
	}
	status, err := c.CheckProgress(ctx, req)
	if err != nil {
		return nil, err
	}
	if resume == nil && !status.Completed && status.Percentage == 0 {
		return nil, nil
	}

	snap := &scorm.Snapshot{
		Percentage: status.Percentage,
		Completed:  status.Completed,
	}
	if resume != nil {
		snap.Location = resume.Location
		snap.SuspendData = resume.SuspendData
		snap.SessionTime = resume.SessionTime
		snap.TotalTime = resume.SessionTime
	}
	return snap, nil
}

func (c *Client) Save(ctx context.Context, t scorm.Target, snap scorm.Snapshot) error {
	req := contract.UpdateProgressRequest{
		Identity:           identityOf(t),
		CourseID:           t.CourseID,
		ContentID:          t.ContentID,
		ContentType:        domain.ContentScorm,
		SerializedProgress: snap.Encode(),
		PackageID:          t.PackageID,
	}
	if !snap.UpdatedAt.IsZero() {
		at := snap.UpdatedAt
		req.At = &at
	}
	return c.Update(ctx, req)
}

func (c *Client) Complete(ctx context.Context, t scorm.Target) error {
	req := contract.NewMarkCompleteRequest()
	req.Identity = identityOf(t)
	req.CourseID = t.CourseID
	req.ContentID = t.ContentID
	req.ModuleID = t.ModuleID
	req.PackageID = t.PackageID
	return c.MarkComplete(ctx, req)
}

var _ scorm.Store = (*Client)(nil)

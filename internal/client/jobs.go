package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"lecture-sync/pkg/models"
)

// CreateJobRequest porte les champs du formulaire multipart de POST /lectures/upload.
// Title et Description ne sont transmis que s'ils sont non vides.
type CreateJobRequest struct {
	FileName    string
	ContentType string
	File        io.Reader
	FolderID    string
	Title       string
	Description string
}

func (c *Client) ListJobs(ctx context.Context, folderID string) ([]models.Job, error) {
	var query url.Values
	if folderID != "" {
		query = url.Values{"folder_id": {folderID}}
	}

	var jobs []models.Job
	err := c.do(ctx, request{
		op:     "ListJobs",
		method: http.MethodGet,
		path:   "/lectures",
		query:  query,
	}, &jobs)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (c *Client) GetJob(ctx context.Context, id models.JobID) (*models.Job, error) {
	var job models.Job
	err := c.do(ctx, request{
		op:       "GetJob",
		method:   http.MethodGet,
		path:     "/lectures/" + url.PathEscape(id.String()),
		resource: "job",
		id:       id.String(),
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) CreateJob(ctx context.Context, req *CreateJobRequest) (*models.Job, error) {
	if req == nil || req.File == nil {
		return nil, fmt.Errorf("CreateJob: file is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}

	if err := writer.WriteField("folder_id", req.FolderID); err != nil {
		return nil, fmt.Errorf("failed to write folder_id: %w", err)
	}
	if req.Title != "" {
		if err := writer.WriteField("title", req.Title); err != nil {
			return nil, fmt.Errorf("failed to write title: %w", err)
		}
	}
	if req.Description != "" {
		if err := writer.WriteField("description", req.Description); err != nil {
			return nil, fmt.Errorf("failed to write description: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var job models.Job
	err = c.do(ctx, request{
		op:          "CreateJob",
		method:      http.MethodPost,
		path:        "/lectures/upload",
		body:        &body,
		contentType: writer.FormDataContentType(),
		resource:    "folder",
		id:          req.FolderID,
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) DeleteJob(ctx context.Context, id models.JobID) error {
	return c.do(ctx, request{
		op:       "DeleteJob",
		method:   http.MethodDelete,
		path:     "/lectures/" + url.PathEscape(id.String()),
		resource: "job",
		id:       id.String(),
	}, nil)
}

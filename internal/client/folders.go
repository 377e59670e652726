package client

import (
	"context"
	"net/http"
	"net/url"

	"lecture-sync/pkg/models"
)

func (c *Client) ListFolders(ctx context.Context) ([]models.Folder, error) {
	var folders []models.Folder
	if err := c.do(ctx, request{op: "ListFolders", method: http.MethodGet, path: "/folders"}, &folders); err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

func (c *Client) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	var folder models.Folder
	err := c.do(ctx, request{
		op:       "GetFolder",
		method:   http.MethodGet,
		path:     "/folders/" + url.PathEscape(id),
		resource: "folder",
		id:       id,
	}, &folder)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *Client) CreateFolder(ctx context.Context, name string, description *string) (*models.Folder, error) {
	body, err := jsonBody(models.FolderCreate{Name: name, Description: description})
	if err != nil {
		return nil, err
	}

	var folder models.Folder
	err = c.do(ctx, request{
		op:          "CreateFolder",
		method:      http.MethodPost,
		path:        "/folders",
		body:        body,
		contentType: "application/json",
	}, &folder)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *Client) UpdateFolder(ctx context.Context, id string, update models.FolderUpdate) (*models.Folder, error) {
	body, err := jsonBody(update)
	if err != nil {
		return nil, err
	}

	var folder models.Folder
	err = c.do(ctx, request{
		op:          "UpdateFolder",
		method:      http.MethodPut,
		path:        "/folders/" + url.PathEscape(id),
		body:        body,
		contentType: "application/json",
		resource:    "folder",
		id:          id,
	}, &folder)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:       "DeleteFolder",
		method:   http.MethodDelete,
		path:     "/folders/" + url.PathEscape(id),
		resource: "folder",
		id:       id,
	}, nil)
}

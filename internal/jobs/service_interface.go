package jobs

import (
	"context"

	"lecture-sync/internal/client"
	"lecture-sync/pkg/models"
)

type JobService interface {
	ListJobs(ctx context.Context, folderID string) ([]models.Job, error)
	GetJob(ctx context.Context, id models.JobID) (*models.Job, error)
	CreateJob(ctx context.Context, req *client.CreateJobRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, id models.JobID) error
	// CachedJob retourne le dernier snapshot connu, sans appel réseau
	CachedJob(ctx context.Context, id models.JobID) (*models.Job, bool)
}

type FolderService interface {
	ListFolders(ctx context.Context) ([]models.Folder, error)
	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	CreateFolder(ctx context.Context, name string, description *string) (*models.Folder, error)
	UpdateFolder(ctx context.Context, id string, update models.FolderUpdate) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
}

// Service regroupe les opérations jobs et dossiers exposées aux syncs et à l'API
type Service interface {
	JobService
	FolderService
}

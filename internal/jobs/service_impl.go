package jobs

import (
	"context"
	"fmt"

	"lecture-sync/internal/cache"
	"lecture-sync/internal/client"
	"lecture-sync/pkg/models"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type jobServiceImpl struct {
	backend Backend
	cache   cache.Cache
	tracer  trace.Tracer
	logger  logr.Logger
}

// NewJobServiceImpl construit le service. c peut être nil (pas de cache).
func NewJobServiceImpl(backend Backend, c cache.Cache, logger logr.Logger) Service {
	return &jobServiceImpl{
		backend: backend,
		cache:   c,
		tracer:  otel.Tracer("lecture-sync/jobs"),
		logger:  logger.WithName("jobs"),
	}
}

func (s *jobServiceImpl) ListJobs(ctx context.Context, folderID string) ([]models.Job, error) {
	ctx, span := s.tracer.Start(ctx, "JobService.ListJobs")
	defer span.End()

	s.logger.V(1).Info("JobService.ListJobs: listing jobs", "folderID", folderID)

	jobs, err := s.backend.ListJobs(ctx, folderID)
	if err != nil {
		span.RecordError(err)
		s.logger.V(1).Info("JobService.ListJobs: failed to list jobs", "error", err.Error())
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	span.SetAttributes(attribute.Int("jobs.count", len(jobs)))
	if s.cache != nil {
		if err := s.cache.SetMany(ctx, jobs); err != nil {
			s.logger.Error(err, "JobService.ListJobs: cache write failed")
		}
	}

	s.logger.V(1).Info("JobService.ListJobs: retrieved jobs", "count", len(jobs))
	return jobs, nil
}

func (s *jobServiceImpl) GetJob(ctx context.Context, id models.JobID) (*models.Job, error) {
	ctx, span := s.tracer.Start(ctx, "JobService.GetJob", trace.WithAttributes(attribute.String("job.id", id.String())))
	defer span.End()

	job, err := s.backend.GetJob(ctx, id)
	if err != nil {
		span.RecordError(err)
		if client.IsNotFound(err) && s.cache != nil {
			_ = s.cache.Delete(ctx, id)
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, job); err != nil {
			s.logger.Error(err, "JobService.GetJob: cache write failed", "id", id)
		}
	}

	s.logger.V(1).Info("JobService.GetJob: job retrieved", "id", job.ID, "status", job.Status)
	return job, nil
}

func (s *jobServiceImpl) CreateJob(ctx context.Context, req *client.CreateJobRequest) (*models.Job, error) {
	ctx, span := s.tracer.Start(ctx, "JobService.CreateJob", trace.WithAttributes(
		attribute.String("job.folder_id", req.FolderID),
		attribute.String("job.file_name", req.FileName),
	))
	defer span.End()

	s.logger.Info("JobService.CreateJob: submitting file", "file", req.FileName, "folderID", req.FolderID)

	job, err := s.backend.CreateJob(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.logger.Info("JobService.CreateJob: submission failed", "file", req.FileName, "error", err.Error())
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, job); err != nil {
			s.logger.Error(err, "JobService.CreateJob: cache write failed", "id", job.ID)
		}
	}

	s.logger.Info("JobService.CreateJob: job created", "id", job.ID, "status", job.Status)
	return job, nil
}

func (s *jobServiceImpl) DeleteJob(ctx context.Context, id models.JobID) error {
	ctx, span := s.tracer.Start(ctx, "JobService.DeleteJob", trace.WithAttributes(attribute.String("job.id", id.String())))
	defer span.End()

	if err := s.backend.DeleteJob(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, id)
	}

	s.logger.Info("JobService.DeleteJob: job deleted", "id", id)
	return nil
}

func (s *jobServiceImpl) CachedJob(ctx context.Context, id models.JobID) (*models.Job, bool) {
	if s.cache == nil {
		return nil, false
	}
	job, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Error(err, "JobService.CachedJob: cache read failed", "id", id)
		return nil, false
	}
	return job, ok
}

func (s *jobServiceImpl) ListFolders(ctx context.Context) ([]models.Folder, error) {
	ctx, span := s.tracer.Start(ctx, "FolderService.ListFolders")
	defer span.End()

	folders, err := s.backend.ListFolders(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

func (s *jobServiceImpl) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	ctx, span := s.tracer.Start(ctx, "FolderService.GetFolder")
	defer span.End()

	folder, err := s.backend.GetFolder(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get folder %s: %w", id, err)
	}
	return folder, nil
}

func (s *jobServiceImpl) CreateFolder(ctx context.Context, name string, description *string) (*models.Folder, error) {
	ctx, span := s.tracer.Start(ctx, "FolderService.CreateFolder")
	defer span.End()

	folder, err := s.backend.CreateFolder(ctx, name, description)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	s.logger.Info("FolderService.CreateFolder: folder created", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

func (s *jobServiceImpl) UpdateFolder(ctx context.Context, id string, update models.FolderUpdate) (*models.Folder, error) {
	ctx, span := s.tracer.Start(ctx, "FolderService.UpdateFolder")
	defer span.End()

	folder, err := s.backend.UpdateFolder(ctx, id, update)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update folder %s: %w", id, err)
	}
	return folder, nil
}

func (s *jobServiceImpl) DeleteFolder(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "FolderService.DeleteFolder")
	defer span.End()

	if err := s.backend.DeleteFolder(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete folder %s: %w", id, err)
	}

	s.logger.Info("FolderService.DeleteFolder: folder deleted", "id", id)
	return nil
}

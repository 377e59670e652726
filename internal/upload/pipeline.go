// Package upload implémente la soumission d'un fichier média au backend :
// sélection, validation locale, envoi multipart puis notification des abonnés.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"lecture-sync/internal/client"
	"lecture-sync/internal/jobs"
	"lecture-sync/internal/validation"
	"lecture-sync/pkg/models"
)

var ErrSubmitInProgress = errors.New("a submission is already in progress")

type State int

const (
	StateIdle State = iota
	StateFileSelected
	StateValidating
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileSelected:
		return "file_selected"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Submission décrit une soumission acceptée par le backend
type Submission struct {
	RequestID   string
	Job         models.Job
	SubmittedAt time.Time
}

// Form est une copie de l'état courant du formulaire
type Form struct {
	State       State
	File        *File
	MediaType   string
	Title       string
	TitleSet    bool
	FolderID    string
	Description string
	LastError   error
}

type Option func(*Pipeline)

func WithLogger(l logr.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

func WithValidator(v *validation.ValidationService) Option {
	return func(p *Pipeline) {
		if v != nil {
			p.validator = v
		}
	}
}

// Pipeline est la machine à états Idle → FileSelected → Validating → Submitting → Success|Error
type Pipeline struct {
	service   jobs.JobService
	validator *validation.ValidationService
	logger    logr.Logger
	now       func() time.Time

	mu          sync.Mutex
	state       State
	file        *File
	mediaType   string
	title       string
	titleSet    bool
	folderID    string
	description string
	lastErr     error
	listeners   []func(context.Context, Submission)
}

func NewPipeline(service jobs.JobService, opts ...Option) *Pipeline {
	p := &Pipeline{
		service:   service,
		validator: validation.NewValidationService(nil),
		logger:    logr.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnSuccess enregistre un abonné notifié après chaque soumission réussie
func (p *Pipeline) OnSuccess(fn func(ctx context.Context, s Submission)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// SelectFile accepte le fichier si son type est audio/* ou video/mp4.
// Un fichier refusé laisse la sélection précédente intacte.
func (p *Pipeline) SelectFile(f File) error {
	result := p.validator.ValidateFilename(f.Name)
	result.Merge(p.validator.ValidateFileSize(f.Size))

	mediaType, err := f.mediaType()
	if err != nil {
		p.fail(err)
		return err
	}
	result.Merge(p.validator.ValidateMediaType(mediaType))

	if err := result.Err(); err != nil {
		p.logger.V(1).Info("Pipeline.SelectFile: file rejected", "file", f.Name, "media_type", mediaType)
		p.fail(err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	p.file = &f
	p.mediaType = mediaType
	p.lastErr = nil
	p.state = StateFileSelected
	return nil
}

func (p *Pipeline) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
}

// failedLocked garde l'erreur ; le formulaire revient à FileSelected tant
// qu'un fichier est sélectionné
func (p *Pipeline) failedLocked(err error) {
	p.lastErr = err
	if p.file != nil {
		p.state = StateFileSelected
		return
	}
	p.state = StateError
}

// SetTitle fixe le titre ; une chaîne vide revient au titre par défaut
func (p *Pipeline) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
	p.titleSet = title != ""
}

func (p *Pipeline) SetFolder(folderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.folderID = folderID
}

func (p *Pipeline) SetDescription(description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.description = description
}

// Title retourne le titre effectif (saisi, sinon dérivé du nom du fichier)
func (p *Pipeline) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.titleLocked()
}

func (p *Pipeline) titleLocked() string {
	if p.titleSet {
		return p.title
	}
	if p.file != nil {
		return DefaultTitle(p.file.Name)
	}
	return ""
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) Form() Form {
	p.mu.Lock()
	defer p.mu.Unlock()

	form := Form{
		State:       p.state,
		MediaType:   p.mediaType,
		Title:       p.titleLocked(),
		TitleSet:    p.titleSet,
		FolderID:    p.folderID,
		Description: p.description,
		LastError:   p.lastErr,
	}
	if p.file != nil {
		f := *p.file
		form.File = &f
	}
	return form
}

// Reset vide le formulaire sauf pendant une soumission
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateSubmitting {
		return
	}
	p.clearLocked()
	p.state = StateIdle
	p.lastErr = nil
}

func (p *Pipeline) clearLocked() {
	p.file = nil
	p.mediaType = ""
	p.title = ""
	p.titleSet = false
	p.description = ""
}

// Submit valide le formulaire puis crée le job. Aucun appel réseau n'a lieu si
// la validation échoue. En cas d'échec le fichier reste sélectionné et un nouvel
// appel à Submit relance la soumission.
func (p *Pipeline) Submit(ctx context.Context) (*models.Job, error) {
	p.mu.Lock()
	if p.state == StateSubmitting {
		p.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	p.state = StateValidating

	if err := p.validateLocked().Err(); err != nil {
		p.failedLocked(err)
		p.mu.Unlock()
		return nil, err
	}

	file := *p.file
	req := &client.CreateJobRequest{
		FileName:    file.Name,
		ContentType: p.mediaType,
		FolderID:    p.folderID,
		Description: p.description,
	}
	if p.titleSet && p.title != DefaultTitle(file.Name) {
		req.Title = p.title
	}
	p.state = StateSubmitting
	p.mu.Unlock()

	requestID := uuid.NewString()
	p.logger.Info("Pipeline.Submit: submitting file",
		"request_id", requestID, "file", file.Name, "folder_id", req.FolderID)

	job, err := p.send(ctx, file, req)
	if err != nil {
		p.logger.Error(err, "Pipeline.Submit: submission failed", "request_id", requestID, "file", file.Name)
		p.mu.Lock()
		p.failedLocked(err)
		p.mu.Unlock()
		return nil, err
	}

	p.mu.Lock()
	p.state = StateSuccess
	p.lastErr = nil
	p.clearLocked()
	listeners := append([]func(context.Context, Submission){}, p.listeners...)
	p.mu.Unlock()

	p.logger.Info("Pipeline.Submit: job created", "request_id", requestID, "job_id", job.ID)

	submission := Submission{RequestID: requestID, Job: *job, SubmittedAt: p.now()}
	for _, fn := range listeners {
		fn(ctx, submission)
	}
	return job, nil
}

func (p *Pipeline) send(ctx context.Context, file File, req *client.CreateJobRequest) (*models.Job, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()

	req.File = rc
	return p.service.CreateJob(ctx, req)
}

func (p *Pipeline) validateLocked() *validation.ValidationResult {
	result := validation.NewResult()

	if p.file == nil || p.file.Open == nil {
		result.AddError("file", "", "a media file is required", "REQUIRED")
	} else {
		result.Merge(p.validator.ValidateMediaType(p.mediaType))
	}
	result.Merge(p.validator.ValidateFolderID(p.folderID))
	result.Merge(p.validator.ValidateTitle(p.titleLocked()))
	result.Merge(p.validator.ValidateDescription(p.description))

	return result
}

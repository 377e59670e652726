// Package jobstest fournit un backend en mémoire pour les tests des syncs
package jobstest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"lecture-sync/internal/client"
	"lecture-sync/pkg/models"
)

// Backend implémente jobs.Backend en mémoire. Les statuts peuvent être scriptés
// par job : chaque GetJob/ListJobs avance d'un cran dans la séquence.
type Backend struct {
	mu      sync.Mutex
	jobs    map[models.JobID]*models.Job
	order   []models.JobID
	scripts map[models.JobID][]models.Job
	folders map[string]*models.Folder

	// Err est retourné par toutes les opérations tant qu'il est non nil
	Err error
	beforeFetch func(ctx context.Context)

	ListCalls   int
	GetCalls    int
	CreateCalls int
	Created     []client.CreateJobRequest
	Uploaded    map[string][]byte
	nextID      int
}

func NewBackend() *Backend {
	return &Backend{
		jobs:     make(map[models.JobID]*models.Job),
		scripts:  make(map[models.JobID][]models.Job),
		folders:  make(map[string]*models.Folder),
		Uploaded: make(map[string][]byte),
	}
}

func (b *Backend) Put(jobs ...models.Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range jobs {
		j := jobs[i]
		if _, ok := b.jobs[j.ID]; !ok {
			b.order = append(b.order, j.ID)
		}
		b.jobs[j.ID] = &j
	}
}

// Script enregistre les états successifs qu'un job prendra, un par fetch
func (b *Backend) Script(id models.JobID, states ...models.Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts[id] = append(b.scripts[id], states...)
}

func (b *Backend) PutFolder(f models.Folder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.folders[f.ID] = &f
}

func (b *Backend) Remove(id models.JobID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.jobs, id)
}

func (b *Backend) SetErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Err = err
}

// SetBeforeFetch installe un hook appelé au début de chaque ListJobs/GetJob, hors verrou
func (b *Backend) SetBeforeFetch(fn func(ctx context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.beforeFetch = fn
}

func (b *Backend) hook(ctx context.Context) {
	b.mu.Lock()
	fn := b.beforeFetch
	b.mu.Unlock()
	if fn != nil {
		fn(ctx)
	}
}

func (b *Backend) Calls() (list, get, create int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ListCalls, b.GetCalls, b.CreateCalls
}

func (b *Backend) advance(id models.JobID) {
	script := b.scripts[id]
	if len(script) == 0 {
		return
	}
	next := script[0]
	b.scripts[id] = script[1:]
	if _, ok := b.jobs[id]; !ok {
		b.order = append(b.order, id)
	}
	b.jobs[id] = &next
}

func (b *Backend) ListJobs(ctx context.Context, folderID string) ([]models.Job, error) {
	b.hook(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ListCalls++
	if b.Err != nil {
		return nil, b.Err
	}

	out := []models.Job{}
	for _, id := range b.order {
		b.advance(id)
		j, ok := b.jobs[id]
		if !ok {
			continue
		}
		if folderID != "" && j.FolderID != folderID {
			continue
		}
		out = append(out, *j.Clone())
	}
	return out, nil
}

func (b *Backend) GetJob(ctx context.Context, id models.JobID) (*models.Job, error) {
	b.hook(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.GetCalls++
	if b.Err != nil {
		return nil, b.Err
	}

	b.advance(id)
	j, ok := b.jobs[id]
	if !ok {
		return nil, &client.NotFoundError{Resource: "job", ID: id.String()}
	}
	return j.Clone(), nil
}

func (b *Backend) CreateJob(ctx context.Context, req *client.CreateJobRequest) (*models.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CreateCalls++
	if b.Err != nil {
		return nil, b.Err
	}
	if len(b.folders) > 0 {
		if _, ok := b.folders[req.FolderID]; !ok {
			return nil, &client.NotFoundError{Resource: "folder", ID: req.FolderID}
		}
	}

	data, err := io.ReadAll(req.File)
	if err != nil {
		return nil, &client.TransportError{Op: "CreateJob", Err: err}
	}

	b.nextID++
	id := models.JobID(fmt.Sprintf("job-%d", b.nextID))
	b.Uploaded[id.String()] = data
	stored := *req
	stored.File = nil
	b.Created = append(b.Created, stored)

	title := req.Title
	if title == "" {
		title = req.FileName
	}
	job := &models.Job{
		ID:          id,
		Title:       title,
		Description: req.Description,
		Status:      models.StatusPending,
		FolderID:    req.FolderID,
	}
	b.jobs[id] = job
	b.order = append(b.order, id)
	return job.Clone(), nil
}

func (b *Backend) DeleteJob(ctx context.Context, id models.JobID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	if _, ok := b.jobs[id]; !ok {
		return &client.NotFoundError{Resource: "job", ID: id.String()}
	}
	delete(b.jobs, id)
	return nil
}

func (b *Backend) ListFolders(ctx context.Context) ([]models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	out := make([]models.Folder, 0, len(b.folders))
	for _, f := range b.folders {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *Backend) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	f, ok := b.folders[id]
	if !ok {
		return nil, &client.NotFoundError{Resource: "folder", ID: id}
	}
	c := *f
	return &c, nil
}

func (b *Backend) CreateFolder(ctx context.Context, name string, description *string) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	f := &models.Folder{ID: fmt.Sprintf("folder-%d", len(b.folders)+1), Name: name, Description: description}
	b.folders[f.ID] = f
	c := *f
	return &c, nil
}

func (b *Backend) UpdateFolder(ctx context.Context, id string, update models.FolderUpdate) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	f, ok := b.folders[id]
	if !ok {
		return nil, &client.NotFoundError{Resource: "folder", ID: id}
	}
	if update.Name != nil {
		f.Name = *update.Name
	}
	if update.Description != nil {
		f.Description = update.Description
	}
	c := *f
	return &c, nil
}

func (b *Backend) DeleteFolder(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	if _, ok := b.folders[id]; !ok {
		return &client.NotFoundError{Resource: "folder", ID: id}
	}
	delete(b.folders, id)
	return nil
}

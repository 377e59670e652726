package tracking

import (
	"math"
	"sort"
	"strings"

	"lecture-sync/pkg/models"
)

// RecentLimit est la taille de la liste d'activité récente
const RecentLimit = 5

// ComputeStats recalcule toutes les statistiques depuis zéro
func ComputeStats(jobs []models.Job) models.JobStats {
	stats := models.JobStats{
		Total:    len(jobs),
		ByStatus: make(map[models.JobStatus]int),
		Recent:   []models.Job{},
	}

	for i := range jobs {
		j := &jobs[i]
		stats.ByStatus[j.Status]++
		stats.TotalDuration += j.Duration

		switch {
		case j.Status == models.StatusPending:
			stats.Pending++
		case j.Status.IsProcessing():
			stats.Processing++
		case j.Status == models.StatusCompleted:
			stats.Completed++
		case j.Status == models.StatusFailed:
			stats.Failed++
		default:
			stats.Unknown++
		}
		if !j.Status.IsTerminal() {
			stats.HasNonTerminal = true
		}
	}

	if stats.Total > 0 {
		stats.AverageDuration = int(math.Round(stats.TotalDuration / float64(stats.Total)))
	}

	recent := make([]models.Job, len(jobs))
	copy(recent, jobs)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt.Time)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	for i := range recent {
		stats.Recent = append(stats.Recent, *recent[i].Clone())
	}

	return stats
}

// FilterByFolder retourne les jobs du dossier, ou tous si folderID est vide
func FilterByFolder(jobs []models.Job, folderID string) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	for i := range jobs {
		if folderID == "" || jobs[i].FolderID == folderID {
			out = append(out, *jobs[i].Clone())
		}
	}
	return out
}

// HasNonTerminal est vrai si au moins un job n'est ni completed ni failed.
// Un statut inconnu compte comme non terminal.
func HasNonTerminal(jobs []models.Job) bool {
	for i := range jobs {
		if !jobs[i].Status.IsTerminal() {
			return true
		}
	}
	return false
}

// Search garde les jobs dont le titre, la transcription ou les notes contiennent
// tous les termes de la requête (insensible à la casse)
func Search(jobs []models.Job, query string) []models.Job {
	terms := strings.Fields(strings.ToLower(query))
	out := []models.Job{}

	for i := range jobs {
		j := &jobs[i]
		if containsAll(j.Title, terms) ||
			(j.HasTranscript() && containsAll(*j.Transcript, terms)) ||
			(j.HasNotes() && containsAll(*j.Notes, terms)) {
			out = append(out, *j.Clone())
		}
	}
	return out
}

func containsAll(text string, terms []string) bool {
	text = strings.ToLower(text)
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// holdMonotonic garde l'enregistrement déjà connu quand next ferait reculer
// son statut (un terminal redevenu en cours, generating_notes revenu à pending)
func holdMonotonic(prev, next []models.Job) []models.Job {
	held := make(map[models.JobID]int, len(prev))
	for i := range prev {
		held[prev[i].ID] = i
	}

	out := make([]models.Job, len(next))
	for i := range next {
		out[i] = next[i]
		if j, ok := held[next[i].ID]; ok && !prev[j].Status.CanAdvanceTo(next[i].Status) {
			out[i] = *prev[j].Clone()
		}
	}
	return out
}

// diffStatuses liste les jobs dont le statut a changé entre deux collections
func diffStatuses(prev, next []models.Job) []statusChange {
	before := make(map[models.JobID]models.JobStatus, len(prev))
	for i := range prev {
		before[prev[i].ID] = prev[i].Status
	}

	var changes []statusChange
	for i := range next {
		old, ok := before[next[i].ID]
		if ok && old != next[i].Status {
			changes = append(changes, statusChange{job: next[i], from: old})
		}
	}
	return changes
}

type statusChange struct {
	job  models.Job
	from models.JobStatus
}

// internal/validation/api_validation.go - Validation spécifique à l'API de suivi

package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"lecture-sync/pkg/models"
)

var (
	idPattern        = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	dangerousPattern = regexp.MustCompile(`[\/\\:*?"<>|\x00-\x1f]+`)
	underscoreRuns   = regexp.MustCompile(`_+`)
)

const maxSearchQueryLength = 200

// APIValidator gère la validation des requêtes API
type APIValidator struct {
	validationService *ValidationService
}

func NewAPIValidator(config *ValidationConfig) *APIValidator {
	return &APIValidator{
		validationService: NewValidationService(config),
	}
}

func (av *APIValidator) Service() *ValidationService {
	return av.validationService
}

// ValidateJobIDParam valide un identifiant de job passé dans l'URL
func (av *APIValidator) ValidateJobIDParam(raw string) (models.JobID, *ValidationResult) {
	result := validateID("job_id", raw, true)
	return models.JobID(raw), result
}

// ValidateFolderIDParam valide un identifiant de dossier ; optionnel si required est faux
func (av *APIValidator) ValidateFolderIDParam(raw string, required bool) *ValidationResult {
	return validateID("folder_id", raw, required)
}

func validateID(field, raw string, required bool) *ValidationResult {
	result := NewResult()

	if raw == "" {
		if required {
			result.AddError(field, "", field+" is required", "REQUIRED")
		}
		return result
	}
	if len(raw) > 128 {
		result.AddError(field, raw, field+" too long (max 128 characters)", "TOO_LONG")
		return result
	}
	if !idPattern.MatchString(raw) {
		result.AddError(field, raw, field+" contains invalid characters", "INVALID_ID")
	}
	return result
}

// ValidateSearchQuery borne la taille de la requête de recherche
func (av *APIValidator) ValidateSearchQuery(q string) *ValidationResult {
	result := NewResult()
	if len(q) > maxSearchQueryLength {
		result.AddError("q", q[:32]+"...",
			fmt.Sprintf("query too long (max %d characters)", maxSearchQueryLength), "TOO_LONG")
	}
	return result
}

// ValidateUploadRequest valide les métadonnées d'une soumission depuis le storage source
func (av *APIValidator) ValidateUploadRequest(req *models.UploadRequest) *ValidationResult {
	result := NewResult()
	vs := av.validationService

	result.Merge(vs.ValidateSourcePath(req.SourcePath))
	result.Merge(vs.ValidateFolderID(req.FolderID))
	result.Merge(vs.ValidateTitle(req.Title))
	result.Merge(vs.ValidateDescription(req.Description))

	return result
}

// SanitizeFilename nettoie un nom de fichier reçu avant de l'utiliser comme clé de storage
func (av *APIValidator) SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = strings.ReplaceAll(base, "..", "_")
	base = dangerousPattern.ReplaceAllString(base, "_")
	base = underscoreRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_. ")

	if dangerousPattern.MatchString(ext) || len(ext) < 2 {
		ext = ""
	}
	if base == "" {
		base = "upload"
	}

	if len(base)+len(ext) > 200 {
		base = base[:200-len(ext)]
	}
	return base + ext
}

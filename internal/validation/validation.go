// internal/validation/validation.go - Validation des fichiers média et des métadonnées de soumission

package validation

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// ValidationConfig contient la configuration de validation
type ValidationConfig struct {
	MaxFileSize          int64           // Taille max du fichier média (bytes)
	MaxFilenameLength    int             // Longueur max du nom de fichier
	MaxTitleLength       int             // Longueur max du titre
	MaxDescriptionLength int             // Longueur max de la description
	AllowedMediaPrefixes []string        // Familles MIME acceptées (ex: "audio/")
	AllowedMediaTypes    map[string]bool // Types MIME acceptés en plus des familles
}

// DefaultValidationConfig accepte tout l'audio et la vidéo mp4
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		MaxFileSize:          200 * 1024 * 1024,
		MaxFilenameLength:    255,
		MaxTitleLength:       200,
		MaxDescriptionLength: 2000,
		AllowedMediaPrefixes: []string{"audio/"},
		AllowedMediaTypes: map[string]bool{
			"video/mp4": true,
		},
	}
}

// ValidationService gère la validation des entrées
type ValidationService struct {
	config *ValidationConfig
}

func NewValidationService(config *ValidationConfig) *ValidationService {
	if config == nil {
		config = DefaultValidationConfig()
	}
	return &ValidationService{config: config}
}

func (vs *ValidationService) Config() *ValidationConfig {
	return vs.config
}

// ValidationError représente une erreur de validation avec détails
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// ValidationResult contient le résultat de validation
type ValidationResult struct {
	Valid  bool               `json:"valid"`
	Errors []*ValidationError `json:"errors,omitempty"`
}

func NewResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError ajoute une erreur de validation
func (vr *ValidationResult) AddError(field, value, message, code string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Code:    code,
	})
}

// Merge ajoute les erreurs d'un autre résultat
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil || other.Valid {
		return
	}
	vr.Valid = false
	vr.Errors = append(vr.Errors, other.Errors...)
}

// Err retourne nil si le résultat est valide, sinon une erreur inspectable
// avec errors.As(err, **ValidationError) ou errors.As(err, **ValidationResult)
func (vr *ValidationResult) Err() error {
	if vr == nil || vr.Valid {
		return nil
	}
	return vr
}

func (vr *ValidationResult) Error() string {
	msgs := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (vr *ValidationResult) Unwrap() []error {
	errs := make([]error, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		errs = append(errs, e)
	}
	return errs
}

// IsValidationError indique si err provient d'une validation locale
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateFilename valide le nom du fichier soumis
func (vs *ValidationService) ValidateFilename(filename string) *ValidationResult {
	result := NewResult()

	if filename == "" {
		result.AddError("filename", "", "filename is required", "REQUIRED")
		return result
	}

	if len(filename) > vs.config.MaxFilenameLength {
		result.AddError("filename", filename,
			fmt.Sprintf("filename too long (max %d characters)", vs.config.MaxFilenameLength),
			"TOO_LONG")
	}

	if !utf8.ValidString(filename) {
		result.AddError("filename", filename, "filename must be valid UTF-8", "INVALID_ENCODING")
	}

	if filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		result.AddError("filename", filename, "filename must not contain a path", "FORBIDDEN_CHAR")
	}
	for _, r := range filename {
		if r < 0x20 || r == 0x7f {
			result.AddError("filename", filename,
				fmt.Sprintf("filename contains control character %q", r), "FORBIDDEN_CHAR")
			break
		}
	}

	return result
}

// DetectMediaType retourne le type déclaré (sans paramètres) ou, s'il est vide
// ou générique, le type détecté à partir des premiers octets du contenu.
func DetectMediaType(declared string, head []byte) string {
	if mediaType := normalizeMediaType(declared); mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}
	if len(head) == 0 {
		return normalizeMediaType(declared)
	}
	return normalizeMediaType(mimetype.Detect(head).String())
}

// MediaTypeFromExtension donne le type MIME associé à l'extension, "" si inconnu
func MediaTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}
	if mt := extensionMIME(ext); mt != "" {
		return mt
	}
	return normalizeMediaType(mime.TypeByExtension(ext))
}

// extensionMIME couvre les extensions média que la table système ne connaît pas toujours
func extensionMIME(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/x-m4a"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".webm":
		return "audio/webm"
	case ".aac":
		return "audio/aac"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	default:
		return ""
	}
}

func normalizeMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.SplitN(contentType, ";", 2)[0]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// ValidateMediaType accepte les familles et types configurés
func (vs *ValidationService) ValidateMediaType(mediaType string) *ValidationResult {
	result := NewResult()

	if mediaType == "" {
		result.AddError("file", "", "media type could not be determined", "UNKNOWN_MEDIA_TYPE")
		return result
	}
	if vs.MediaTypeAllowed(mediaType) {
		return result
	}

	result.AddError("file", mediaType,
		fmt.Sprintf("media type %s not allowed, expected an audio file or video/mp4", mediaType),
		"FORBIDDEN_MEDIA_TYPE")
	return result
}

func (vs *ValidationService) MediaTypeAllowed(mediaType string) bool {
	mediaType = normalizeMediaType(mediaType)
	if vs.config.AllowedMediaTypes[mediaType] {
		return true
	}
	for _, prefix := range vs.config.AllowedMediaPrefixes {
		if strings.HasPrefix(mediaType, prefix) {
			return true
		}
	}
	return false
}

// ValidateFileSize vérifie la taille ; une taille négative signifie inconnue
func (vs *ValidationService) ValidateFileSize(size int64) *ValidationResult {
	result := NewResult()

	switch {
	case size < 0:
	case size == 0:
		result.AddError("file_size", "0", "file is empty", "EMPTY_FILE")
	case vs.config.MaxFileSize > 0 && size > vs.config.MaxFileSize:
		result.AddError("file_size", fmt.Sprintf("%d", size),
			fmt.Sprintf("file too large (max %d bytes)", vs.config.MaxFileSize),
			"FILE_TOO_LARGE")
	}
	return result
}

// ValidateFolderID vérifie la présence du dossier de destination
func (vs *ValidationService) ValidateFolderID(folderID string) *ValidationResult {
	result := NewResult()

	if strings.TrimSpace(folderID) == "" {
		result.AddError("folder_id", "", "a destination folder is required", "REQUIRED")
		return result
	}
	if len(folderID) > 128 || strings.ContainsAny(folderID, "/?#") {
		result.AddError("folder_id", folderID, "invalid folder identifier", "INVALID_ID")
	}
	return result
}

func (vs *ValidationService) ValidateTitle(title string) *ValidationResult {
	result := NewResult()
	if utf8.RuneCountInString(title) > vs.config.MaxTitleLength {
		result.AddError("title", title,
			fmt.Sprintf("title too long (max %d characters)", vs.config.MaxTitleLength), "TOO_LONG")
	}
	return result
}

func (vs *ValidationService) ValidateDescription(description string) *ValidationResult {
	result := NewResult()
	if utf8.RuneCountInString(description) > vs.config.MaxDescriptionLength {
		result.AddError("description", "",
			fmt.Sprintf("description too long (max %d characters)", vs.config.MaxDescriptionLength), "TOO_LONG")
	}
	return result
}

// hasParentSegment signale un segment ".." ; "a..b.mp3" reste accepté
func hasParentSegment(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// ValidateSourcePath valide un chemin dans le storage source
func (vs *ValidationService) ValidateSourcePath(path string) *ValidationResult {
	result := NewResult()

	if path == "" {
		result.AddError("source_path", "", "source path is required", "REQUIRED")
		return result
	}

	if hasParentSegment(path) {
		result.AddError("source_path", path, "path traversal not allowed", "PATH_TRAVERSAL")
	}

	if len(path) > 500 {
		result.AddError("source_path", path, "path too long (max 500 characters)", "PATH_TOO_LONG")
	}

	return result
}

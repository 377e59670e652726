package upload

import (
	"regexp"
	"strings"
)

var extensionSuffix = regexp.MustCompile(`\.[^/.]+$`)

// DefaultTitle retire l'extension et remplace "_" et "-" par des espaces
func DefaultTitle(filename string) string {
	title := extensionSuffix.ReplaceAllString(filename, "")
	return strings.NewReplacer("_", " ", "-", " ").Replace(title)
}

// Package assets builds CDN URLs for stored media files. File rows carry a
// camelCase module name (e.g. clubLogo) that maps onto the CDN directory
// layout; the original file name only contributes its extension.
package assets

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"arbiter/internal/fixture/models"
	id "arbiter/pkg/domain"
)

var (
	lowerUpper = regexp.MustCompile(`([a-z])([A-Z])`)
	upperRun   = regexp.MustCompile(`([A-Z])([A-Z][a-z])`)
)

// Asset module fallbacks used when a file row lacks a module name.
const (
	ModuleClubLogo     = "clubLogo"
	ModuleRefereePhoto = "personStaffPhoto"
)

// Locator constructs public URLs for media assets.
type Locator struct {
	baseURL string
}

// NewLocator builds a Locator rooted at the CDN base URL.
func NewLocator(baseURL string) *Locator {
	return &Locator{baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the direct link for a file, or empty when the reference is
// nil. Missing module names fall back to the given default; a file name
// without an extension gets ".bin".
func (l *Locator) URL(ref *models.FileRef, defaultModule string) string {
	if ref == nil {
		return ""
	}
	module := ref.Module
	if module == "" {
		module = defaultModule
	}
	return l.build(ref.ID, module, ref.Name)
}

func (l *Locator) build(fileID id.FileID, module, name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		ext = "bin"
	}
	return l.baseURL + "/" + camelToPath(module) + "/" + strconv.FormatInt(int64(fileID), 10) + "." + ext
}

// camelToPath converts a camelCase module name to its CDN path:
// clubPlayerPhoto → club/player/photo.
func camelToPath(module string) string {
	s := lowerUpper.ReplaceAllString(module, "$1/$2")
	s = upperRun.ReplaceAllString(s, "$1/$2")
	return strings.ToLower(s)
}

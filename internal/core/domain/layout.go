package domain

import (
	"path/filepath"
	"strings"
)

// SidecarSuffix is the file suffix of every sidecar.
const SidecarSuffix = ".suggestions.json"

// ManifestSuffix is the file suffix of the derived-view provenance manifest.
const ManifestSuffix = ".views.json"

// Layout maps documents to their sidecar directory and back.
//
// A document dir/name.md owns dir/<SidecarDir>/name/, which holds
// name.suggestions.json, name.advice.md, name.flow.mmd and name.views.json.
type Layout struct {
	SidecarDir string
}

// NewLayout returns a layout using dir, or the default when dir is empty.
func NewLayout(dir string) Layout {
	if dir == "" {
		dir = DefaultSidecarDir
	}
	return Layout{SidecarDir: dir}
}

// BaseName returns a document's name without its extension.
func BaseName(docPath string) string {
	name := filepath.Base(docPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputDir returns the directory holding a document's sidecar and views.
func (l Layout) OutputDir(docPath string) string {
	return filepath.Join(filepath.Dir(docPath), l.SidecarDir, BaseName(docPath))
}

// SidecarPath returns the sidecar path for a document.
func (l Layout) SidecarPath(docPath string) string {
	return filepath.Join(l.OutputDir(docPath), BaseName(docPath)+SidecarSuffix)
}

// IsSidecar reports whether path names a sidecar file.
func (l Layout) IsSidecar(path string) bool {
	return strings.HasSuffix(filepath.Base(path), SidecarSuffix)
}

// sidecarBase returns "name" for ".../name.suggestions.json".
func sidecarBase(sidecarPath string) string {
	return strings.TrimSuffix(filepath.Base(sidecarPath), SidecarSuffix)
}

// DocumentDir returns the directory the sidecar's document lives in.
// Sidecars inside <dir>/<SidecarDir>/<name>/ belong to <dir>; any other
// sidecar belongs to its own directory.
func (l Layout) DocumentDir(sidecarPath string) string {
	dir := filepath.Dir(sidecarPath)
	parent := filepath.Dir(dir)
	if filepath.Base(parent) == l.SidecarDir {
		return filepath.Dir(parent)
	}
	return dir
}

// DocumentPath returns the document path for a sidecar and its sourceFile.
func (l Layout) DocumentPath(sidecarPath, sourceFile string) string {
	return filepath.Join(l.DocumentDir(sidecarPath), sourceFile)
}

// ArtifactPath returns the path of a derived view next to the sidecar.
func (l Layout) ArtifactPath(sidecarPath string, kind ArtifactKind) string {
	return filepath.Join(filepath.Dir(sidecarPath), sidecarBase(sidecarPath)+kind.Extension())
}

// ManifestPath returns the provenance manifest path next to the sidecar.
func (l Layout) ManifestPath(sidecarPath string) string {
	return filepath.Join(filepath.Dir(sidecarPath), sidecarBase(sidecarPath)+ManifestSuffix)
}

// Role classifies path. Generated files other than the flow view are
// reported as RoleGenerated so their writes do not trigger work.
func (l Layout) Role(path string) FileRole {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, SidecarSuffix):
		return RoleSidecar
	case strings.HasSuffix(name, ArtifactFlow.Extension()):
		return RoleFlowView
	case strings.HasSuffix(name, ArtifactAdvice.Extension()), strings.HasSuffix(name, ManifestSuffix):
		return RoleGenerated
	case strings.EqualFold(filepath.Ext(name), ".md"):
		return RoleDocument
	default:
		return RoleOther
	}
}

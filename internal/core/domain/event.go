package domain

// ChangeKind describes what changed in the suggestion store.
type ChangeKind string

// Change kinds.
const (
	ChangeScanned  ChangeKind = "scanned"
	ChangeLoaded   ChangeKind = "loaded"
	ChangeRemoved  ChangeKind = "removed"
	ChangeMutated  ChangeKind = "mutated"
	ChangeDocument ChangeKind = "document"
)

// ChangeEvent is delivered to store observers after state is persisted.
type ChangeEvent struct {
	Kind ChangeKind

	// SidecarRef is empty for workspace-wide changes.
	SidecarRef string
}

// WorkspaceChange is a file-level change observed in the workspace.
type WorkspaceChange struct {
	// Path is the absolute path of the changed file.
	Path string

	// Deleted is true for removals and renames away from Path.
	Deleted bool
}

// FileRole classifies a workspace path for change handling.
type FileRole int

// File roles.
const (
	RoleOther FileRole = iota
	RoleSidecar
	RoleDocument
	RoleFlowView
	RoleGenerated
)

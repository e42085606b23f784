package domain

// ArtifactKind names a derived view.
type ArtifactKind string

// Artifact kinds.
const (
	// ArtifactAdvice is the per-section advice digest (<base>.advice.md).
	ArtifactAdvice ArtifactKind = "advice"

	// ArtifactFlow is the flow diagram extracted from ordered lists (<base>.flow.mmd).
	ArtifactFlow ArtifactKind = "flow"
)

// IsValid returns true if the kind is recognised.
func (k ArtifactKind) IsValid() bool {
	return k == ArtifactAdvice || k == ArtifactFlow
}

// Extension returns the file suffix used for the artifact.
func (k ArtifactKind) Extension() string {
	switch k {
	case ArtifactAdvice:
		return ".advice.md"
	case ArtifactFlow:
		return ".flow.mmd"
	default:
		return "." + string(k)
	}
}

// Provenance records who owns an artifact.
type Provenance string

// Provenance values.
const (
	// ProvenanceAuto marks content written by a generator; it may be overwritten.
	ProvenanceAuto Provenance = "auto"

	// ProvenanceExternal marks content written by a human or agent; it is never overwritten.
	ProvenanceExternal Provenance = "external"
)

// Artifact is a derived view and its ownership.
type Artifact struct {
	Kind       ArtifactKind
	Content    string
	Provenance Provenance
}

// ViewInput is what a view generator consumes.
type ViewInput struct {
	// SourceFile is the document name from the sidecar.
	SourceFile string

	// Document is the current document text. Empty if it could not be read.
	Document string

	// Suggestions is the full list; generators pick what they need.
	Suggestions []Suggestion
}

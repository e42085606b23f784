package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/margin/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/generators"
	"github.com/custodia-labs/margin/internal/logger"
)

const abDoc = "# A\n\nfoo\n\n# B\n\nbar\n"

var (
	testLayout = domain.NewLayout("")
	planPath   = filepath.FromSlash("/ws/plan.md")
	planRef    = testLayout.SidecarPath(planPath)
)

type fixture struct {
	store     *SuggestionStore
	docs      *memory.DocumentStore
	sidecars  *memory.SidecarStore
	artifacts *memory.ArtifactStore
	decisions *memory.DecisionStore
}

func newFixture(t *testing.T, doc string, suggestions ...domain.Suggestion) *fixture {
	t.Helper()

	pipeline, err := generators.DefaultPipeline(domain.ViewSettings{Advice: true, Flow: true})
	require.NoError(t, err)
	return newFixtureWithViews(t, pipeline, doc, suggestions...)
}

func newFixtureWithViews(t *testing.T, pipeline driven.ViewPipeline, doc string, suggestions ...domain.Suggestion) *fixture {
	t.Helper()

	f := &fixture{
		docs:      memory.NewDocumentStore(),
		sidecars:  memory.NewSidecarStore(),
		artifacts: memory.NewArtifactStore(),
		decisions: memory.NewDecisionStore(),
	}
	f.docs.Put(planPath, doc)
	f.sidecars.Put(planRef, &domain.SuggestionFile{
		Version:     1,
		SourceFile:  "plan.md",
		GeneratedAt: "2026-01-01T00:00:00Z",
		Suggestions: suggestions,
	})

	f.store = NewSuggestionStore(f.docs, f.sidecars, testLayout,
		WithLogger(logger.Discard()),
		WithViews(f.artifacts, pipeline),
		WithDecisions(f.decisions, domain.HistorySettings{Enabled: true, Keep: 100}),
	)
	t.Cleanup(func() { _ = f.store.Close() })
	require.NoError(t, f.store.ScanAll(context.Background()))
	return f
}

func (f *fixture) doc(t *testing.T) string {
	t.Helper()
	text, err := f.docs.ReadDocument(context.Background(), planPath)
	require.NoError(t, err)
	return text
}

func (f *fixture) persisted(t *testing.T) *domain.SuggestionFile {
	t.Helper()
	file, err := f.sidecars.ReadSidecar(context.Background(), planRef)
	require.NoError(t, err)
	return file
}

func replaceSug(id, heading, text, replacement string) domain.Suggestion {
	s := domain.Suggestion{
		ID:           id,
		Status:       domain.StatusPending,
		Anchor:       domain.Anchor{TextContent: text},
		Type:         domain.TypeReplace,
		OriginalText: text,
		Alternatives: []domain.Alternative{{ID: id + "-a", Label: "Default", Text: replacement}},
		Category:     domain.CategoryClarity,
	}
	if heading != "" {
		s.Anchor.HeadingPath = []string{heading}
	}
	return s
}

func typedSug(id string, typ domain.SuggestionType, heading, text, replacement string) domain.Suggestion {
	s := replaceSug(id, heading, text, replacement)
	s.Type = typ
	return s
}

func TestSuggestionStore_Accept_Replace(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))

	require.NoError(t, f.store.Accept(context.Background(), "s1"))

	assert.Equal(t, "# A\n\nfoo\n\n# B\n\nbaz\n", f.doc(t))
	assert.Equal(t, domain.StatusAccepted, f.persisted(t).Suggestions[0].Status)

	found, err := f.store.FindSuggestionByID("s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, found.Suggestion.Status)
	assert.Equal(t, planRef, found.SidecarRef)
}

func TestSuggestionStore_Accept_AnchorNotFound(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "qux", "baz"))

	err := f.store.Accept(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrAnchorNotFound)
	assert.Equal(t, abDoc, f.doc(t))
	assert.Equal(t, 0, f.docs.Writes())
	assert.Equal(t, 0, f.sidecars.Writes())

	found, err := f.store.FindSuggestionByID("s1")
	require.NoError(t, err)
	assert.True(t, found.Suggestion.IsPending())
}

func TestSuggestionStore_Accept_Errors(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	ctx := context.Background()

	assert.ErrorIs(t, f.store.Accept(ctx, "missing"), domain.ErrSuggestionNotFound)

	require.NoError(t, f.store.Accept(ctx, "s1"))
	assert.ErrorIs(t, f.store.Accept(ctx, "s1"), domain.ErrSuggestionNotPending)
	assert.ErrorIs(t, f.store.Reject(ctx, "s1"), domain.ErrSuggestionNotPending)
}

func TestSuggestionStore_Accept_UnknownType(t *testing.T) {
	f := newFixture(t, abDoc, typedSug("s1", "rewrite", "B", "bar", "baz"))

	err := f.store.Accept(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrUnknownSuggestionType)
	assert.Equal(t, abDoc, f.doc(t))
}

func TestSuggestionStore_AcceptWith(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))

	require.NoError(t, f.store.AcceptWith(context.Background(), "s1", "edited\nby hand"))

	assert.Equal(t, "# A\n\nfoo\n\n# B\n\nedited\nby hand\n", f.doc(t))
}

func TestSuggestionStore_Accept_NothingToApply(t *testing.T) {
	s := replaceSug("s1", "B", "bar", "")
	s.Alternatives = nil
	f := newFixture(t, abDoc, s)

	require.NoError(t, f.store.Accept(context.Background(), "s1"))

	assert.Equal(t, "# A\n\nfoo\n\n# B\n\n\n", f.doc(t))
}

func TestSuggestionStore_Accept_SidecarWriteFailsRestoresDocument(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	f.sidecars.WriteErr = errors.New("disk full")

	err := f.store.Accept(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.Equal(t, abDoc, f.doc(t))
	found, ferr := f.store.FindSuggestionByID("s1")
	require.NoError(t, ferr)
	assert.True(t, found.Suggestion.IsPending())
	assert.True(t, f.persisted(t).Suggestions[0].IsPending())
}

func TestSuggestionStore_Accept_DocumentWriteFails(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	f.docs.WriteErr = errors.New("read-only")

	err := f.store.Accept(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.Equal(t, 0, f.sidecars.Writes())
	found, ferr := f.store.FindSuggestionByID("s1")
	require.NoError(t, ferr)
	assert.True(t, found.Suggestion.IsPending())
}

func TestSuggestionStore_Reject(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))

	require.NoError(t, f.store.Reject(context.Background(), "s1"))

	assert.Equal(t, abDoc, f.doc(t))
	assert.Equal(t, 0, f.docs.Writes())
	assert.Equal(t, domain.StatusRejected, f.persisted(t).Suggestions[0].Status)
}

func TestSuggestionStore_AcceptAll(t *testing.T) {
	f := newFixture(t, abDoc,
		replaceSug("s1", "A", "foo", "<new>"),
		typedSug("s2", domain.TypeDelete, "B", "bar", ""),
	)

	result, err := f.store.AcceptAll(context.Background(), planRef)

	require.NoError(t, err)
	assert.Equal(t, "# A\n\n<new>\n\n# B\n\n", f.doc(t))
	assert.Equal(t, []string{"s2", "s1"}, result.Accepted)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 1, f.docs.Writes())
	assert.Equal(t, 1, f.sidecars.Writes())
	for _, s := range f.persisted(t).Suggestions {
		assert.Equal(t, domain.StatusAccepted, s.Status, s.ID)
	}
}

func TestSuggestionStore_AcceptAll_OrderIndependent(t *testing.T) {
	top := typedSug("top", domain.TypeInsertAfter, "A", "foo", "after foo")
	bottom := replaceSug("bottom", "B", "bar", "one\ntwo\nthree")

	f1 := newFixture(t, abDoc, top, bottom)
	_, err := f1.store.AcceptAll(context.Background(), planRef)
	require.NoError(t, err)

	f2 := newFixture(t, abDoc, bottom, top)
	_, err = f2.store.AcceptAll(context.Background(), planRef)
	require.NoError(t, err)

	want := "# A\n\nfoo\nafter foo\n\n# B\n\none\ntwo\nthree\n"
	assert.Equal(t, want, f1.doc(t))
	assert.Equal(t, want, f2.doc(t))
}

func TestSuggestionStore_AcceptAll_TieGoesToFirst(t *testing.T) {
	f := newFixture(t, abDoc,
		typedSug("s1", domain.TypeInsertAfter, "A", "foo", "x"),
		typedSug("s2", domain.TypeInsertAfter, "A", "foo", "y"),
	)

	result, err := f.store.AcceptAll(context.Background(), planRef)

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, result.Accepted)
	assert.Equal(t, "# A\n\nfoo\ny\nx\n\n# B\n\nbar\n", f.doc(t))
}

func TestSuggestionStore_AcceptAll_SkipsUnresolvable(t *testing.T) {
	done := replaceSug("done", "A", "foo", "zzz")
	done.Status = domain.StatusRejected
	f := newFixture(t, abDoc,
		replaceSug("s1", "B", "bar", "baz"),
		replaceSug("stale", "A", "gone", "x"),
		typedSug("odd", "rewrite", "A", "foo", "x"),
		done,
	)

	result, err := f.store.AcceptAll(context.Background(), planRef)

	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, result.Accepted)
	assert.ElementsMatch(t, []string{"stale", "odd"}, result.Skipped)
	assert.Equal(t, "# A\n\nfoo\n\n# B\n\nbaz\n", f.doc(t))

	persisted := f.persisted(t)
	assert.True(t, persisted.Suggestions[1].IsPending())
	assert.True(t, persisted.Suggestions[2].IsPending())
	assert.Equal(t, domain.StatusRejected, persisted.Suggestions[3].Status)
}

func TestSuggestionStore_AcceptAll_NothingApplied(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("stale", "A", "gone", "x"))

	result, err := f.store.AcceptAll(context.Background(), planRef)

	require.NoError(t, err)
	assert.Empty(t, result.Accepted)
	assert.Equal(t, []string{"stale"}, result.Skipped)
	assert.Equal(t, 0, f.docs.Writes())
	assert.Equal(t, 0, f.sidecars.Writes())
}

func TestSuggestionStore_AcceptAll_PersistErrorAborts(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	f.sidecars.WriteErr = errors.New("disk full")

	result, err := f.store.AcceptAll(context.Background(), planRef)

	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.Nil(t, result)
	assert.Equal(t, abDoc, f.doc(t))
}

func TestSuggestionStore_AcceptAll_UnknownSidecar(t *testing.T) {
	f := newFixture(t, abDoc)

	_, err := f.store.AcceptAll(context.Background(), "/nope.suggestions.json")
	assert.ErrorIs(t, err, domain.ErrSidecarNotFound)
}

func TestSuggestionStore_RejectAll(t *testing.T) {
	done := replaceSug("done", "A", "foo", "x")
	done.Status = domain.StatusAccepted
	f := newFixture(t, abDoc, replaceSug("s1", "A", "foo", "x"), replaceSug("s2", "B", "bar", "y"), done)

	n, err := f.store.RejectAll(context.Background(), planRef)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, f.sidecars.Writes())
	persisted := f.persisted(t)
	assert.Equal(t, domain.StatusRejected, persisted.Suggestions[0].Status)
	assert.Equal(t, domain.StatusRejected, persisted.Suggestions[1].Status)
	assert.Equal(t, domain.StatusAccepted, persisted.Suggestions[2].Status)

	n, err = f.store.RejectAll(context.Background(), planRef)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, f.sidecars.Writes())
}

func TestSuggestionStore_PruneStale(t *testing.T) {
	acceptedStale := replaceSug("old", "A", "deleted text", "x")
	acceptedStale.Status = domain.StatusAccepted
	f := newFixture(t, abDoc,
		replaceSug("live", "A", "foo", "x"),
		replaceSug("stale", "B", "deleted text", "y"),
		acceptedStale,
	)

	n, err := f.store.PruneStale(context.Background(), planRef)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	ids := []string{}
	for _, s := range f.persisted(t).Suggestions {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"live", "old"}, ids)

	n, err = f.store.PruneStale(context.Background(), planRef)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, f.sidecars.Writes())
}

func TestSuggestionStore_PruneAllStale(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("stale", "B", "gone", "y"))

	otherDoc := filepath.FromSlash("/ws/notes/todo.md")
	otherRef := testLayout.SidecarPath(otherDoc)
	f.docs.Put(otherDoc, "# Todo\n\nship\n")
	f.sidecars.Put(otherRef, &domain.SuggestionFile{
		Version:    1,
		SourceFile: "todo.md",
		Suggestions: []domain.Suggestion{
			replaceSug("t1", "", "missing", "x"),
			replaceSug("t2", "", "ship", "x"),
		},
	})
	require.NoError(t, f.store.ScanAll(context.Background()))

	n, err := f.store.PruneAllStale(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	remaining, err := f.store.Suggestions(otherRef)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "t2", remaining[0].ID)
}

func TestSuggestionStore_PruneAllStale_ContinuesPastErrors(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("stale", "B", "gone", "y"))

	orphanRef := testLayout.SidecarPath(filepath.FromSlash("/ws/missing.md"))
	f.sidecars.Put(orphanRef, &domain.SuggestionFile{Version: 1, SourceFile: "missing.md"})
	require.NoError(t, f.store.ScanAll(context.Background()))

	n, err := f.store.PruneAllStale(context.Background())

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, n)
}

func TestSuggestionStore_Preview(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	ctx := context.Background()

	before, after, err := f.store.Preview(ctx, "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, abDoc, before)
	assert.Equal(t, "# A\n\nfoo\n\n# B\n\nbaz\n", after)

	custom := "mine"
	_, after, err = f.store.Preview(ctx, "s1", &custom)
	require.NoError(t, err)
	assert.Contains(t, after, "\nmine\n")

	assert.Equal(t, 0, f.docs.Writes())
	assert.Equal(t, 0, f.sidecars.Writes())
}

func TestSuggestionStore_LoadFile(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	ctx := context.Background()

	f.sidecars.PutRaw(planRef, []byte("{not json"))
	err := f.store.LoadFile(ctx, planRef)
	assert.ErrorIs(t, err, domain.ErrLoadParse)
	_, err = f.store.Suggestions(planRef)
	assert.ErrorIs(t, err, domain.ErrSidecarNotFound)

	f.sidecars.Put(planRef, &domain.SuggestionFile{
		Version:     1,
		SourceFile:  "plan.md",
		Suggestions: []domain.Suggestion{replaceSug("s2", "A", "foo", "x")},
	})
	require.NoError(t, f.store.LoadFile(ctx, planRef))
	found, err := f.store.FindSuggestionByID("s2")
	require.NoError(t, err)
	assert.Equal(t, planRef, found.SidecarRef)
}

func TestSuggestionStore_LoadFile_SchemaViolation(t *testing.T) {
	f := newFixture(t, abDoc)

	f.sidecars.Put(planRef, &domain.SuggestionFile{
		Version:     1,
		SourceFile:  "plan.md",
		Suggestions: []domain.Suggestion{replaceSug("dup", "A", "foo", "x"), replaceSug("dup", "B", "bar", "y")},
	})

	err := f.store.LoadFile(context.Background(), planRef)
	assert.ErrorIs(t, err, domain.ErrLoadParse)
}

func TestSuggestionStore_ScanAll_SkipsBrokenFiles(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	f.sidecars.PutRaw(testLayout.SidecarPath(filepath.FromSlash("/ws/broken.md")), []byte("]"))

	require.NoError(t, f.store.ScanAll(context.Background()))

	summaries := f.store.DocumentSummaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "plan.md", summaries[0].Name)
}

func TestSuggestionStore_RemoveFile(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))

	var events []domain.ChangeEvent
	f.store.Subscribe(func(ev domain.ChangeEvent) { events = append(events, ev) })

	f.store.RemoveFile(context.Background(), planRef)
	f.store.RemoveFile(context.Background(), planRef)

	_, err := f.store.FindSuggestionByID("s1")
	assert.ErrorIs(t, err, domain.ErrSuggestionNotFound)
	assert.Equal(t, []domain.ChangeEvent{{Kind: domain.ChangeRemoved, SidecarRef: planRef}}, events)
}

func TestSuggestionStore_Observers(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"), replaceSug("s2", "A", "foo", "x"))

	var (
		mu     sync.Mutex
		events []domain.ChangeEvent
		docs   []string
	)
	cancel := f.store.Subscribe(func(ev domain.ChangeEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
		// State is already persisted when observers run.
		text, _ := f.docs.ReadDocument(context.Background(), planPath)
		docs = append(docs, text)
	})

	require.NoError(t, f.store.Accept(context.Background(), "s1"))
	cancel()
	require.NoError(t, f.store.Reject(context.Background(), "s2"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ChangeEvent{Kind: domain.ChangeMutated, SidecarRef: planRef}, events[0])
	assert.Contains(t, docs[0], "baz")
}

func TestSuggestionStore_Accessors(t *testing.T) {
	done := replaceSug("done", "A", "foo", "x")
	done.Status = domain.StatusAccepted
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"), done)

	otherDoc := filepath.FromSlash("/ws/notes/todo.md")
	f.docs.Put(otherDoc, "# Todo\n")
	f.sidecars.Put(testLayout.SidecarPath(otherDoc), &domain.SuggestionFile{Version: 1, SourceFile: "todo.md"})
	require.NoError(t, f.store.ScanAll(context.Background()))

	ref, ok := f.store.SidecarForDocument(planPath)
	require.True(t, ok)
	assert.Equal(t, planRef, ref)
	_, ok = f.store.SidecarForDocument(filepath.FromSlash("/ws/unknown.md"))
	assert.False(t, ok)

	pending := f.store.PendingForDocument(planPath)
	require.Len(t, pending, 1)
	assert.Equal(t, "s1", pending[0].ID)

	path, err := f.store.DocumentPath(planRef)
	require.NoError(t, err)
	assert.Equal(t, planPath, path)

	text, err := f.store.ReadDocument(context.Background(), planRef)
	require.NoError(t, err)
	assert.Equal(t, abDoc, text)

	summaries := f.store.DocumentSummaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, domain.DocumentSummary{
		Name:            "plan.md",
		DocumentPath:    planPath,
		SidecarRef:      planRef,
		SuggestionCount: 2,
		PendingCount:    1,
	}, summaries[0])
	assert.Equal(t, "todo.md", summaries[1].Name)

	all, err := f.store.Suggestions(planRef)
	require.NoError(t, err)
	all[0].Status = domain.StatusRejected
	again, err := f.store.Suggestions(planRef)
	require.NoError(t, err)
	assert.True(t, again[0].IsPending())
}

func TestSuggestionStore_InitDocument(t *testing.T) {
	f := newFixture(t, abDoc)
	ctx := context.Background()
	f.store.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	doc := filepath.FromSlash("/ws/new.md")
	f.docs.Put(doc, "# New\n")

	ref, err := f.store.InitDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, testLayout.SidecarPath(doc), ref)

	file, err := f.sidecars.ReadSidecar(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 1, file.Version)
	assert.Equal(t, "new.md", file.SourceFile)
	assert.Equal(t, "2026-03-01T12:00:00Z", file.GeneratedAt)
	assert.Empty(t, file.Suggestions)

	got, ok := f.store.SidecarForDocument(doc)
	assert.True(t, ok)
	assert.Equal(t, ref, got)

	// An existing sidecar is kept.
	f.sidecars.Put(ref, &domain.SuggestionFile{
		Version:     1,
		SourceFile:  "new.md",
		Suggestions: []domain.Suggestion{replaceSug("keep", "", "New", "Old")},
	})
	_, err = f.store.InitDocument(ctx, doc)
	require.NoError(t, err)
	suggestions, err := f.store.Suggestions(ref)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "keep", suggestions[0].ID)

	_, err = f.store.InitDocument(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuggestionStore_History(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"), replaceSug("s2", "A", "foo", "x"), replaceSug("s3", "A", "nope", "x"))
	ctx := context.Background()

	require.NoError(t, f.store.Accept(ctx, "s1"))
	require.NoError(t, f.store.Reject(ctx, "s2"))
	_, err := f.store.PruneStale(ctx, planRef)
	require.NoError(t, err)

	history, err := f.store.History(ctx, planRef, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)

	byID := map[string]domain.Decision{}
	for _, d := range history {
		byID[d.SuggestionID] = d
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, planRef, d.SidecarRef)
	}
	assert.Equal(t, domain.DecisionAccepted, byID["s1"].Action)
	assert.Equal(t, "baz", byID["s1"].Text)
	assert.Equal(t, domain.DecisionRejected, byID["s2"].Action)
	assert.Equal(t, domain.DecisionPruned, byID["s3"].Action)
}

func TestSuggestionStore_HistoryFailureDoesNotFailAccept(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	f.decisions.RecordErr = errors.New("locked")

	require.NoError(t, f.store.Accept(context.Background(), "s1"))
	assert.Equal(t, domain.StatusAccepted, f.persisted(t).Suggestions[0].Status)
}

func TestSuggestionStore_Views(t *testing.T) {
	doc := "# Plan\n\n## Steps\n\n1. build\n2. ship\n"
	f := newFixture(t, doc, replaceSug("s1", "Steps", "build", "compile"))
	ctx := context.Background()

	require.NoError(t, f.store.Reject(ctx, "s1"))
	require.NoError(t, f.store.Close())

	advice, err := f.artifacts.ReadArtifact(ctx, planRef, domain.ArtifactAdvice)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceAuto, advice.Provenance)
	assert.Contains(t, advice.Content, "0 pending")

	flow, err := f.artifacts.ReadArtifact(ctx, planRef, domain.ArtifactFlow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(flow.Content, "flowchart TD\n"))
}

func TestSuggestionStore_Views_ExternalIsKept(t *testing.T) {
	f := newFixture(t, abDoc, replaceSug("s1", "B", "bar", "baz"))
	ctx := context.Background()
	f.artifacts.PutExternal(planRef, domain.ArtifactAdvice, "my own notes\n")

	require.NoError(t, f.store.RegenerateViews(ctx, planRef))

	view, err := f.store.ReadView(ctx, planRef, domain.ArtifactAdvice)
	require.NoError(t, err)
	assert.Equal(t, "my own notes\n", view.Content)
	assert.Equal(t, domain.ProvenanceExternal, view.Provenance)

	require.NoError(t, f.store.AdoptView(ctx, planRef, domain.ArtifactAdvice))

	view, err = f.store.ReadView(ctx, planRef, domain.ArtifactAdvice)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceAuto, view.Provenance)
	assert.Contains(t, view.Content, "1 pending")

	_, err = f.store.ReadView(ctx, planRef, "mindmap")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuggestionStore_Views_EmptyFlowNotWritten(t *testing.T) {
	f := newFixture(t, abDoc)

	require.NoError(t, f.store.RegenerateViews(context.Background(), planRef))

	_, err := f.artifacts.ReadArtifact(context.Background(), planRef, domain.ArtifactFlow)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuggestionStore_WithoutOptionalCollaborators(t *testing.T) {
	docs := memory.NewDocumentStore()
	sidecars := memory.NewSidecarStore()
	docs.Put(planPath, abDoc)
	sidecars.Put(planRef, &domain.SuggestionFile{
		Version:     1,
		SourceFile:  "plan.md",
		Suggestions: []domain.Suggestion{replaceSug("s1", "B", "bar", "baz")},
	})

	store := NewSuggestionStore(docs, sidecars, testLayout, WithLogger(logger.Discard()))
	ctx := context.Background()
	require.NoError(t, store.ScanAll(ctx))
	require.NoError(t, store.Accept(ctx, "s1"))

	history, err := store.History(ctx, planRef, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = store.ReadView(ctx, planRef, domain.ArtifactAdvice)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	require.NoError(t, store.Close())
}

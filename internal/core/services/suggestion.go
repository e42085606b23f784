package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/margin/internal/core/anchor"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/mutate"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
	"github.com/custodia-labs/margin/internal/logger"
)

// Ensure SuggestionStore implements the interface.
var _ driving.SuggestionService = (*SuggestionStore)(nil)

// SuggestionStore owns the suggestion cache and every persistence side
// effect of a review.
//
// All mutating entry points run under one mutex, so a background reload
// never interleaves with an accept. Mutations work on a cloned
// SuggestionFile; the cache entry is swapped only after the document and
// sidecar writes succeed, and observers are notified after that.
type SuggestionStore struct {
	docs     driven.DocumentStore
	sidecars driven.SidecarStore
	layout   domain.Layout

	artifacts driven.ArtifactStore
	views     driven.ViewPipeline
	decisions driven.DecisionStore
	history   domain.HistorySettings

	log   *logger.Logger
	now   func() time.Time
	newID func() string

	// opMu serialises mutation entry points.
	opMu sync.Mutex

	// mu guards cache.
	mu    sync.RWMutex
	cache map[string]*domain.SuggestionFile

	obsMu     sync.Mutex
	observers []observer
	nextObs   int

	// viewMu guards viewDone and closed. viewDone holds the latest
	// regeneration per sidecar; the next one waits for it.
	viewMu   sync.Mutex
	viewDone map[string]chan struct{}
	viewWG   sync.WaitGroup
	closed   bool
}

type observer struct {
	id int
	fn func(domain.ChangeEvent)
}

// StoreOption configures optional SuggestionStore collaborators.
type StoreOption func(*SuggestionStore)

// WithViews enables derived-view regeneration.
func WithViews(artifacts driven.ArtifactStore, pipeline driven.ViewPipeline) StoreOption {
	return func(s *SuggestionStore) {
		s.artifacts = artifacts
		s.views = pipeline
	}
}

// WithDecisions enables the decision history.
func WithDecisions(store driven.DecisionStore, settings domain.HistorySettings) StoreOption {
	return func(s *SuggestionStore) {
		s.decisions = store
		s.history = settings
	}
}

// WithLogger sets the logger. Defaults to logger.Default().
func WithLogger(l *logger.Logger) StoreOption {
	return func(s *SuggestionStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *SuggestionStore) {
		s.now = now
	}
}

// NewSuggestionStore creates a store over the given document and sidecar stores.
// The cache starts empty; call ScanAll to populate it.
func NewSuggestionStore(
	docs driven.DocumentStore,
	sidecars driven.SidecarStore,
	layout domain.Layout,
	opts ...StoreOption,
) *SuggestionStore {
	s := &SuggestionStore{
		docs:     docs,
		sidecars: sidecars,
		layout:   layout,
		log:      logger.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
		cache:    make(map[string]*domain.SuggestionFile),
		viewDone: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanAll loads every sidecar and replaces the cache wholesale.
func (s *SuggestionStore) ScanAll(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	refs, err := s.sidecars.ListSidecars(ctx)
	if err != nil {
		return fmt.Errorf("list sidecars: %w", err)
	}

	next := make(map[string]*domain.SuggestionFile, len(refs))
	for _, ref := range refs {
		file, err := s.read(ctx, ref)
		if err != nil {
			s.log.Warn("skipping %s: %v", ref, err)
			continue
		}
		next[ref] = file
	}

	s.mu.Lock()
	s.cache = next
	s.mu.Unlock()

	s.log.Info("scanned %d sidecars (%d loaded)", len(refs), len(next))
	s.notify(domain.ChangeEvent{Kind: domain.ChangeScanned})
	return nil
}

// LoadFile reloads one sidecar. A file that cannot be read or parsed
// is dropped from the cache.
func (s *SuggestionStore) LoadFile(ctx context.Context, ref string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	file, err := s.read(ctx, ref)
	if err != nil {
		s.mu.Lock()
		_, had := s.cache[ref]
		delete(s.cache, ref)
		s.mu.Unlock()

		s.log.Warn("load %s: %v", ref, err)
		if had {
			s.notify(domain.ChangeEvent{Kind: domain.ChangeRemoved, SidecarRef: ref})
		}
		return err
	}

	s.mu.Lock()
	s.cache[ref] = file
	s.mu.Unlock()

	s.scheduleViews(ref, file)
	s.notify(domain.ChangeEvent{Kind: domain.ChangeLoaded, SidecarRef: ref})
	return nil
}

// RemoveFile drops a sidecar from the cache.
func (s *SuggestionStore) RemoveFile(_ context.Context, ref string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	_, had := s.cache[ref]
	delete(s.cache, ref)
	s.mu.Unlock()

	if had {
		s.log.Debug("removed %s", ref)
		s.notify(domain.ChangeEvent{Kind: domain.ChangeRemoved, SidecarRef: ref})
	}
}

// InitDocument creates an empty sidecar for docPath unless one exists.
func (s *SuggestionStore) InitDocument(ctx context.Context, docPath string) (string, error) {
	if docPath == "" {
		return "", fmt.Errorf("%w: document path is required", domain.ErrInvalidInput)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	ref := s.layout.SidecarPath(docPath)
	file := &domain.SuggestionFile{
		Version:     domain.CurrentSidecarVersion,
		SourceFile:  filepath.Base(docPath),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Suggestions: []domain.Suggestion{},
	}
	created, err := s.sidecars.CreateSidecar(ctx, ref, file)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	if !created {
		s.log.Info("keeping existing sidecar %s", ref)
	}

	loaded, err := s.read(ctx, ref)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[ref] = loaded
	s.mu.Unlock()

	s.scheduleViews(ref, loaded)
	s.notify(domain.ChangeEvent{Kind: domain.ChangeLoaded, SidecarRef: ref})
	return ref, nil
}

// Accept applies a suggestion's default text.
func (s *SuggestionStore) Accept(ctx context.Context, id string) error {
	return s.accept(ctx, id, nil)
}

// AcceptWith applies text instead of the default.
func (s *SuggestionStore) AcceptWith(ctx context.Context, id, text string) error {
	return s.accept(ctx, id, &text)
}

func (s *SuggestionStore) accept(ctx context.Context, id string, text *string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ref, file, idx, err := s.locate(id)
	if err != nil {
		return err
	}
	sug := &file.Suggestions[idx]
	if !sug.IsPending() {
		return fmt.Errorf("%w: %s is %s", domain.ErrSuggestionNotPending, id, sug.Status)
	}
	s.waitViews(ref)

	docPath := s.documentPath(ref, file)
	before, err := s.docs.ReadDocument(ctx, docPath)
	if err != nil {
		return fmt.Errorf("read document %s: %w", docPath, err)
	}

	replacement := mutate.DefaultText(sug)
	if text != nil {
		replacement = *text
	}
	after, err := mutate.Apply(before, sug, replacement)
	if err != nil {
		return fmt.Errorf("accept %s: %w", id, err)
	}

	next := file.Clone()
	next.Suggestions[idx].Status = domain.StatusAccepted
	if err := s.commit(ctx, ref, next, &documentEdit{path: docPath, before: before, after: after}); err != nil {
		return err
	}

	s.log.Info("accepted %s in %s", id, docPath)
	s.record(ctx, ref, id, domain.DecisionAccepted, replacement)
	s.scheduleViews(ref, next)
	s.notify(domain.ChangeEvent{Kind: domain.ChangeMutated, SidecarRef: ref})
	return nil
}

// Reject marks a suggestion rejected.
func (s *SuggestionStore) Reject(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ref, file, idx, err := s.locate(id)
	if err != nil {
		return err
	}
	if !file.Suggestions[idx].IsPending() {
		return fmt.Errorf("%w: %s is %s", domain.ErrSuggestionNotPending, id, file.Suggestions[idx].Status)
	}
	s.waitViews(ref)

	next := file.Clone()
	next.Suggestions[idx].Status = domain.StatusRejected
	if err := s.commit(ctx, ref, next, nil); err != nil {
		return err
	}

	s.log.Info("rejected %s", id)
	s.record(ctx, ref, id, domain.DecisionRejected, "")
	s.scheduleViews(ref, next)
	s.notify(domain.ChangeEvent{Kind: domain.ChangeMutated, SidecarRef: ref})
	return nil
}

// AcceptAll applies every pending suggestion of a sidecar.
//
// Each round re-resolves the remaining suggestions against the text built
// so far and applies the bottom-most one, so earlier edits never shift the
// range of a later one. Suggestions that stop resolving are skipped and
// stay pending. The document and sidecar are written once at the end.
func (s *SuggestionStore) AcceptAll(ctx context.Context, ref string) (*domain.BatchResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	file, err := s.cached(ref)
	if err != nil {
		return nil, err
	}
	s.waitViews(ref)

	docPath := s.documentPath(ref, file)
	before, err := s.docs.ReadDocument(ctx, docPath)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", docPath, err)
	}

	next := file.Clone()
	var remaining []int
	for i := range next.Suggestions {
		if next.Suggestions[i].IsPending() {
			remaining = append(remaining, i)
		}
	}

	result := &domain.BatchResult{}
	applied := make(map[string]string)
	text := before
	for {
		pick, at := -1, -1
		var pos domain.Position
		for n, i := range remaining {
			sug := &next.Suggestions[i]
			if !sug.Type.IsValid() {
				continue
			}
			p, ok := anchor.ResolveAnchor(text, sug.Anchor)
			if !ok {
				continue
			}
			// Strictly greater: the first suggestion wins a tie.
			if pick < 0 || p.StartLine > pos.StartLine {
				pick, at, pos = i, n, p
			}
		}
		if pick < 0 {
			break
		}
		remaining = append(remaining[:at], remaining[at+1:]...)

		sug := &next.Suggestions[pick]
		replacement := mutate.DefaultText(sug)
		out, err := mutate.Splice(text, sug.Type, pos, replacement)
		if err != nil {
			s.log.Warn("skipping %s: %v", sug.ID, err)
			result.Skipped = append(result.Skipped, sug.ID)
			continue
		}
		text = out
		sug.Status = domain.StatusAccepted
		result.Accepted = append(result.Accepted, sug.ID)
		applied[sug.ID] = replacement
	}
	for _, i := range remaining {
		result.Skipped = append(result.Skipped, next.Suggestions[i].ID)
	}

	if len(result.Accepted) == 0 {
		return result, nil
	}
	if err := s.commit(ctx, ref, next, &documentEdit{path: docPath, before: before, after: text}); err != nil {
		return nil, err
	}

	s.log.Info("accepted %d, skipped %d in %s", len(result.Accepted), len(result.Skipped), docPath)
	for _, id := range result.Accepted {
		s.record(ctx, ref, id, domain.DecisionAccepted, applied[id])
	}
	s.scheduleViews(ref, next)
	s.notify(domain.ChangeEvent{Kind: domain.ChangeMutated, SidecarRef: ref})
	return result, nil
}

// RejectAll rejects every pending suggestion of a sidecar.
func (s *SuggestionStore) RejectAll(ctx context.Context, ref string) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	file, err := s.cached(ref)
	if err != nil {
		return 0, err
	}
	s.waitViews(ref)

	next := file.Clone()
	var ids []string
	for i := range next.Suggestions {
		if next.Suggestions[i].IsPending() {
			next.Suggestions[i].Status = domain.StatusRejected
			ids = append(ids, next.Suggestions[i].ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, ref, next, nil); err != nil {
		return 0, err
	}

	for _, id := range ids {
		s.record(ctx, ref, id, domain.DecisionRejected, "")
	}
	s.scheduleViews(ref, next)
	s.notify(domain.ChangeEvent{Kind: domain.ChangeMutated, SidecarRef: ref})
	return len(ids), nil
}

// PruneStale removes pending suggestions whose anchor no longer resolves.
func (s *SuggestionStore) PruneStale(ctx context.Context, ref string) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.prune(ctx, ref)
}

// PruneAllStale prunes every cached sidecar. Failures are collected and
// the remaining sidecars are still pruned.
func (s *SuggestionStore) PruneAllStale(ctx context.Context) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	total := 0
	var errs []error
	for _, ref := range s.refs() {
		n, err := s.prune(ctx, ref)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune %s: %w", ref, err))
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

func (s *SuggestionStore) prune(ctx context.Context, ref string) (int, error) {
	file, err := s.cached(ref)
	if err != nil {
		return 0, err
	}
	s.waitViews(ref)

	docPath := s.documentPath(ref, file)
	text, err := s.docs.ReadDocument(ctx, docPath)
	if err != nil {
		return 0, fmt.Errorf("read document %s: %w", docPath, err)
	}

	next := file.Clone()
	kept := next.Suggestions[:0]
	var removed []string
	for _, sug := range next.Suggestions {
		if sug.IsPending() {
			if _, ok := anchor.ResolveAnchor(text, sug.Anchor); !ok {
				removed = append(removed, sug.ID)
				continue
			}
		}
		kept = append(kept, sug)
	}
	if len(removed) == 0 {
		return 0, nil
	}
	next.Suggestions = kept

	if err := s.commit(ctx, ref, next, nil); err != nil {
		return 0, err
	}

	s.log.Info("pruned %d stale suggestions from %s", len(removed), ref)
	for _, id := range removed {
		s.record(ctx, ref, id, domain.DecisionPruned, "")
	}
	s.scheduleViews(ref, next)
	s.notify(domain.ChangeEvent{Kind: domain.ChangeMutated, SidecarRef: ref})
	return len(removed), nil
}

// Preview computes the document text after applying a suggestion.
// Nothing is written.
func (s *SuggestionStore) Preview(ctx context.Context, id string, text *string) (string, string, error) {
	ref, file, idx, err := s.locate(id)
	if err != nil {
		return "", "", err
	}
	sug := &file.Suggestions[idx]
	if !sug.IsPending() {
		return "", "", fmt.Errorf("%w: %s is %s", domain.ErrSuggestionNotPending, id, sug.Status)
	}

	before, err := s.docs.ReadDocument(ctx, s.documentPath(ref, file))
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	replacement := mutate.DefaultText(sug)
	if text != nil {
		replacement = *text
	}
	after, err := mutate.Apply(before, sug, replacement)
	if err != nil {
		return "", "", fmt.Errorf("preview %s: %w", id, err)
	}
	return before, after, nil
}

// documentEdit is a document write bundled with a sidecar write.
type documentEdit struct {
	path   string
	before string
	after  string
}

// commit persists a mutation and swaps the cache entry.
// The document is written first; if the sidecar write then fails the
// document is restored, so the sidecar never claims an edit that is not
// on disk.
func (s *SuggestionStore) commit(ctx context.Context, ref string, next *domain.SuggestionFile, edit *documentEdit) error {
	if edit != nil {
		if err := s.docs.WriteDocument(ctx, edit.path, edit.after); err != nil {
			return fmt.Errorf("%w: write document %s: %w", domain.ErrPersist, edit.path, err)
		}
	}
	if err := s.sidecars.WriteSidecar(ctx, ref, next); err != nil {
		if edit != nil {
			if rbErr := s.docs.WriteDocument(ctx, edit.path, edit.before); rbErr != nil {
				s.log.Error("restore %s after failed sidecar write: %v", edit.path, rbErr)
			}
		}
		return fmt.Errorf("%w: write sidecar %s: %w", domain.ErrPersist, ref, err)
	}

	s.mu.Lock()
	s.cache[ref] = next
	s.mu.Unlock()
	return nil
}

// record appends a decision. History failures are logged only.
func (s *SuggestionStore) record(ctx context.Context, ref, id string, action domain.DecisionAction, text string) {
	if s.decisions == nil || !s.history.Enabled {
		return
	}
	d := &domain.Decision{
		ID:           s.newID(),
		SidecarRef:   ref,
		SuggestionID: id,
		Action:       action,
		Text:         text,
		DecidedAt:    s.now(),
	}
	if err := s.decisions.Record(ctx, d); err != nil {
		s.log.Warn("record decision for %s: %v", id, err)
		return
	}
	if s.history.Keep > 0 {
		if _, err := s.decisions.Prune(ctx, ref, s.history.Keep); err != nil {
			s.log.Warn("prune history for %s: %v", ref, err)
		}
	}
}

// History returns recorded decisions for a sidecar, newest first.
func (s *SuggestionStore) History(ctx context.Context, ref string, limit int) ([]domain.Decision, error) {
	if s.decisions == nil {
		return nil, nil
	}
	return s.decisions.List(ctx, ref, limit)
}

// RegenerateViews rewrites the derived views of a sidecar and waits for it.
// It holds the operation lock, so no mutation starts until it has written.
func (s *SuggestionStore) RegenerateViews(ctx context.Context, ref string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	file, err := s.cached(ref)
	if err != nil {
		return err
	}
	s.waitViews(ref)
	return s.regenerate(ctx, ref, file)
}

// ReadView returns a derived view once pending regeneration has finished.
func (s *SuggestionStore) ReadView(ctx context.Context, ref string, kind domain.ArtifactKind) (*domain.Artifact, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown view %q", domain.ErrInvalidInput, kind)
	}
	if s.artifacts == nil {
		return nil, fmt.Errorf("%w: views are disabled", domain.ErrNotImplemented)
	}
	if _, err := s.cached(ref); err != nil {
		return nil, err
	}
	s.waitViews(ref)
	return s.artifacts.ReadArtifact(ctx, ref, kind)
}

// AdoptView tags a view as generator-owned and regenerates it.
func (s *SuggestionStore) AdoptView(ctx context.Context, ref string, kind domain.ArtifactKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown view %q", domain.ErrInvalidInput, kind)
	}
	if s.artifacts == nil {
		return fmt.Errorf("%w: views are disabled", domain.ErrNotImplemented)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	file, err := s.cached(ref)
	if err != nil {
		return err
	}
	s.waitViews(ref)

	if err := s.artifacts.SetProvenance(ctx, ref, kind, domain.ProvenanceAuto); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	return s.regenerate(ctx, ref, file)
}

// scheduleViews regenerates views in the background. Runs for the same
// sidecar are chained, and mutations wait for the latest one first.
func (s *SuggestionStore) scheduleViews(ref string, file *domain.SuggestionFile) {
	if s.views == nil || s.artifacts == nil {
		return
	}

	s.viewMu.Lock()
	if s.closed {
		s.viewMu.Unlock()
		return
	}
	prev := s.viewDone[ref]
	done := make(chan struct{})
	s.viewDone[ref] = done
	s.viewWG.Add(1)
	s.viewMu.Unlock()

	snapshot := file.Clone()
	go func() {
		defer s.viewWG.Done()
		if prev != nil {
			<-prev
		}
		if err := s.regenerate(context.Background(), ref, snapshot); err != nil {
			s.log.Warn("regenerate views for %s: %v", ref, err)
		}
		close(done)

		s.viewMu.Lock()
		if s.viewDone[ref] == done {
			delete(s.viewDone, ref)
		}
		s.viewMu.Unlock()
	}()
}

// waitViews blocks until the latest regeneration for ref has finished.
func (s *SuggestionStore) waitViews(ref string) {
	s.viewMu.Lock()
	done := s.viewDone[ref]
	s.viewMu.Unlock()
	if done != nil {
		<-done
	}
}

// regenerate renders views and writes those the generator owns.
// A view that exists without an auto provenance record is left alone.
func (s *SuggestionStore) regenerate(ctx context.Context, ref string, file *domain.SuggestionFile) error {
	if s.views == nil || s.artifacts == nil {
		return nil
	}

	text, err := s.docs.ReadDocument(ctx, s.documentPath(ref, file))
	if err != nil {
		s.log.Debug("views for %s without document: %v", ref, err)
		text = ""
	}

	artifacts, err := s.views.Generate(ctx, &domain.ViewInput{
		SourceFile:  file.SourceFile,
		Document:    text,
		Suggestions: file.Suggestions,
	})
	if err != nil {
		return err
	}

	var errs []error
	for i := range artifacts {
		a := &artifacts[i]
		existing, err := s.artifacts.ReadArtifact(ctx, ref, a.Kind)
		switch {
		case err == nil && existing.Provenance == domain.ProvenanceExternal:
			s.log.Debug("keeping external %s view for %s", a.Kind, ref)
			continue
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			errs = append(errs, err)
			continue
		case errors.Is(err, domain.ErrNotFound) && a.Content == "":
			continue
		}
		if err := s.artifacts.WriteArtifact(ctx, ref, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers an observer. Observers run synchronously after a
// change is persisted and must not call mutating operations.
func (s *SuggestionStore) Subscribe(fn func(domain.ChangeEvent)) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *SuggestionStore) notify(ev domain.ChangeEvent) {
	s.obsMu.Lock()
	observers := append([]observer(nil), s.observers...)
	s.obsMu.Unlock()

	for _, o := range observers {
		o.fn(ev)
	}
}

// Close waits for outstanding view regeneration. Later mutations no
// longer regenerate views.
func (s *SuggestionStore) Close() error {
	s.viewMu.Lock()
	s.closed = true
	s.viewMu.Unlock()

	s.viewWG.Wait()
	return nil
}

// FindSuggestionByID returns a copy of a suggestion and its sidecar.
func (s *SuggestionStore) FindSuggestionByID(id string) (*domain.LocatedSuggestion, error) {
	ref, file, idx, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	return &domain.LocatedSuggestion{SidecarRef: ref, Suggestion: file.Suggestions[idx].Clone()}, nil
}

// Suggestions returns copies of every suggestion in a sidecar.
func (s *SuggestionStore) Suggestions(ref string) ([]domain.Suggestion, error) {
	file, err := s.cached(ref)
	if err != nil {
		return nil, err
	}
	return file.Clone().Suggestions, nil
}

// PendingForDocument returns pending suggestions for a document.
func (s *SuggestionStore) PendingForDocument(docPath string) []domain.Suggestion {
	ref, ok := s.SidecarForDocument(docPath)
	if !ok {
		return nil
	}
	file, err := s.cached(ref)
	if err != nil {
		return nil
	}
	return file.Pending()
}

// SidecarForDocument returns the cached sidecar whose document is docPath.
func (s *SuggestionStore) SidecarForDocument(docPath string) (string, bool) {
	want := cleanPath(docPath)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.cache[s.layout.SidecarPath(want)]; ok {
		return s.layout.SidecarPath(want), true
	}
	for _, ref := range s.sortedRefsLocked() {
		if cleanPath(s.documentPath(ref, s.cache[ref])) == want {
			return ref, true
		}
	}
	return "", false
}

// DocumentPath returns the document a cached sidecar belongs to.
func (s *SuggestionStore) DocumentPath(ref string) (string, error) {
	file, err := s.cached(ref)
	if err != nil {
		return "", err
	}
	return s.documentPath(ref, file), nil
}

// ReadDocument returns the current text of a sidecar's document.
func (s *SuggestionStore) ReadDocument(ctx context.Context, ref string) (string, error) {
	path, err := s.DocumentPath(ref)
	if err != nil {
		return "", err
	}
	return s.docs.ReadDocument(ctx, path)
}

// DocumentSummaries lists cached sidecars, most pending first.
func (s *SuggestionStore) DocumentSummaries() []domain.DocumentSummary {
	s.mu.RLock()
	summaries := make([]domain.DocumentSummary, 0, len(s.cache))
	for ref, file := range s.cache {
		summaries = append(summaries, domain.DocumentSummary{
			Name:            file.SourceFile,
			DocumentPath:    s.documentPath(ref, file),
			SidecarRef:      ref,
			SuggestionCount: len(file.Suggestions),
			PendingCount:    file.PendingCount(),
		})
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.PendingCount != b.PendingCount {
			return a.PendingCount > b.PendingCount
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.SidecarRef < b.SidecarRef
	})
	return summaries
}

// read loads and validates a sidecar. Schema violations wrap ErrLoadParse.
func (s *SuggestionStore) read(ctx context.Context, ref string) (*domain.SuggestionFile, error) {
	file, err := s.sidecars.ReadSidecar(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoadParse, ref, err)
	}
	return file, nil
}

// locate finds a suggestion in the cache. Sidecars are searched in
// reference order so duplicate ids across files resolve deterministically.
func (s *SuggestionStore) locate(id string) (string, *domain.SuggestionFile, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ref := range s.sortedRefsLocked() {
		file := s.cache[ref]
		if idx := file.Find(id); idx >= 0 {
			return ref, file, idx, nil
		}
	}
	return "", nil, -1, fmt.Errorf("%w: %s", domain.ErrSuggestionNotFound, id)
}

func (s *SuggestionStore) cached(ref string) (*domain.SuggestionFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.cache[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSidecarNotFound, ref)
	}
	return file, nil
}

func (s *SuggestionStore) refs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedRefsLocked()
}

func (s *SuggestionStore) sortedRefsLocked() []string {
	refs := make([]string, 0, len(s.cache))
	for ref := range s.cache {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func (s *SuggestionStore) documentPath(ref string, file *domain.SuggestionFile) string {
	return s.layout.DocumentPath(ref, file.SourceFile)
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

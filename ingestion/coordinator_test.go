package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LessGoh/Claude-QA-UI-v2/ai/mock"
	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/LessGoh/Claude-QA-UI-v2/internal/testpdf"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/LessGoh/Claude-QA-UI-v2/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

const uploader = "alice"

type harness struct {
	coordinator *Coordinator
	registry    storage.DocumentRegistry
	indexes     *badger.Indexes
	embedder    *mock.MockEmbedder
	progress    *progressRecorder
}

type progressRecorder struct {
	mu      sync.Mutex
	updates []Progress
}

func (p *progressRecorder) record(update Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	registry, indexes, backend, err := badger.NewMemoryStorage(embedder)
	require.NoError(t, err)
	t.Cleanup(func() {
		registry.Close()
		backend.Close()
	})

	h := &harness{registry: registry, indexes: indexes, embedder: embedder, progress: &progressRecorder{}}
	opts = append([]Option{WithProgress(h.progress.record)}, opts...)
	h.coordinator, err = NewCoordinator(indexes, registry, opts...)
	require.NoError(t, err)
	return h
}

func (h *harness) fragmentCount(t *testing.T, scope core.IndexScope) int {
	t.Helper()
	store, err := h.indexes.Store(context.Background(), scope, uploader)
	require.NoError(t, err)
	n, err := store.CountFragments(context.Background())
	require.NoError(t, err)
	return n
}

func (h *harness) records(t *testing.T, scope core.IndexScope) []*core.DocumentRecord {
	t.Helper()
	name, err := core.IndexName(scope, uploader)
	require.NoError(t, err)
	records, err := h.registry.ListDocuments(context.Background(), name)
	require.NoError(t, err)
	return records
}

func longText(seed string) string {
	return strings.Repeat(seed+" was reviewed by the committee and approved for release. ", 40)
}

func pdfFile(name string, pages ...string) core.UploadedFile {
	return core.UploadedFile{Name: name, Content: testpdf.Build(pages...)}
}

func resultsByName(results []core.FileResult) map[string]core.FileResult {
	out := make(map[string]core.FileResult, len(results))
	for _, r := range results {
		out[r.Filename] = r
	}
	return out
}

func TestNewCoordinator_RequiresDependencies(t *testing.T) {
	registry, indexes, backend, err := badger.NewMemoryStorage(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()
	defer registry.Close()

	_, err = NewCoordinator(nil, registry)
	assert.ErrorIs(t, err, ErrIndexManagerRequired)
	_, err = NewCoordinator(indexes, nil)
	assert.ErrorIs(t, err, ErrRegistryRequired)
}

func fivePages(topic string) []string {
	pages := make([]string, 5)
	for i := range pages {
		pages[i] = fmt.Sprintf("%s, section %d: figures were checked and signed off.", topic, i+1)
	}
	return pages
}

func TestIngestBatch_AllValid(t *testing.T) {
	h := newHarness(t)
	files := []core.UploadedFile{
		pdfFile("one.pdf", fivePages("Budget")...),
		pdfFile("two.pdf", fivePages("Hiring")...),
		pdfFile("three.pdf", fivePages("Roadmap")...),
	}

	result, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopeShared, uploader)
	require.NoError(t, err)
	assert.Equal(t, "pdf-qa-shared", result.IndexName)
	assert.Empty(t, result.Rejected)
	require.Len(t, result.Results, 3)

	total := 0
	for _, r := range result.Results {
		assert.True(t, r.Succeeded(), "%s: %s", r.Filename, r.Error)
		assert.Empty(t, r.Error)
		assert.Equal(t, 5, r.ChunkCount, "one fragment per short page")
		assert.Positive(t, r.ProcessingTime)
		total += r.ChunkCount
	}
	assert.Len(t, result.Summary().Failed, 0)

	assert.Equal(t, total, h.fragmentCount(t, core.ScopeShared))
	assert.Zero(t, h.fragmentCount(t, core.ScopePersonal))

	byName := resultsByName(result.Results)
	records := h.records(t, core.ScopeShared)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, uploader, rec.Uploader)
		assert.Equal(t, "pdf-qa-shared", rec.IndexName)
		assert.Equal(t, core.StatusSuccess, rec.Status)
		assert.Equal(t, byName[rec.Filename].ChunkCount, rec.ChunkCount)
	}

	require.Len(t, h.progress.updates, 3)
	for i, u := range h.progress.updates {
		assert.Equal(t, i+1, u.Completed)
		assert.Equal(t, 3, u.Total)
		assert.Equal(t, result.Results[i].Filename, u.Filename, "progress follows completion order")
	}
}

func TestIngestBatch_LongPageSpansFragments(t *testing.T) {
	h := newHarness(t)
	result, err := h.coordinator.IngestBatch(context.Background(),
		[]core.UploadedFile{pdfFile("long.pdf", longText("The annual report"))}, core.ScopePersonal, uploader)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Greater(t, result.Results[0].ChunkCount, 1)
}

func TestIngestBatch_FragmentMetadata(t *testing.T) {
	h := newHarness(t)
	file := pdfFile("notes.pdf", "Quarterly revenue grew in every region.", "", "Headcount stayed flat.")

	_, err := h.coordinator.IngestBatch(context.Background(), []core.UploadedFile{file}, core.ScopePersonal, uploader)
	require.NoError(t, err)

	store, err := h.indexes.Store(context.Background(), core.ScopePersonal, uploader)
	require.NoError(t, err)
	found, err := store.SimilaritySearch(context.Background(), "revenue", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)

	pages := map[float64]bool{}
	for _, doc := range found {
		assert.Equal(t, "notes.pdf", doc.Metadata[MetaFilename])
		assert.Equal(t, uploader, doc.Metadata[MetaUploadUser])
		assert.Equal(t, "pdf-qa-personal-alice", doc.Metadata[MetaIndexName])
		assert.EqualValues(t, file.SizeBytes(), doc.Metadata[MetaFileSize])
		assert.Contains(t, doc.Metadata, "chunk_index")

		date, ok := doc.Metadata[MetaUploadDate].(string)
		require.True(t, ok)
		_, err := time.Parse(time.RFC3339, date)
		assert.NoError(t, err)

		page, ok := doc.Metadata["page"].(float64)
		require.True(t, ok, "page survives the store round trip")
		pages[page] = true
	}
	assert.Equal(t, map[float64]bool{1: true, 3: true}, pages)
}

func TestIngestBatch_CorruptFile(t *testing.T) {
	h := newHarness(t)
	files := []core.UploadedFile{
		pdfFile("good-1.pdf", "Valid content one."),
		{Name: "broken.pdf", Content: []byte("this is not a pdf at all")},
		pdfFile("good-2.pdf", "Valid content two."),
	}

	result, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopePersonal, uploader)
	require.NoError(t, err)
	require.Len(t, result.Results, 3)

	byName := resultsByName(result.Results)
	broken := byName["broken.pdf"]
	assert.Equal(t, core.StatusError, broken.Status)
	assert.Zero(t, broken.ChunkCount)
	assert.Contains(t, broken.Error, "pdf extraction failed")
	assert.True(t, byName["good-1.pdf"].Succeeded())
	assert.True(t, byName["good-2.pdf"].Succeeded())

	assert.Len(t, h.records(t, core.ScopePersonal), 2)
	summary := result.Summary()
	assert.Len(t, summary.Succeeded, 2)
	assert.Len(t, summary.Failed, 1)
}

// countingExtractor wraps the real extractor and records which files reached it.
type countingExtractor struct {
	inner Extractor
	mu    sync.Mutex
	seen  map[int]bool
}

func (c *countingExtractor) Extract(ctx context.Context, data []byte) ([]schema.Document, error) {
	c.mu.Lock()
	c.seen[len(data)] = true
	c.mu.Unlock()
	return c.inner.Extract(ctx, data)
}

func TestIngestBatch_OversizedRejected(t *testing.T) {
	base := newHarness(t)
	extractor := &countingExtractor{inner: base.coordinator.extractor, seen: map[int]bool{}}
	h := newHarness(t, WithExtractor(extractor))

	oversized := core.UploadedFile{Name: "scan.pdf", Content: []byte("%PDF-1.4 oversized marker"), Size: 60 * 1024 * 1024}
	files := []core.UploadedFile{
		pdfFile("fine.pdf", "Small and valid."),
		oversized,
	}

	result, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopePersonal, uploader)
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "fine.pdf", result.Results[0].Filename)
	assert.True(t, result.Results[0].Succeeded())
	assert.Equal(t, []Rejection{{Filename: "scan.pdf", SizeBytes: 60 * 1024 * 1024}}, result.Rejected)
	assert.False(t, extractor.seen[len(oversized.Content)], "oversized file reached the extractor")
	assert.Len(t, h.progress.updates, 1)
}

func TestIngestBatch_AllRejected(t *testing.T) {
	h := newHarness(t, WithMaxFileSize(10))
	files := []core.UploadedFile{pdfFile("a.pdf", "text"), pdfFile("b.pdf", "text")}

	result, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopePersonal, uploader)
	assert.ErrorIs(t, err, ErrNoValidFiles)
	require.NotNil(t, result)
	assert.Len(t, result.Rejected, 2)
	assert.Empty(t, result.Results)
	assert.Empty(t, h.progress.updates)
}

func TestIngestBatch_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("embedding service unavailable")
	}
	files := []core.UploadedFile{pdfFile("a.pdf", "Alpha."), pdfFile("b.pdf", "Beta.")}

	result, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopeShared, uploader)
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	for _, r := range result.Results {
		assert.Equal(t, core.StatusError, r.Status)
		assert.Zero(t, r.ChunkCount)
		assert.Contains(t, r.Error, ErrStoreWrite.Error())
		assert.Contains(t, r.Error, "embedding service unavailable")
	}

	assert.Empty(t, h.records(t, core.ScopeShared))
	assert.Zero(t, h.fragmentCount(t, core.ScopeShared))
}

func TestIngestBatch_ReingestDuplicates(t *testing.T) {
	h := newHarness(t)
	files := []core.UploadedFile{pdfFile("same.pdf", longText("Duplicate content"))}

	first, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopePersonal, uploader)
	require.NoError(t, err)
	chunks := first.Results[0].ChunkCount
	require.Positive(t, chunks)

	_, err = h.coordinator.IngestBatch(context.Background(), files, core.ScopePersonal, uploader)
	require.NoError(t, err)

	assert.Equal(t, 2*chunks, h.fragmentCount(t, core.ScopePersonal))
	records := h.records(t, core.ScopePersonal)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

// slowExtractor tracks how many extractions run at once.
type slowExtractor struct {
	active  atomic.Int32
	maxSeen atomic.Int32
	delay   time.Duration
}

func (s *slowExtractor) Extract(_ context.Context, data []byte) ([]schema.Document, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(s.delay)
	return []schema.Document{{PageContent: string(data), Metadata: map[string]any{"page": 1}}}, nil
}

func TestIngestBatch_BoundedConcurrency(t *testing.T) {
	extractor := &slowExtractor{delay: 20 * time.Millisecond}
	h := newHarness(t, WithExtractor(extractor))

	files := make([]core.UploadedFile, 10)
	for i := range files {
		files[i] = core.UploadedFile{Name: fmt.Sprintf("file-%02d.pdf", i), Content: []byte(fmt.Sprintf("document number %d", i))}
	}

	result, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopePersonal, uploader)
	require.NoError(t, err)
	require.Len(t, result.Results, 10)
	for _, r := range result.Results {
		assert.True(t, r.Succeeded(), r.Error)
	}

	assert.LessOrEqual(t, extractor.maxSeen.Load(), int32(DefaultPoolSize))
	assert.GreaterOrEqual(t, extractor.maxSeen.Load(), int32(1))
	assert.Len(t, resultsByName(result.Results), 10, "one result per file")
	assert.Len(t, h.progress.updates, 10)
}

type panickingExtractor struct {
	inner Extractor
}

func (p panickingExtractor) Extract(ctx context.Context, data []byte) ([]schema.Document, error) {
	if strings.Contains(string(data), "PANIC") {
		panic("decoder exploded")
	}
	return p.inner.Extract(ctx, data)
}

func TestIngestBatch_TaskPanic(t *testing.T) {
	base := newHarness(t)
	h := newHarness(t, WithExtractor(panickingExtractor{inner: base.coordinator.extractor}))
	files := []core.UploadedFile{
		pdfFile("ok.pdf", "Fine content."),
		{Name: "boom.pdf", Content: []byte("PANIC")},
	}

	result, err := h.coordinator.IngestBatch(context.Background(), files, core.ScopePersonal, uploader)
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	byName := resultsByName(result.Results)
	assert.True(t, byName["ok.pdf"].Succeeded())
	boom := byName["boom.pdf"]
	assert.Equal(t, core.StatusError, boom.Status)
	assert.Contains(t, boom.Error, ErrTaskFault.Error())
	assert.Contains(t, boom.Error, "decoder exploded")
}

type failingIndexes struct {
	calls atomic.Int32
}

func (f *failingIndexes) VectorStore(context.Context, core.IndexScope, string) (vectorstores.VectorStore, error) {
	f.calls.Add(1)
	return nil, errors.New("connection refused")
}

func TestIngestBatch_IndexResolutionFailure(t *testing.T) {
	registry, _, backend, err := badger.NewMemoryStorage(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()
	defer registry.Close()

	extractor := &slowExtractor{}
	indexes := &failingIndexes{}
	c, err := NewCoordinator(indexes, registry, WithExtractor(extractor))
	require.NoError(t, err)

	result, err := c.IngestBatch(context.Background(), []core.UploadedFile{pdfFile("a.pdf", "text")}, core.ScopeShared, uploader)
	assert.ErrorIs(t, err, ErrIndexResolution)
	assert.Contains(t, err.Error(), "connection refused")
	require.NotNil(t, result)
	assert.Empty(t, result.Results)
	assert.Equal(t, int32(1), indexes.calls.Load())
	assert.Zero(t, extractor.maxSeen.Load(), "no task may run")
}

func TestIngestBatch_RequiresUploader(t *testing.T) {
	h := newHarness(t)
	_, err := h.coordinator.IngestBatch(context.Background(), []core.UploadedFile{pdfFile("a.pdf", "x")}, core.ScopeShared, "")
	assert.ErrorIs(t, err, ErrUploaderRequired)
}

func TestIngestBatch_InvalidScope(t *testing.T) {
	h := newHarness(t)
	_, err := h.coordinator.IngestBatch(context.Background(), []core.UploadedFile{pdfFile("a.pdf", "x")}, core.IndexScope(9), uploader)
	assert.ErrorIs(t, err, ErrIndexResolution)
	assert.ErrorIs(t, err, core.ErrInvalidIndexScope)
}

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// DefaultSpoolThreshold is the input size above which Extract spools to disk.
const DefaultSpoolThreshold int64 = 8 * 1024 * 1024

// PageKey is the metadata key holding the 1-based page number.
const PageKey = "page"

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

// loadFunc parses a PDF into one document per page.
type loadFunc func(ctx context.Context, r io.ReaderAt, size int64, password string) ([]schema.Document, error)

// Extractor turns PDF bytes into page documents.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	tempDir        string
	spoolThreshold int64
	password       string
	logger         *slog.Logger
	load           loadFunc
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithTempDir sets the directory for spooled inputs. Empty means os.TempDir().
func WithTempDir(dir string) Option {
	return func(e *Extractor) error {
		if dir != "" {
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("%w: temp dir: %w", ErrInvalidOption, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%w: %s is not a directory", ErrInvalidOption, dir)
			}
		}
		e.tempDir = dir
		return nil
	}
}

// WithSpoolThreshold sets the size above which inputs are spooled to a temp file.
// Zero spools every input; a negative value never spools.
func WithSpoolThreshold(n int64) Option {
	return func(e *Extractor) error {
		e.spoolThreshold = n
		return nil
	}
}

// WithPassword sets the password used for encrypted files.
func WithPassword(password string) Option {
	return func(e *Extractor) error {
		e.password = password
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		e.logger = logger
		return nil
	}
}

// New creates an Extractor.
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		spoolThreshold: DefaultSpoolThreshold,
		logger:         slog.Default(),
		load:           loadWithLangchain,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "pdf-extractor")
	return e, nil
}

// Extract returns one document per non-blank page, in page order.
// Page documents carry the loader's metadata, including PageKey.
func (e *Extractor) Extract(ctx context.Context, data []byte) (pages []schema.Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrExtraction)
	}
	if !bytes.Contains(data[:min(len(data), headerWindow)], []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrExtraction)
	}

	// Registered before the spool cleanup so the temp file is gone before the panic is converted.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("parser panicked", "panic", r)
			pages = nil
			err = fmt.Errorf("%w: parser panic: %v", ErrExtraction, r)
		}
	}()

	reader, release, err := e.open(data)
	if err != nil {
		return nil, err
	}
	defer release()

	docs, err := e.load(ctx, reader, int64(len(data)), e.password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrExtraction)
	}

	pages = make([]schema.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}
		pages = append(pages, doc)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no extractable text in %d pages", ErrExtraction, len(docs))
	}

	e.logger.Debug("extracted pages", "pages", len(docs), "with_text", len(pages), "bytes", len(data))
	return pages, nil
}

// open returns a reader over data and a release func that must always be called.
func (e *Extractor) open(data []byte) (io.ReaderAt, func(), error) {
	if e.spoolThreshold < 0 || int64(len(data)) <= e.spoolThreshold {
		return bytes.NewReader(data), func() {}, nil
	}

	f, err := os.CreateTemp(e.tempDir, "pdfqa-*.pdf")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: creating spool file: %w", ErrExtraction, err)
	}
	release := func() {
		name := f.Name()
		if err := f.Close(); err != nil {
			e.logger.Warn("failed to close spool file", "path", name, "err", err)
		}
		if err := os.Remove(name); err != nil {
			e.logger.Warn("failed to remove spool file", "path", name, "err", err)
		}
	}
	if _, err := f.Write(data); err != nil {
		release()
		return nil, nil, fmt.Errorf("%w: writing spool file: %w", ErrExtraction, err)
	}
	return f, release, nil
}

func loadWithLangchain(ctx context.Context, r io.ReaderAt, size int64, password string) ([]schema.Document, error) {
	var opts []documentloaders.PDFOptions
	if password != "" {
		opts = append(opts, documentloaders.WithPassword(password))
	}
	return documentloaders.NewPDF(r, size, opts...).Load(ctx)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docconvert/internal/cache"
	"docconvert/internal/converter"
	"docconvert/internal/logging"
	"docconvert/internal/model"
	"docconvert/internal/repository"
	"docconvert/internal/storage"
)

var (
	ErrNoFile           = errors.New("no file uploaded")
	ErrConversionFailed = errors.New("conversion failed")
	ErrIDRequired       = errors.New("id is required")
	ErrInvalidID        = errors.New("id is not a valid uuid")
	ErrNotFound         = errors.New("conversion not found")
	ErrRecordsDisabled  = errors.New("conversion records are disabled")
)

const pdfContentType = "application/pdf"

// Upload is one file part received from a client.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// Result is the single outcome of the upload pipeline: either a converted
// document with its content opened for streaming, or an error. Body must be
// closed by the caller when Err is nil.
type Result struct {
	Document *model.StoredDocument
	Body     io.ReadCloser
	Err      error
}

// ConversionListResult is the service-level DTO for paginated records.
type ConversionListResult struct {
	Items []model.Conversion `json:"data"`
	Total int                `json:"total"`
}

// ConversionService defines the use cases of the document converter.
type ConversionService interface {
	// Receive persists an upload under a fresh stored name.
	Receive(ctx context.Context, up Upload) (*model.StoredDocument, error)

	// Convert reads a stored input, runs it through an engine and writes the
	// PDF next to it. Every failure is returned wrapped in ErrConversionFailed.
	Convert(ctx context.Context, in *model.StoredDocument) (*model.StoredDocument, error)

	// Process runs Receive and Convert and opens the output for streaming.
	Process(ctx context.Context, up Upload) Result

	// List returns conversion records using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ConversionListResult, error)

	// Get returns a single conversion record by its ID.
	Get(ctx context.Context, id string) (*model.Conversion, error)

	// Health pings every backing dependency; a nil value means healthy.
	Health(ctx context.Context) map[string]error
}

// Options carries the optional collaborators of the conversion pipeline.
// Zero values disable the matching feature.
type Options struct {
	Timeout   time.Duration
	Cache     cache.PDFCache
	Inspector converter.Inspector
	Records   repository.ConversionRepository
}

type conversionService struct {
	store     storage.Storage
	conv      converter.Converter
	timeout   time.Duration
	cache     cache.PDFCache
	inspector converter.Inspector
	records   repository.ConversionRepository
	now       func() time.Time
}

// NewConversionService constructs a new ConversionService.
func NewConversionService(store storage.Storage, conv converter.Converter, opts Options) ConversionService {
	return &conversionService{
		store:     store,
		conv:      conv,
		timeout:   opts.Timeout,
		cache:     opts.Cache,
		inspector: opts.Inspector,
		records:   opts.Records,
		now:       time.Now,
	}
}

func (s *conversionService) Receive(ctx context.Context, up Upload) (*model.StoredDocument, error) {
	if up.Reader == nil {
		return nil, ErrNoFile
	}
	id, stored := model.NewStoredName(up.Filename)

	info, err := s.store.Put(ctx, stored, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata: map[string]string{
			"original-filename": up.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	logging.Info("upload stored", "stored_name", stored, "size", info.Size)
	return &model.StoredDocument{
		ID:           id,
		OriginalName: up.Filename,
		StoredName:   stored,
		StoredPath:   info.Path,
		Format:       model.FormatOf(stored),
		Size:         info.Size,
		ContentType:  info.ContentType,
		CreatedAt:    s.now().UTC(),
	}, nil
}

func (s *conversionService) Convert(ctx context.Context, in *model.StoredDocument) (*model.StoredDocument, error) {
	start := s.now()
	stage := model.StageReceived
	rec := &model.Conversion{
		ID:        uuid.NewString(),
		InputName: in.StoredName,
		Format:    in.Format,
		InputSize: in.Size,
		CreatedAt: start.UTC(),
	}

	fail := func(err error) (*model.StoredDocument, error) {
		logging.Error("Error converting file", "stage", stage, "input", in.StoredName, "error", err)
		rec.Status = model.StatusFailed
		rec.Error = fmt.Sprintf("%s: %v", stage, err)
		s.record(ctx, rec, start)
		return nil, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	convCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		convCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rc, _, err := s.store.Get(convCtx, in.StoredName)
	if err != nil {
		return fail(fmt.Errorf("open input: %w", err))
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fail(fmt.Errorf("read input: %w", err))
	}
	if len(data) == 0 {
		return fail(converter.ErrEmptyInput)
	}
	stage = model.StageRead

	pdf, engine, err := s.render(convCtx, in.Format, data)
	if err != nil {
		return fail(err)
	}
	rec.Engine = engine
	if s.inspector != nil {
		pages, err := s.inspector.Inspect(pdf)
		if err != nil {
			return fail(err)
		}
		rec.Pages = pages
	}
	stage = model.StageConverted

	outName := model.OutputName(in.StoredName)
	info, err := s.store.Put(convCtx, outName, bytes.NewReader(pdf), storage.PutObjectOptions{
		Size:        int64(len(pdf)),
		ContentType: pdfContentType,
	})
	if err != nil {
		return fail(fmt.Errorf("write output: %w", err))
	}
	stage = model.StageWritten

	rec.OutputName = outName
	rec.OutputSize = info.Size
	rec.Status = model.StatusDone
	s.record(ctx, rec, start)
	stage = model.StageDone

	logging.Info("File converted successfully",
		"stage", stage,
		"output", info.Path,
		"engine", engine,
		"pages", rec.Pages,
		"duration_ms", rec.DurationMS,
	)
	return &model.StoredDocument{
		ID:           in.ID,
		OriginalName: model.ReplaceExt(model.SanitizeName(in.OriginalName)),
		StoredName:   outName,
		StoredPath:   info.Path,
		Format:       "pdf",
		Size:         info.Size,
		ContentType:  pdfContentType,
		CreatedAt:    s.now().UTC(),
	}, nil
}

// render serves from the cache when possible and fills it after a miss.
func (s *conversionService) render(ctx context.Context, format string, data []byte) ([]byte, string, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(format, data)
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
			return cached, "cache", nil
		}
	}

	pdf, engine, err := s.conv.Convert(ctx, format, data, model.PDFExt)
	if err != nil {
		return nil, engine, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, pdf)
	}
	return pdf, engine, nil
}

// record stores rec when records are enabled. A failed write is logged and
// never fails the conversion itself.
func (s *conversionService) record(ctx context.Context, rec *model.Conversion, start time.Time) {
	rec.DurationMS = s.now().Sub(start).Milliseconds()
	if s.records == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.records.Create(ctx, rec); err != nil {
		logging.Warn("conversion record not saved", "id", rec.ID, "error", err)
	}
}

func (s *conversionService) Process(ctx context.Context, up Upload) Result {
	in, err := s.Receive(ctx, up)
	if err != nil {
		return Result{Err: err}
	}
	out, err := s.Convert(ctx, in)
	if err != nil {
		return Result{Err: err}
	}
	body, _, err := s.store.Get(ctx, out.StoredName)
	if err != nil {
		logging.Error("Error sending file for download", "output", out.StoredName, "error", err)
		return Result{Err: fmt.Errorf("%w: open output: %w", ErrConversionFailed, err)}
	}
	return Result{Document: out, Body: body}
}

// List returns paginated records without exposing repository types.
func (s *conversionService) List(ctx context.Context, limit, offset int) (*ConversionListResult, error) {
	if s.records == nil {
		return nil, ErrRecordsDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.records.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ConversionListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a record by ID.
func (s *conversionService) Get(ctx context.Context, id string) (*model.Conversion, error) {
	if s.records == nil {
		return nil, ErrRecordsDisabled
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *conversionService) Health(ctx context.Context) map[string]error {
	out := map[string]error{"storage": s.store.Ping(ctx)}
	if s.records != nil {
		out["database"] = s.records.Ping(ctx)
	}
	if p, ok := s.cache.(pinger); ok {
		out["cache"] = p.Ping(ctx)
	}
	return out
}

package analyses

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/storage/object"
	"resume-review/internal/shared/telemetry"
	"resume-review/internal/uploads"
)

// DefaultProviderTimeout bounds a single provider call.
const DefaultProviderTimeout = 60 * time.Second

// Service contains the upload and history flows.
type Service struct {
	Repo            Repo
	Provider        Provider
	Tracker         uploads.Tracker
	Store           object.ObjectStore
	ProviderTimeout time.Duration
	Now             func() time.Time
}

// Upload validates, analyzes and stores one resume for client. Validation
// runs before the tracker, the provider and the store are touched.
func (s *Service) Upload(ctx context.Context, client string, up Upload) (Record, error) {
	size := up.SizeBytes
	if size <= 0 {
		size = int64(len(up.Data))
	}
	if err := ValidateUpload(up.ContentType, size); err != nil {
		metrics.IncUploadRejected()
		telemetry.Info("upload.rejected", map[string]any{
			"request_id":   requestIDFromContext(ctx),
			"client_id":    client,
			"file_name":    up.FileName,
			"content_type": up.ContentType,
			"size_bytes":   size,
			"reason":       err.Error(),
		})
		return Record{}, err
	}

	tracked := false
	if s.Tracker != nil {
		switch err := s.Tracker.Begin(ctx, client); {
		case err == nil:
			tracked = true
		case errors.Is(err, uploads.ErrUploadInFlight):
			return Record{}, err
		default:
			telemetry.Error("upload.state_unavailable", map[string]any{
				"request_id": requestIDFromContext(ctx),
				"client_id":  client,
				"error":      sanitizeError(err),
			})
		}
	}

	startedAt := s.now()
	outcome := uploads.StateFailed
	if tracked {
		defer func() {
			if err := s.Tracker.Finish(context.WithoutCancel(ctx), client, outcome); err != nil {
				telemetry.Error("upload.state_finish_failed", map[string]any{
					"request_id": requestIDFromContext(ctx),
					"client_id":  client,
					"outcome":    outcome,
					"error":      sanitizeError(err),
				})
			}
		}()
	}

	rec, err := s.analyze(ctx, up)
	if err != nil {
		metrics.IncUploadProviderFailed()
		kind := ProviderUnavailable
		var pe *ProviderError
		if errors.As(err, &pe) {
			kind = pe.Kind
		}
		telemetry.Error("upload.provider_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"client_id":  client,
			"file_name":  up.FileName,
			"kind":       string(kind),
			"error":      sanitizeError(err),
		})
		return Record{}, err
	}

	sourceKey := s.archive(ctx, client, up)

	rec.ID = ""
	rec.FileName = up.FileName
	rec.UploadDate = s.now().UTC().Truncate(time.Microsecond)
	rec.SourceKey = sourceKey

	stored, err := s.Repo.Create(ctx, rec)
	if err != nil {
		s.discardSource(ctx, client, sourceKey)
		if !errors.Is(err, ErrStoreWrite) {
			err = &StoreError{Op: opCreate, Err: err}
		}
		metrics.IncUploadStoreFailed()
		telemetry.Error("upload.store_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"client_id":  client,
			"file_name":  up.FileName,
			"error":      sanitizeError(err),
		})
		return Record{}, err
	}

	outcome = uploads.StateDone
	duration := float64(s.now().Sub(startedAt).Microseconds()) / 1000.0
	metrics.IncUploadAccepted()
	metrics.ObserveAnalysisDurationMs(duration)
	telemetry.Info("upload.complete", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"client_id":   client,
		"record_id":   stored.ID,
		"file_name":   stored.FileName,
		"rating":      stored.AIFeedback.Rating,
		"duration_ms": duration,
	})
	return stored, nil
}

// History returns every record, newest first. A failed read is reported as
// ErrStoreRead rather than an empty list.
func (s *Service) History(ctx context.Context) ([]Record, error) {
	recs, err := s.Repo.List(ctx)
	if err != nil {
		if !errors.Is(err, ErrStoreRead) {
			err = &StoreError{Op: opList, Err: err}
		}
		metrics.IncHistoryFailed()
		telemetry.Error("history.failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"error":      sanitizeError(err),
		})
		return nil, err
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Source opens the archived upload behind a record. Callers must close the reader.
func (s *Service) Source(ctx context.Context, id string) (io.ReadCloser, Record, error) {
	if s.Store == nil {
		return nil, Record{}, ErrNotFound
	}
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, Record{}, err
	}
	if rec.SourceKey == "" {
		return nil, Record{}, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, rec.SourceKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, Record{}, ErrNotFound
		}
		return nil, Record{}, &StoreError{Op: opGet, Err: err}
	}
	return rc, rec, nil
}

// archive keeps a copy of the upload when a store is configured. Failures are
// logged and the upload proceeds without a source key.
func (s *Service) archive(ctx context.Context, client string, up Upload) string {
	if s.Store == nil {
		return ""
	}
	key, _, _, err := s.Store.Save(ctx, client, up.FileName, bytes.NewReader(up.Data))
	if err != nil {
		telemetry.Error("upload.archive_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"client_id":  client,
			"file_name":  up.FileName,
			"error":      sanitizeError(err),
		})
		return ""
	}
	return key
}

// discardSource removes an archived file whose record was never stored.
func (s *Service) discardSource(ctx context.Context, client, key string) {
	if s.Store == nil || key == "" {
		return
	}
	if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
		telemetry.Error("upload.archive_cleanup_failed", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"client_id":   client,
			"storage_key": key,
			"error":       sanitizeError(err),
		})
	}
}

func (s *Service) analyze(ctx context.Context, up Upload) (Record, error) {
	if s.Provider == nil {
		return Record{}, providerError(ProviderUnavailable, errors.New("analysis provider not configured"))
	}
	timeout := s.ProviderTimeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rec, err := s.Provider.Analyze(pctx, up)
	if err == nil {
		return rec, nil
	}
	if errors.Is(pctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Kind == ProviderTimeout {
			return Record{}, err
		}
		return Record{}, &ProviderError{Kind: ProviderTimeout, Err: context.DeadlineExceeded}
	}
	return Record{}, providerError(ProviderUnavailable, err)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

package analyses

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"resume-review/internal/shared/storage/object"
)

func sampleRecord() Record {
	rec := sampleAnalysis()
	rec.FileName = "resume.pdf"
	rec.UploadDate = time.Date(2026, time.March, 2, 9, 30, 15, 123456000, time.UTC)
	return rec.Normalize()
}

// pdfBytes returns size bytes that start with a PDF header.
func pdfBytes(size int) []byte {
	data := bytes.Repeat([]byte{'x'}, size)
	copy(data, "%PDF-1.4\n")
	return data
}

// countingProvider records calls and returns a canned result.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	rec   Record
	err   error
	// block, when set, holds Analyze until it is closed or ctx ends.
	block   chan struct{}
	started chan struct{}
}

func (p *countingProvider) Analyze(ctx context.Context, up Upload) (Record, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return Record{}, ctx.Err()
		}
	}
	if p.err != nil {
		return Record{}, p.err
	}
	return p.rec, nil
}

func (p *countingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// countingRepo wraps a MemoryRepo and can be told to fail.
type countingRepo struct {
	*MemoryRepo
	mu        sync.Mutex
	creates   int
	createErr error
	listErr   error
}

func newCountingRepo() *countingRepo {
	return &countingRepo{MemoryRepo: NewMemoryRepo()}
}

func (r *countingRepo) Create(ctx context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	r.creates++
	err := r.createErr
	r.mu.Unlock()
	if err != nil {
		return Record{}, err
	}
	return r.MemoryRepo.Create(ctx, rec)
}

func (r *countingRepo) List(ctx context.Context) ([]Record, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.MemoryRepo.List(ctx)
}

func (r *countingRepo) Creates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

// memStore is an in-memory object store.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Save(ctx context.Context, owner, fileName string, r io.Reader) (string, int64, string, error) {
	if s.saveErr != nil {
		return "", 0, "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := owner + "/" + fileName
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, int64(len(data)), ContentTypePDF, nil
}

func (s *memStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

var errBoom = errors.New("boom")

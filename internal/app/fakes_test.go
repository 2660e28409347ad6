package app_test

import (
	"context"
	"errors"
	"sync"

	"play_reviews/internal/domain"
)

// scriptedFetcher serves pages in order and records every request.
type scriptedFetcher struct {
	mu    sync.Mutex
	pages []domain.ReviewPage
	errAt int // 1-based call that fails; 0 never
	reqs  []domain.PageRequest
}

var errFetch = errors.New("boom")

func (f *scriptedFetcher) FetchPage(_ context.Context, pr domain.PageRequest) (domain.ReviewPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, pr)
	n := len(f.reqs)
	if n == f.errAt {
		return domain.ReviewPage{}, errFetch
	}
	if n > len(f.pages) {
		return domain.ReviewPage{Next: domain.EndToken}, nil
	}
	return f.pages[n-1], nil
}

func (f *scriptedFetcher) requests() []domain.PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PageRequest(nil), f.reqs...)
}

type fakeProber struct {
	title string
	err   error
	calls int
}

func (p *fakeProber) AppDetails(_ context.Context, _ string) (string, error) {
	p.calls++
	return p.title, p.err
}

type memSink struct {
	records []domain.Review
	states  []domain.State
	failOn  int
}

func (s *memSink) WriteRecord(_ string, r domain.Review) error {
	if s.failOn > 0 && len(s.records)+1 == s.failOn {
		return errors.New("sink closed")
	}
	s.records = append(s.records, r)
	return nil
}

func (s *memSink) WriteState(_ string, st domain.State) error {
	s.states = append(s.states, st)
	return nil
}

package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"play_reviews/internal/app"
	"play_reviews/internal/domain"
)

func collect(t *testing.T, s *app.ReviewsStream) ([]domain.Review, app.ReadStats, error) {
	t.Helper()
	var got []domain.Review
	stats, err := s.Read(context.Background(), func(r domain.Review) error {
		got = append(got, r)
		return nil
	})
	return got, stats, err
}

func TestReviewsStream_RequestShapeAndDefaults(t *testing.T) {
	f := &scriptedFetcher{pages: []domain.ReviewPage{
		{Reviews: []domain.RawReview{raw("a", "2022-06-01T00:00:00")}, Next: domain.PageToken{Value: "T1"}},
	}}
	s, err := app.NewReviewsStream(f, validConfig())
	require.NoError(t, err)

	_, stats, err := collect(t, s)
	require.NoError(t, err)

	reqs := f.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, domain.PageRequest{AppID: "com.example", Language: "en", Country: "US", Count: 100}, reqs[0])
	assert.Equal(t, "T1", reqs[1].Token.Value)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, map[string]int{"en": 1}, stats.PerLanguage)
}

func TestReviewsStream_AllLanguagesInOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Languages = domain.LanguagesConfig{Type: domain.LanguagesAll}
	f := &scriptedFetcher{} // every page is empty + END
	s, err := app.NewReviewsStream(f, cfg)
	require.NoError(t, err)

	_, _, err = collect(t, s)
	require.NoError(t, err)

	reqs := f.requests()
	require.Len(t, reqs, 44)
	for i, lang := range domain.AllLanguages() {
		assert.Equal(t, lang, reqs[i].Language)
		assert.True(t, reqs[i].Token.IsFirstPage())
	}
}

func TestReviewsStream_WatermarkNeverDecreases(t *testing.T) {
	f := &scriptedFetcher{pages: []domain.ReviewPage{
		{Reviews: []domain.RawReview{raw("a", "2022-03-01T00:00:00"), raw("b", "2022-06-01T00:00:00"), raw("c", "2022-02-01T00:00:00")}, Next: domain.PageToken{Value: "T"}},
		{Reviews: []domain.RawReview{raw("d", "2022-04-01T00:00:00"), raw("e", "")}, Next: domain.EndToken},
	}}
	s, err := app.NewReviewsStream(f, validConfig())
	require.NoError(t, err)

	got, stats, err := collect(t, s)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 5, stats.Emitted)
	assert.Equal(t, "e", got[4].ReviewID, "fetch order is preserved")
	assert.Equal(t, domain.State{At: "2022-06-01T00:00:00"}, s.State())
}

func TestReviewsStream_ErrorAbortsRun(t *testing.T) {
	f := &scriptedFetcher{
		pages: []domain.ReviewPage{{Reviews: []domain.RawReview{raw("a", "2022-06-01T00:00:00")}, Next: domain.PageToken{Value: "T"}}},
		errAt: 2,
	}
	s, err := app.NewReviewsStream(f, validConfig())
	require.NoError(t, err)

	got, _, err := collect(t, s)
	assert.ErrorIs(t, err, errFetch)
	assert.Contains(t, err.Error(), "lang=en")
	assert.Len(t, got, 1, "records before the failure were already emitted")
	assert.Len(t, f.requests(), 2, "no request after the failure")
}

func TestReviewsStream_EmitErrorStops(t *testing.T) {
	f := &scriptedFetcher{pages: []domain.ReviewPage{
		{Reviews: []domain.RawReview{raw("a", ""), raw("b", "")}, Next: domain.PageToken{Value: "T"}},
	}}
	s, err := app.NewReviewsStream(f, validConfig())
	require.NoError(t, err)
	sink := &memSink{failOn: 2}

	_, err = s.Read(context.Background(), func(r domain.Review) error { return sink.WriteRecord("reviews", r) })
	require.Error(t, err)
	assert.Len(t, f.requests(), 1)
}

func TestReviewsStream_DelayBetweenPagesOnly(t *testing.T) {
	cfg := validConfig()
	cfg.TimeoutMilliseconds = 30
	f := &scriptedFetcher{pages: []domain.ReviewPage{
		{Reviews: []domain.RawReview{raw("a", "")}, Next: domain.PageToken{Value: "T"}},
	}}
	s, err := app.NewReviewsStream(f, cfg)
	require.NoError(t, err)

	start := time.Now()
	_, _, err = collect(t, s)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	// a single final page never waits
	cfg.TimeoutMilliseconds = 60_000
	s, err = app.NewReviewsStream(&scriptedFetcher{}, cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = s.Read(ctx, func(domain.Review) error { return nil })
	require.NoError(t, err)
}

func TestReviewsStream_DelayHonorsCancel(t *testing.T) {
	cfg := validConfig()
	cfg.TimeoutMilliseconds = 60_000
	f := &scriptedFetcher{pages: []domain.ReviewPage{
		{Reviews: []domain.RawReview{raw("a", "")}, Next: domain.PageToken{Value: "T"}},
	}}
	s, err := app.NewReviewsStream(f, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Read(ctx, func(domain.Review) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewReviewsStream_BadStartDate(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate = "soon"
	_, err := app.NewReviewsStream(&scriptedFetcher{}, cfg)
	assert.Error(t, err)
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"play_reviews/internal/adapters/observability"
	"play_reviews/internal/domain"
)

const (
	StreamName = "reviews"
	PrimaryKey = "reviewId"
)

// ReviewsStream pages through the reviews of one app, language by language.
type ReviewsStream struct {
	fetcher   domain.ReviewFetcher
	appID     string
	country   string
	count     int
	languages []string
	delay     time.Duration
	cursor    *CursorTracker
}

// ReadStats summarizes one run.
type ReadStats struct {
	Pages       int
	Emitted     int
	Filtered    int
	PerLanguage map[string]int
}

func NewReviewsStream(f domain.ReviewFetcher, cfg domain.Config) (*ReviewsStream, error) {
	cfg = cfg.WithDefaults()
	cur, err := NewCursorTrackerFromDate(cfg.StartDate)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("at", cur.State().At).
		Msg("read latest reviews timestamp from config")

	return &ReviewsStream{
		fetcher:   f,
		appID:     cfg.AppID,
		country:   cfg.Country,
		count:     cfg.MaxReviewsPerRequest,
		languages: ExpandLanguages(cfg.Languages),
		delay:     time.Duration(cfg.TimeoutMilliseconds) * time.Millisecond,
		cursor:    cur,
	}, nil
}

func (s *ReviewsStream) Name() string { return StreamName }

func (s *ReviewsStream) Languages() []string { return append([]string(nil), s.languages...) }

// SetState restores the watermark persisted by a previous run.
func (s *ReviewsStream) SetState(st domain.State) error {
	if err := s.cursor.Restore(st); err != nil {
		return err
	}
	if st.At != "" {
		log.Info().Str("at", st.At).Msg("read latest review timestamp from state")
	}
	return nil
}

// State is the watermark to persist after the run.
func (s *ReviewsStream) State() domain.State {
	st := s.cursor.State()
	log.Debug().Str("at", st.At).Msg("latest review timestamp")
	return st
}

// Read fetches pages until the last language is exhausted, calling emit for
// every kept review in fetch order. Any fetch or decode error aborts the run.
func (s *ReviewsStream) Read(ctx context.Context, emit func(domain.Review) error) (ReadStats, error) {
	stats := ReadStats{PerLanguage: make(map[string]int, len(s.languages))}
	st := PageState{Done: len(s.languages) == 0}
	langCount := 0

	for !st.Done {
		lang := s.languages[st.LangIndex]
		page, err := s.fetcher.FetchPage(ctx, domain.PageRequest{
			AppID:    s.appID,
			Language: lang,
			Country:  s.country,
			Count:    s.count,
			Token:    st.Token,
		})
		if err != nil {
			return stats, fmt.Errorf("fetch reviews (lang=%s): %w", lang, err)
		}

		res := Advance(st, s.languages, page, s.cursor.Boundary())
		for _, rv := range res.Kept {
			s.cursor.Observe(rv)
			if err := emit(rv); err != nil {
				return stats, fmt.Errorf("emit review %s: %w", rv.ReviewID, err)
			}
		}
		stats.Pages++
		stats.Emitted += len(res.Kept)
		stats.Filtered += res.Filtered
		langCount += len(res.Kept)
		observability.ObservePage(lang, len(res.Kept), res.Filtered)

		if res.LanguageDone {
			log.Info().Str("language", lang).Int("count", langCount).Msg("fetched reviews for language")
			stats.PerLanguage[lang] = langCount
			langCount = 0
		}

		if !res.Next.Done {
			if err := waitCtx(ctx, s.delay); err != nil {
				return stats, err
			}
		}
		st = res.Next
	}

	log.Info().Int("total", stats.Emitted).Int("pages", stats.Pages).Msg("totally fetched reviews")
	return stats, nil
}

// waitCtx sleeps for d unless ctx ends first.
func waitCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package app

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"play_reviews/internal/domain"
)

//go:embed schemas/reviews.json
var reviewsSchema []byte

// Source is the connector facade: check, discover and read.
type Source struct {
	fetcher domain.ReviewFetcher
	prober  domain.AppProber
}

func NewSource(f domain.ReviewFetcher, p domain.AppProber) *Source {
	return &Source{fetcher: f, prober: p}
}

// ExpandLanguages resolves the languages block into the ordered list to fetch.
func ExpandLanguages(lc domain.LanguagesConfig) []string {
	if lc.Type == domain.LanguagesAll {
		return domain.AllLanguages()
	}
	return append([]string(nil), lc.Selected...)
}

// CheckResult is the outcome of a connection check. Failures name the field.
type CheckResult struct {
	OK       bool                `json:"ok"`
	Failures []domain.FieldError `json:"failures,omitempty"`
}

// Check validates cfg and probes the app's store page.
func (s *Source) Check(ctx context.Context, cfg domain.Config) CheckResult {
	log.Info().Msg("checking connection configuration")

	res := CheckResult{Failures: ValidateConfig(cfg)}

	// the probe needs an app id; other field failures don't block it
	if cfg.AppID != "" {
		log.Info().Str("app_id", cfg.AppID).Msg("checking app_id")
		title, err := s.prober.AppDetails(ctx, cfg.AppID)
		if err != nil {
			text := fmt.Sprintf("\"app_id\" %q is invalid!", cfg.AppID)
			if !errors.Is(err, domain.ErrNotFound) {
				text = fmt.Sprintf("%s (%v)", text, err)
			}
			log.Error().Err(err).Str("app_id", cfg.AppID).Msg("app_id check failed")
			res.Failures = append(res.Failures, domain.FieldError{Key: "app_id", Value: cfg.AppID, ErrorText: text})
		} else {
			log.Info().Str("app_id", cfg.AppID).Str("title", title).Msg("app_id is valid")
		}
	}

	res.OK = len(res.Failures) == 0
	if res.OK {
		log.Info().Msg("connection configuration is valid")
	}
	return res
}

// Streams builds the single reviews stream.
func (s *Source) Streams(cfg domain.Config) ([]*ReviewsStream, error) {
	rs, err := NewReviewsStream(s.fetcher, cfg)
	if err != nil {
		return nil, err
	}
	return []*ReviewsStream{rs}, nil
}

// CatalogStream describes one stream to the host.
type CatalogStream struct {
	Name                    string          `json:"name"`
	JSONSchema              json.RawMessage `json:"json_schema"`
	SupportedSyncModes      []string        `json:"supported_sync_modes"`
	SourceDefinedCursor     bool            `json:"source_defined_cursor"`
	DefaultCursorField      []string        `json:"default_cursor_field"`
	SourceDefinedPrimaryKey [][]string      `json:"source_defined_primary_key"`
}

type Catalog struct {
	Streams []CatalogStream `json:"streams"`
}

func (s *Source) Discover() Catalog {
	return Catalog{Streams: []CatalogStream{{
		Name:                    StreamName,
		JSONSchema:              json.RawMessage(reviewsSchema),
		SupportedSyncModes:      []string{"full_refresh", "incremental"},
		SourceDefinedCursor:     true,
		DefaultCursorField:      []string{domain.CursorField},
		SourceDefinedPrimaryKey: [][]string{{PrimaryKey}},
	}}}
}

// Read runs every stream into sink and returns the new state.
// prev may be nil on the first run.
func (s *Source) Read(ctx context.Context, cfg domain.Config, prev *domain.State, sink domain.RecordSink) (domain.State, error) {
	if errs := ValidateConfig(cfg); len(errs) > 0 {
		return domain.State{}, fmt.Errorf("invalid config: %w", errors.Join(fieldErrs(errs)...))
	}
	streams, err := s.Streams(cfg)
	if err != nil {
		return domain.State{}, err
	}

	var out domain.State
	for _, st := range streams {
		if prev != nil {
			if err := st.SetState(*prev); err != nil {
				return domain.State{}, err
			}
		}
		name := st.Name()
		if _, err := st.Read(ctx, func(r domain.Review) error { return sink.WriteRecord(name, r) }); err != nil {
			return domain.State{}, err
		}
		out = st.State()
		if err := sink.WriteState(name, out); err != nil {
			return domain.State{}, err
		}
		log.Info().Str("stream", name).Str("at", out.At).Msg("saved latest review timestamp")
	}
	return out, nil
}

func fieldErrs(in []domain.FieldError) []error {
	out := make([]error, 0, len(in))
	for _, e := range in {
		out = append(out, e)
	}
	return out
}

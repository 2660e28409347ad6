package domain

import "context"

// ReviewFetcher performs one page request against the store.
type ReviewFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (ReviewPage, error)
}

// AppProber checks that an app page exists and returns its title.
type AppProber interface {
	AppDetails(ctx context.Context, appID string) (title string, err error)
}

// StateStore persists the stream watermark between runs.
type StateStore interface {
	Load(ctx context.Context, key string) (State, bool, error)
	Save(ctx context.Context, key string, s State) error
}

// RecordSink receives every kept review in fetch order.
type RecordSink interface {
	WriteRecord(stream string, r Review) error
	WriteState(stream string, s State) error
}

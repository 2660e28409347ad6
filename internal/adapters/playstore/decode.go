package playstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"play_reviews/internal/domain"
)

// ErrUnexpectedFormat means the batchexecute response no longer has the
// shape the decoder knows. There is no recovery: the endpoint is unversioned.
var ErrUnexpectedFormat = errors.New("playstore: unexpected response format")

// The response starts with an XSSI guard; everything after it is the envelope.
var reviewsPattern = regexp.MustCompile(`\)]}'\n\n([\s\S]+)`)

// PageDecoder turns a raw batchexecute response into a page of reviews.
type PageDecoder interface {
	DecodePage(raw []byte) (domain.ReviewPage, error)
}

// BatchExecuteDecoder is the decoder for the UsvDTd reviews payload.
type BatchExecuteDecoder struct{}

func (BatchExecuteDecoder) DecodePage(raw []byte) (domain.ReviewPage, error) {
	payload, err := extractPayload(raw)
	if err != nil {
		return domain.ReviewPage{}, err
	}
	return domain.ReviewPage{
		Reviews: reviewsFrom(payload),
		Next:    tokenFrom(payload),
	}, nil
}

// DecodeReviews maps every review tuple in the response.
func DecodeReviews(raw []byte) ([]domain.RawReview, error) {
	payload, err := extractPayload(raw)
	if err != nil {
		return nil, err
	}
	return reviewsFrom(payload), nil
}

// DecodeNextToken returns the continuation token or domain.EndToken.
func DecodeNextToken(raw []byte) (domain.PageToken, error) {
	payload, err := extractPayload(raw)
	if err != nil {
		return domain.PageToken{}, err
	}
	return tokenFrom(payload), nil
}

// extractPayload runs the pattern match and both JSON decodes.
// A null inner payload decodes to an empty structure.
func extractPayload(raw []byte) ([]any, error) {
	m := reviewsPattern.FindSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: reviews envelope not found", ErrUnexpectedFormat)
	}
	var envelope []any
	if err := json.Unmarshal(m[1], &envelope); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrUnexpectedFormat, err)
	}
	slot := lookup(envelope, 0, 2)
	if slot == nil {
		return nil, nil
	}
	inner, ok := slot.(string)
	if !ok {
		return nil, fmt.Errorf("%w: payload slot is %T", ErrUnexpectedFormat, slot)
	}
	var payload []any
	if err := json.Unmarshal([]byte(inner), &payload); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrUnexpectedFormat, err)
	}
	return payload, nil
}

func reviewsFrom(payload []any) []domain.RawReview {
	if len(payload) == 0 {
		return nil
	}
	tuples, _ := payload[0].([]any)
	out := make([]domain.RawReview, 0, len(tuples))
	for _, t := range tuples {
		out = append(out, mapReview(t))
	}
	return out
}

// tokenFrom reads payload[-1][-1]. The END decision is structural only.
func tokenFrom(payload []any) domain.PageToken {
	if len(payload) == 0 {
		return domain.EndToken
	}
	last, ok := payload[len(payload)-1].([]any)
	if !ok || len(last) == 0 {
		return domain.EndToken
	}
	tok, ok := last[len(last)-1].(string)
	if !ok || tok == "" {
		return domain.EndToken
	}
	return domain.PageToken{Value: tok}
}

/********** field positions **********/

var (
	posReviewID     = []int{0}
	posUserName     = []int{1, 0}
	posUserImage    = []int{1, 1, 3, 2}
	posScore        = []int{2}
	posContent      = []int{4}
	posAt           = []int{5, 0}
	posThumbsUp     = []int{6}
	posReplyContent = []int{7, 1}
	posRepliedAt    = []int{7, 2, 0}
	posCreatedVer   = []int{10}
	posAppVersion   = []int{10}
)

func mapReview(t any) domain.RawReview {
	id, _ := lookup(t, posReviewID...).(string)
	return domain.RawReview{
		ReviewID:             id,
		UserName:             lookupStr(t, posUserName...),
		UserImage:            lookupStr(t, posUserImage...),
		Content:              lookupStr(t, posContent...),
		Score:                lookupInt(t, posScore...),
		ThumbsUpCount:        lookupInt(t, posThumbsUp...),
		ReviewCreatedVersion: lookupStr(t, posCreatedVer...),
		At:                   lookupUnix(t, posAt...),
		ReplyContent:         lookupStr(t, posReplyContent...),
		RepliedAt:            lookupUnix(t, posRepliedAt...),
		AppVersion:           lookupStr(t, posAppVersion...),
	}
}

// lookup walks nested arrays by index; any miss yields nil.
func lookup(v any, path ...int) any {
	cur := v
	for _, i := range path {
		arr, ok := cur.([]any)
		if !ok || i < 0 || i >= len(arr) {
			return nil
		}
		cur = arr[i]
	}
	return cur
}

func lookupStr(v any, path ...int) *string {
	if s, ok := lookup(v, path...).(string); ok {
		return &s
	}
	return nil
}

func lookupInt(v any, path ...int) *int {
	if f, ok := lookup(v, path...).(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func lookupUnix(v any, path ...int) *time.Time {
	if f, ok := lookup(v, path...).(float64); ok {
		t := time.Unix(int64(f), 0).UTC()
		return &t
	}
	return nil
}

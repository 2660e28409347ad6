package app

import (
	"time"

	"play_reviews/internal/domain"
)

// PageState is the position of the stream: which language, which page.
// The zero value fetches the first page of the first language.
type PageState struct {
	LangIndex int
	Token     domain.PageToken
	Done      bool
}

// PageResult is the outcome of applying one fetched page to a PageState.
type PageResult struct {
	Kept         []domain.Review
	Filtered     int
	LanguageDone bool // the page closed its language
	Next         PageState
}

// Advance converts and filters one page, then decides where the stream goes:
// same language with the returned token, the next language from its first
// page, or Done. A page that keeps nothing always leaves its language.
func Advance(st PageState, languages []string, page domain.ReviewPage, boundary time.Time) PageResult {
	lang := languages[st.LangIndex]

	res := PageResult{Kept: make([]domain.Review, 0, len(page.Reviews))}
	for _, raw := range page.Reviews {
		rv := mapReview(raw, lang)
		if !keepAfter(rv.At, boundary) {
			res.Filtered++
			continue
		}
		res.Kept = append(res.Kept, rv)
	}

	if len(res.Kept) == 0 || page.Next.End {
		res.LanguageDone = true
		res.Next = PageState{LangIndex: st.LangIndex + 1}
		if res.Next.LangIndex >= len(languages) {
			res.Next.Done = true
		}
		return res
	}

	res.Next = PageState{LangIndex: st.LangIndex, Token: page.Next}
	return res
}

// keepAfter keeps records strictly newer than boundary, and records with no
// (or unreadable) timestamp since nothing can be compared.
func keepAfter(at *string, boundary time.Time) bool {
	if at == nil {
		return true
	}
	t, err := time.Parse(domain.TimeLayout, *at)
	if err != nil {
		return true
	}
	return t.After(boundary)
}

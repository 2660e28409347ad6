package app

import (
	"time"

	"play_reviews/internal/domain"
)

/********** review mapper **********/

// mapReview formats timestamps and tags the record with the language it was fetched under.
func mapReview(r domain.RawReview, lang string) domain.Review {
	return domain.Review{
		ReviewID:             r.ReviewID,
		UserName:             r.UserName,
		UserImage:            r.UserImage,
		Content:              r.Content,
		Score:                r.Score,
		ThumbsUpCount:        r.ThumbsUpCount,
		ReviewCreatedVersion: r.ReviewCreatedVersion,
		At:                   formatTime(r.At),
		ReplyContent:         r.ReplyContent,
		RepliedAt:            formatTime(r.RepliedAt),
		AppVersion:           r.AppVersion,
		Language:             lang,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(domain.TimeLayout)
	return &s
}

package domain

import "time"

// TimeLayout is the wire format for every timestamp the connector emits or persists.
const TimeLayout = "2006-01-02T15:04:05"

// DateLayout is the format of the configured start_date.
const DateLayout = "2006-01-02"

// RawReview is one review tuple decoded from the store payload, before
// timestamps are formatted and the language tag is applied.
type RawReview struct {
	ReviewID             string
	UserName             *string
	UserImage            *string
	Content              *string
	Score                *int
	ThumbsUpCount        *int
	ReviewCreatedVersion *string
	At                   *time.Time
	ReplyContent         *string
	RepliedAt            *time.Time
	AppVersion           *string
}

// Review is the emitted record. At is the cursor field, ReviewID the primary key.
type Review struct {
	ReviewID             string  `json:"reviewId"`
	UserName             *string `json:"userName"`
	UserImage            *string `json:"userImage"`
	Content              *string `json:"content"`
	Score                *int    `json:"score"`
	ThumbsUpCount        *int    `json:"thumbsUpCount"`
	ReviewCreatedVersion *string `json:"reviewCreatedVersion"`
	At                   *string `json:"at"`
	ReplyContent         *string `json:"replyContent"`
	RepliedAt            *string `json:"repliedAt"`
	AppVersion           *string `json:"appVersion"`
	Language             string  `json:"language"`
}

// PageToken is the pagination slot handed back by the store. The zero value
// requests the first page of a language.
type PageToken struct {
	Value string
	End   bool // end-of-language marker
}

// EndToken is the sentinel returned when a language has no further pages.
var EndToken = PageToken{End: true}

// IsFirstPage reports whether t requests a first page (no continuation).
func (t PageToken) IsFirstPage() bool { return t.End || t.Value == "" }

// ReviewPage is one decoded response.
type ReviewPage struct {
	Reviews []RawReview
	Next    PageToken
}

// PageRequest describes a single batchexecute call.
type PageRequest struct {
	AppID    string
	Language string
	Country  string
	Count    int
	Token    PageToken
}

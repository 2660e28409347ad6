package playstore

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const (
	reviewsPath = "/_/PlayStoreUi/data/batchexecute"
	detailsPath = "/store/apps/details"
	rpcID       = "UsvDTd"

	// SortNewest is the store's sort code for "newest first".
	SortNewest = 2
)

// ReviewsRequest is the argument list of the UsvDTd batched call.
// A nil Score means no star filter; an empty Token requests the first page.
type ReviewsRequest struct {
	AppID string
	Count int
	Sort  int
	Score *int
	Token string
}

// Encode renders the form body: f.req=[[["UsvDTd","<inner>",null,"generic"]]].
// inner is itself a JSON document carried as a string.
func (r ReviewsRequest) Encode() string {
	sort := r.Sort
	if sort == 0 {
		sort = SortNewest
	}
	score := "null"
	if r.Score != nil {
		score = strconv.Itoa(*r.Score)
	}
	token := "null"
	if r.Token != "" {
		token = quote(r.Token)
	}
	inner := fmt.Sprintf(`[null,null,[2,%d,[%d,null,%s],null,[null,%s]],[%s,7]]`,
		sort, r.Count, token, score, quote(r.AppID))

	envelope, _ := json.Marshal([]any{[]any{[]any{rpcID, inner, nil, "generic"}}})
	return url.Values{"f.req": {string(envelope)}}.Encode()
}

// reviewsQuery carries the language and country of a page request.
func reviewsQuery(lang, country string) url.Values {
	return url.Values{"hl": {lang}, "gl": {country}}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

package playstore_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"play_reviews/internal/adapters/playstore"
	"play_reviews/internal/domain"
)

// batchResponse wraps payload the way batchexecute does: XSSI guard, envelope,
// payload JSON carried as a string in slot [0][2].
func batchResponse(t *testing.T, payload any) []byte {
	t.Helper()
	inner, err := json.Marshal(payload)
	require.NoError(t, err)
	env, err := json.Marshal([]any{
		[]any{"wrb.fr", "UsvDTd", string(inner), nil, nil, nil, "generic"},
		[]any{"di", 45},
	})
	require.NoError(t, err)
	return append([]byte(")]}'\n\n"), env...)
}

func reviewTuple(id string, at int64) []any {
	return []any{
		id,
		[]any{"Ana", []any{nil, 2, nil, []any{nil, 2, "https://img/ana"}}},
		4,
		nil,
		"Works fine",
		[]any{at, 0},
		12,
		[]any{nil, "Thanks!", []any{at + 3600, 0}},
		nil,
		nil,
		"3.1.0",
	}
}

func TestDecodePage_MapsFieldsAndToken(t *testing.T) {
	raw := batchResponse(t, []any{
		[]any{reviewTuple("gp:1", 1654041600)},
		nil,
		[]any{nil, "NEXT"},
	})

	page, err := playstore.BatchExecuteDecoder{}.DecodePage(raw)
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)

	r := page.Reviews[0]
	assert.Equal(t, "gp:1", r.ReviewID)
	assert.Equal(t, "Ana", *r.UserName)
	assert.Equal(t, "https://img/ana", *r.UserImage)
	assert.Equal(t, "Works fine", *r.Content)
	assert.Equal(t, 4, *r.Score)
	assert.Equal(t, 12, *r.ThumbsUpCount)
	assert.Equal(t, "3.1.0", *r.ReviewCreatedVersion)
	assert.Equal(t, "3.1.0", *r.AppVersion)
	assert.Equal(t, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), *r.At)
	assert.Equal(t, "Thanks!", *r.ReplyContent)
	assert.Equal(t, time.Date(2022, 6, 1, 1, 0, 0, 0, time.UTC), *r.RepliedAt)

	assert.Equal(t, domain.PageToken{Value: "NEXT"}, page.Next)
}

func TestDecodePage_MissingPositionsAreAbsent(t *testing.T) {
	raw := batchResponse(t, []any{
		[]any{[]any{"gp:2", nil, 1}},
		[]any{},
	})

	page, err := playstore.BatchExecuteDecoder{}.DecodePage(raw)
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	r := page.Reviews[0]
	assert.Equal(t, "gp:2", r.ReviewID)
	assert.Nil(t, r.UserName)
	assert.Nil(t, r.At)
	assert.Nil(t, r.RepliedAt)
	assert.Equal(t, 1, *r.Score)
	assert.True(t, page.Next.End, "empty trailing slot ends the language")
}

func TestDecodeNextToken_Sentinels(t *testing.T) {
	cases := map[string]any{
		"empty payload":       []any{},
		"empty trailing slot": []any{[]any{}, []any{}},
		"trailing slot null":  []any{[]any{}, nil},
		"trailing token null": []any{[]any{}, []any{nil, nil}},
		"null payload string": nil,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var raw []byte
			if payload == nil {
				raw = []byte(")]}'\n\n" + `[["wrb.fr","UsvDTd",null,null,null,null,"generic"]]`)
			} else {
				raw = batchResponse(t, payload)
			}
			tok, err := playstore.DecodeNextToken(raw)
			require.NoError(t, err)
			assert.Equal(t, domain.EndToken, tok)

			revs, err := playstore.DecodeReviews(raw)
			require.NoError(t, err)
			assert.Empty(t, revs)
		})
	}
}

func TestDecode_FormatChangeIsFatal(t *testing.T) {
	for name, raw := range map[string]string{
		"no guard":        `<html>sorry</html>`,
		"broken envelope": ")]}'\n\n[[\"wrb.fr\"",
		"payload garbage": ")]}'\n\n" + `[["wrb.fr","UsvDTd","{not json",null]]`,
		"payload number":  ")]}'\n\n" + `[["wrb.fr","UsvDTd",42,null]]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := playstore.BatchExecuteDecoder{}.DecodePage([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, playstore.ErrUnexpectedFormat))
		})
	}
}

package domain

// CursorField is the record field the watermark tracks.
const CursorField = "at"

// State is the persisted watermark: {"at": "YYYY-MM-DDTHH:MM:SS"}.
type State struct {
	At string `json:"at,omitempty"`
}

// Package output writes the connector's protocol messages as JSON lines.
package output

import (
	"encoding/json"
	"io"
	"time"

	"play_reviews/internal/domain"
)

const (
	TypeRecord           = "RECORD"
	TypeState            = "STATE"
	TypeCatalog          = "CATALOG"
	TypeConnectionStatus = "CONNECTION_STATUS"
)

type Message struct {
	Type             string            `json:"type"`
	Record           *RecordMessage    `json:"record,omitempty"`
	State            *StateMessage     `json:"state,omitempty"`
	Catalog          any               `json:"catalog,omitempty"`
	ConnectionStatus *ConnectionStatus `json:"connectionStatus,omitempty"`
}

type RecordMessage struct {
	Stream    string        `json:"stream"`
	Data      domain.Review `json:"data"`
	EmittedAt int64         `json:"emitted_at"` // unix millis
}

type StateMessage struct {
	Stream string       `json:"stream,omitempty"`
	Data   domain.State `json:"data"`
}

type ConnectionStatus struct {
	Status  string `json:"status"` // SUCCEEDED | FAILED
	Message string `json:"message,omitempty"`
}

// Writer is a domain.RecordSink over an io.Writer, one message per line.
type Writer struct {
	enc *json.Encoder
	now func() time.Time
}

func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc, now: time.Now}
}

func (w *Writer) WriteRecord(stream string, r domain.Review) error {
	return w.enc.Encode(Message{Type: TypeRecord, Record: &RecordMessage{
		Stream:    stream,
		Data:      r,
		EmittedAt: w.now().UnixMilli(),
	}})
}

func (w *Writer) WriteState(stream string, s domain.State) error {
	return w.enc.Encode(Message{Type: TypeState, State: &StateMessage{Stream: stream, Data: s}})
}

func (w *Writer) WriteCatalog(c any) error {
	return w.enc.Encode(Message{Type: TypeCatalog, Catalog: c})
}

// WriteConnectionStatus reports a check; message carries the failure payload as JSON.
func (w *Writer) WriteConnectionStatus(ok bool, failures any) error {
	cs := &ConnectionStatus{Status: "SUCCEEDED"}
	if !ok {
		cs.Status = "FAILED"
		b, err := json.Marshal(failures)
		if err != nil {
			return err
		}
		cs.Message = string(b)
	}
	return w.enc.Encode(Message{Type: TypeConnectionStatus, ConnectionStatus: cs})
}

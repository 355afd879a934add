package amqp

import (
	"encoding/json"
	"time"
)

// LedgerUpdatedMessage tells the export worker that the durable ledger
// changed. It carries only the revision and the touched tables; the worker
// reloads the snapshot from storage, so a lost message costs nothing but
// latency until the next one (or the periodic export) arrives.
type LedgerUpdatedMessage struct {
	Revision  int64     `json:"revision"`
	Tables    []string  `json:"tables"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerUpdatedMessage(revision int64, tables ...string) *LedgerUpdatedMessage {
	return &LedgerUpdatedMessage{
		Revision:  revision,
		Tables:    tables,
		Timestamp: time.Now(),
	}
}

func (m *LedgerUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerUpdatedMessageFromJSON(data []byte) (*LedgerUpdatedMessage, error) {
	var msg LedgerUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

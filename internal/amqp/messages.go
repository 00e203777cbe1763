package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReportMessage announces a report file that was just written. Consumers
// read the file themselves.
type ReportMessage struct {
	ID        string    `json:"id"`
	Report    string    `json:"report"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReportMessage(report, path string) *ReportMessage {
	return &ReportMessage{
		ID:        uuid.NewString(),
		Report:    report,
		Path:      path,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportMessageFromJSON(data []byte) (*ReportMessage, error) {
	var msg ReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// RoutingPeriodSaved is the event name carried on saved-period messages.
const RoutingPeriodSaved = "period.saved"

// PeriodSavedMessage announces that a period was written to the primary
// store. It carries only the key; consumers read the record themselves.
type PeriodSavedMessage struct {
	Key       string    `json:"key"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPeriodSavedMessage creates a message for key stamped with the current time.
func NewPeriodSavedMessage(key string) *PeriodSavedMessage {
	return &PeriodSavedMessage{
		Key:       key,
		Event:     RoutingPeriodSaved,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PeriodSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PeriodSavedMessageFromJSON decodes a message and rejects one without a key.
func PeriodSavedMessageFromJSON(data []byte) (*PeriodSavedMessage, error) {
	var msg PeriodSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errors.New("period saved message without key")
	}
	return &msg, nil
}

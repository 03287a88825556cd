package realtime

import (
	"encoding/json"
	"time"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(typ string, v int, data any) (string, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return "", err
		}
		raw = b
	}
	b, err := json.Marshal(Event{
		Type:    typ,
		Version: v,
		At:      time.Now().UTC(),
		Data:    raw,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package serdes

import (
	"encoding/json"
	"fmt"
)

type JsonMessage struct {
	Type MessageType
	Data json.RawMessage
}

func MarshalJson(v any) ([]byte, error) {
	msgType, err := messageType(v)
	if err != nil {
		return nil, err
	}
	dat, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(JsonMessage{msgType, dat})
}

func UnmarshalJson(dat []byte) (any, error) {
	msg := JsonMessage{}
	err := json.Unmarshal(dat, &msg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal JsonMessage: %w", err)
	}

	switch msg.Type {
	case PresetType:
		v := Preset{}
		err := json.Unmarshal(msg.Data, &v)
		return v, err
	case RenderRequestType:
		v := RenderRequest{}
		err := json.Unmarshal(msg.Data, &v)
		return v, err
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownType, msg.Type)
}

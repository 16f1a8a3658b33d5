package queue

import (
	"encoding/json"
	"fmt"
)

// MessageVersion is bumped whenever Message changes incompatibly.
const MessageVersion = 1

// Message announces that an analysis reached a terminal status.
type Message struct {
	AnalysisID  string `json:"analysisId"`
	SessionID   string `json:"sessionId"`
	DocumentID  string `json:"documentId,omitempty"`
	Status      string `json:"status"`
	Mode        string `json:"mode"`
	OverallRisk string `json:"overallRisk,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	CompletedAt string `json:"completedAt"`
	Version     int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.AnalysisID == "" {
		return Message{}, fmt.Errorf("decode message: analysisId is required")
	}
	return msg, nil
}

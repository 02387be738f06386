package chat

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderDoctor Sender = "doctor"
)

func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderAI, SenderDoctor:
		return true
	}
	return false
}

// Message is a single chat line as clients exchange it over the relay.
// Timestamp is Unix milliseconds.
type Message struct {
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

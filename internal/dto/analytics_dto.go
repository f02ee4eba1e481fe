package dto

import (
	"time"
)

// RecordChatMessage is the payload published after every chat exchange and
// consumed by the analytics recorder. It carries everything the recorder
// needs so it never has to reach back into the chat path.
type RecordChatMessage struct {
	SessionId string      `json:"session_id"`
	ClientIp  string      `json:"client_ip"`
	UserAgent string      `json:"user_agent"`
	Meta      *ClientMeta `json:"meta"`

	UserMessage   string    `json:"user_message"`
	UserTimestamp time.Time `json:"user_timestamp"`

	AssistantMessage   string    `json:"assistant_message"`
	AssistantTimestamp time.Time `json:"assistant_timestamp"`
	ModelName          string    `json:"model_name"`
	MissingInfo        bool      `json:"missing_info"`
	RetrievedSources   []string  `json:"retrieved_sources"`
	ContextChars       int       `json:"context_chars"`
	ServerDurationMs   int64     `json:"server_duration_ms"`
}

type AnalyticsExportQuery struct {
	Days   int    `query:"days"`
	Limit  int    `query:"limit"`
	Shape  string `query:"shape"`
	Format string `query:"format"`
}

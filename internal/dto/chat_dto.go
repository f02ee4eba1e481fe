package dto

import (
	"time"
)

// ClientMeta is browser-reported context sent alongside a chat message.
// Everything here is optional and untrusted; it only feeds analytics.
type ClientMeta struct {
	VisitorId   string `json:"visitor_id"`
	Locale      string `json:"locale"`
	Timezone    string `json:"timezone"`
	Referrer    string `json:"referrer"`
	PageUrl     string `json:"page_url"`
	Dnt         string `json:"dnt"`
	NetDownlink string `json:"net_downlink"`
	NetEffType  string `json:"net_eff_type"`
	NetRtt      string `json:"net_rtt"`
}

type ChatRequest struct {
	Message   string      `json:"message" validate:"required,max=4000"`
	SessionId string      `json:"session_id"`
	Meta      *ClientMeta `json:"meta"`
}

type ChatResponse struct {
	Response  string    `json:"response"`
	SessionId string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	SessionId string        `json:"session_id"`
	Messages  []HistoryTurn `json:"messages"`
}

type ReindexResponse struct {
	TotalChunks int            `json:"total_chunks"`
	ByType      map[string]int `json:"by_type"`
	ByFile      map[string]int `json:"by_file"`
}

type DebugLLMRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Model  string `json:"model"`
}

type DebugLLMResponse struct {
	Model  string `json:"model"`
	Output string `json:"output"`
}

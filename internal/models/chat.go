package models

import "time"

// ConversationRecord is one chat exchange, persisted append-only and
// queryable by session id.
type ConversationRecord struct {
	ID                int64     `json:"id" db:"id"`
	SessionID         string    `json:"session_id" db:"session_id"`
	UserInput         string    `json:"user_input" db:"user_input"`
	InputLanguage     string    `json:"input_language" db:"input_language"`
	ResponseEn        string    `json:"response_en" db:"response_en"`
	ResponseEs        string    `json:"response_es" db:"response_es"`
	ResponseHi        string    `json:"response_hi" db:"response_hi"`
	TranslationSource string    `json:"translation_source" db:"translation_source"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Stats is the read-only status snapshot exposed by the status endpoint.
type Stats struct {
	PendingCount   int   `json:"pending_count"`
	ValidatedCount int64 `json:"validated_count"`
	Online         bool  `json:"online"`
}

// SyncResult is the outcome of one manual or scheduled reconciliation pass.
type SyncResult struct {
	Status         string `json:"status"`
	ProcessedCount int    `json:"processed_count"`
	FailedCount    int    `json:"failed_count"`
	RemainingCount int    `json:"remaining_count"`
}

package internal

import "time"

type TranslationRequest struct {
	ID         string    `json:"id"`
	SourceText string    `json:"source_text"`
	Timestamp  time.Time `json:"timestamp"`
}

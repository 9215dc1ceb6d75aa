// Package model defines the core domain types shared across the
// evaluation pipeline: conversations, the scoring rubric, evaluation
// results, signal records, and analytics outputs.
package model

import "strings"

// DefaultTitle is assigned to conversations uploaded without a title.
const DefaultTitle = "Untitled Conversation"

// Conversation is a single unit of evaluation input.
type Conversation struct {
	ID    string `json:"conversation_id"`
	Title string `json:"conversation_title"`
	Text  string `json:"conversation_text"`
}

// HasText reports whether the conversation carries non-whitespace text.
// Conversations without text are skipped by the batch processor.
func (c Conversation) HasText() bool {
	return strings.TrimSpace(c.Text) != ""
}

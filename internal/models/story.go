package models

import "time"

// Story - краткая форма истории, как она приходит в списке.
type Story struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoryDetail is a Story plus its reading counter. The read count only ever
// moves by +1 (mark as read) or -1 clamped at zero (undo last read); the
// client never sets it to an arbitrary value.
type StoryDetail struct {
	Story
	ReadCount int `json:"read_count"`
}

// StoryPage is one page of the user's stories in server order
// (newest first).
type StoryPage struct {
	Stories    []Story `json:"stories"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

// GenerationStatus - снимок дневного лимита генерации, полученный от сервера.
type GenerationStatus struct {
	CurrentCount int `json:"current_count"`
	Limit        int `json:"limit"`
}

// CanGenerate reports whether the snapshot still allows generation. The
// server remains the authoritative enforcer and may reject anyway.
func (s GenerationStatus) CanGenerate() bool {
	return s.CurrentCount < s.Limit
}

// GenerateRequest - тело запроса POST /stories.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// UpdateTitleRequest - тело запроса PATCH /stories/{id}.
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// StoryListResponse - тело ответа GET /stories.
type StoryListResponse struct {
	Stories    []Story `json:"stories"`
	TotalPages int     `json:"total_pages"`
}

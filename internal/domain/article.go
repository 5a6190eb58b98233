package domain

import "time"

// Article is a piece of content owned by its author
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Analysis  *Analysis `json:"analysis,omitempty"`
}

// Analysis holds metrics derived from an article by the analysis job
type Analysis struct {
	WordCount  int `json:"word_count"`
	UniqueTags int `json:"unique_tags"`
}

// ArticleCreate represents article creation data. Title and content must be
// present but may be empty. Any author supplied by the client is dropped
// during decoding.
type ArticleCreate struct {
	Title   *string  `json:"title" validate:"required"`
	Content *string  `json:"content" validate:"required"`
	Tags    []string `json:"tags"`
}

// ArticleUpdate represents a partial article update. Only title and content
// can change after creation.
type ArticleUpdate struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=300"`
	Content *string `json:"content,omitempty"`
}

// Empty reports whether the update carries no fields
func (u ArticleUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil
}

// ArticleFilter narrows an article listing. Search matches title or content
// case-insensitively. A nil Tags does not filter; otherwise only articles
// carrying one of the listed tags match, so an empty list matches nothing.
type ArticleFilter struct {
	Search string
	Tags   []string
}

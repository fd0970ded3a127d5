// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Snippet represents a saved code snippet with its rendering options.
//
// Highlighted is a DERIVED field: the service layer recomputes it from
// (Code, Language, Style, LineNos) on every create and update, so reads —
// including the /highlight/ endpoint — never have to run the highlighter.
// That also makes highlight responses idempotent: the HTML only changes
// when the snippet itself does.
//
// OwnerUsername is read-only metadata joined in by the repository for
// display. Ownership itself is tracked by OwnerID.
type Snippet struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"-"`
	OwnerUsername string    `json:"owner"`
	Title         string    `json:"title"`
	Code          string    `json:"code"`
	Language      string    `json:"language"`
	Style         string    `json:"style"`
	LineNos       bool      `json:"linenos"`
	Highlighted   string    `json:"-"` // derived HTML, served via /highlight/
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Rendering defaults applied when a create request omits the fields.
const (
	DefaultLanguage = "python"
	DefaultStyle    = "friendly"
)

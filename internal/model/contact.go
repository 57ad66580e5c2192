// internal/model/contact.go
package model

// Contact is one campaign recipient. Language selects the template; it falls
// back to any non-empty template when there is no exact match.
type Contact struct {
	ID       int    `db:"id" json:"id,omitempty"`
	Email    string `db:"email" json:"email"`
	Name     string `db:"name" json:"name"`
	Language string `db:"language" json:"language"`
}

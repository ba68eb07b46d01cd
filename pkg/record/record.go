// Package record holds the canonical in-memory shapes for posted items and
// chat messages. Nothing outside pkg/normalize builds these from raw store data.
package record

import (
	"strings"
	"time"
)

// Kind says whether an item was reported lost or found.
type Kind string

const (
	Lost  Kind = "LOST"
	Found Kind = "FOUND"
)

// ParseKind maps free text to a Kind. Anything other than "found" is Lost.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), "found") {
		return Found
	}
	return Lost
}

func (k Kind) String() string {
	return string(k)
}

// Label is the lower-case form used in CLI output and stored documents.
func (k Kind) Label() string {
	return strings.ToLower(string(k))
}

// Contact is how the poster asked to be reached.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (c Contact) IsZero() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// Record is one posted item.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        Kind      `json:"kind"`
	Category    string    `json:"category,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Keywords    []string  `json:"keywords"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	EventAt     time.Time `json:"eventAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	OwnerRef    string    `json:"ownerRef,omitempty"`
	Contact     Contact   `json:"contact,omitzero"`
}

// PrimaryImage returns the first image URL, or "" when the item has none.
func (r Record) PrimaryImage() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0]
}

// HasEventDate reports whether the lost/found date is known.
func (r Record) HasEventDate() bool {
	return !r.EventAt.IsZero()
}

// Message is one chat entry scoped to an item.
type Message struct {
	ID                string    `json:"id"`
	Text              string    `json:"text"`
	SenderRef         string    `json:"senderRef"`
	SenderDisplayName string    `json:"senderDisplayName"`
	SenderAvatarURL   string    `json:"senderAvatarUrl,omitempty"`
	SentAt            time.Time `json:"sentAt,omitzero"`
}

// Pending reports whether the server has not assigned a send time yet.
func (m Message) Pending() bool {
	return m.SentAt.IsZero()
}

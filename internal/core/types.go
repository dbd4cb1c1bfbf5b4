package core

import (
	"encoding/base64"
	"time"
)

const (
	RizzaName    = "Rizza"
	RizzaVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fact categories the extractor is allowed to emit. Anything else is
// normalized to CategoryGeneral before it reaches storage.
const (
	CategoryPersonality = "personality"
	CategoryPattern     = "pattern"
	CategoryPreference  = "preference"
	CategoryHistory     = "history"
	CategoryGeneral     = "general"
)

type ImageURL struct {
	URL string `json:"url"`
}

// ContentPart is one element of a multimodal message body. Type is either
// "text" or "image_url".
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// Message is a single role-tagged entry in an outbound model payload.
// When Parts is non-empty the provider serializes it as a content-part
// array and Content is ignored.
type Message struct {
	Role    string        `json:"role"`
	Content string        `json:"content"`
	Parts   []ContentPart `json:"-"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

func ImagePart(dataURI string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}}
}

// ImageDataURI inlines raw image bytes as a base64 data URI for the
// vision-capable models.
func ImageDataURI(image []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
}

// Session groups ordered turns of one continuous conversation. The active
// session is the one with the greatest UpdatedAt.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turn is one immutable message of a transcript, user or assistant side.
type Turn struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	ImageAttached bool      `json:"image_attached"`
	IsVoice       bool      `json:"is_voice"`
	CreatedAt     time.Time `json:"created_at"`
}

// Fact is a deduplicated statement about a named contact. The store keeps
// set semantics over (ContactName, Fact); facts are never updated.
type Fact struct {
	ID          int64     `json:"id"`
	ContactName string    `json:"contact_name"`
	Fact        string    `json:"fact"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Contact is the user-managed profile entity. Pure CRUD, no invariants.
type Contact struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Nickname             string    `json:"nickname,omitempty"`
	RelationshipType     string    `json:"relationship_type,omitempty"`
	FirstInteractionDate time.Time `json:"first_interaction_date"`
	Notes                string    `json:"notes,omitempty"`
	EmotionalVolatility  int       `json:"emotional_volatility"`
	ResponsivenessScore  int       `json:"responsiveness_score"`
}

// NormalizeCategory maps the extractor's free-form category onto the known
// set, defaulting to general.
func NormalizeCategory(category string) string {
	switch category {
	case CategoryPersonality, CategoryPattern, CategoryPreference, CategoryHistory:
		return category
	default:
		return CategoryGeneral
	}
}

package domain

import (
	"fmt"
	"time"
)

// AdminSender is the name the chat server uses for its own messages
// (welcome greeting, join announcements).
const AdminSender = "Admin"

// Message is a chat text message. Messages are broadcast-and-forget:
// nothing in this system persists them.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// LocationMessage carries a shared position as a maps link instead of
// raw coordinates, matching what clients render.
type LocationMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapsURL builds the link broadcast for a shared location.
func MapsURL(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", latitude, longitude)
}

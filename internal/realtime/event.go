package realtime

import "encoding/json"

// Wire event names. Clients send the create* events; the server
// relabels them as new* when broadcasting.
const (
	EventCreateMessage         = "createMessage"
	EventCreateLocationMessage = "createLocationMessage"
	EventNewMessage            = "newMessage"
	EventNewLocationMessage    = "newLocationMessage"
)

// Envelope is the framing every websocket message uses in both
// directions: a named event plus an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type createMessagePayload struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type createLocationPayload struct {
	From      string  `json:"from"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func newEnvelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

package types

// ChatRequest is the inbound submission body for POST /chat/add_chat.
type ChatRequest struct {
	Query     string `json:"query"`
	ModelName string `json:"model_name"`
}

// ChatResponse carries the resolved answer back to the submitting caller.
// The same answer is independently fanned out to the user's room; the
// correlation id links the two deliveries.
type ChatResponse struct {
	Answer        string `json:"answer"`
	CorrelationID string `json:"correlation_id"`
}

// ExchangeView is one history entry as returned by GET /chat/history.
type ExchangeView struct {
	Query     string `json:"query"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

// Notification is the room fan-out payload pushed over the websocket.
type Notification struct {
	Type          string `json:"type"`
	Query         string `json:"query"`
	Answer        string `json:"answer"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

const NotificationType = "notification"

// JoinMessage is the first client → server frame on the ws subscription.
type JoinMessage struct {
	Type string `json:"type"`
}

const JoinType = "join"

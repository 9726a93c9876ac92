package domain

// Channel represents a Slack conversation.
type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NumMembers int    `json:"num_members,omitempty"`
	IsPrivate  bool   `json:"is_private"`
	IsArchived bool   `json:"is_archived"`
}

// Message represents a Slack message from a channel history.
type Message struct {
	User  string `json:"user,omitempty"`
	BotID string `json:"bot_id,omitempty"`
	Text  string `json:"text"`
	TS    string `json:"ts"` // epoch seconds with fractional part, e.g. "1700000000.000100"
}

// PostedMessage is the result of chat.postMessage.
type PostedMessage struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// SlackEnvelope holds the status fields every Slack Web API response carries.
type SlackEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

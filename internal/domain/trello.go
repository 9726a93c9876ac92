package domain

// Board represents a Trello board.
type Board struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Closed bool   `json:"closed"`
}

// List represents a Trello list (a column on a board).
type List struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IDBoard string `json:"idBoard,omitempty"`
	Closed  bool   `json:"closed,omitempty"`
}

// Card represents a Trello card.
type Card struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc,omitempty"`
	IDList string `json:"idList"`
	URL    string `json:"url,omitempty"`
	Due    string `json:"due,omitempty"` // ISO 8601, empty when unset
}

// CardCreate represents the payload for creating a card.
type CardCreate struct {
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	IDList string `json:"idList"`
}

package domain

import "time"

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Address   string    `json:"address,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedOn time.Time `json:"created_on"`
}

package types

import "strings"

// Customer is a buyer. Deleting one removes all of their orders.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Validate checks required fields
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	return nil
}

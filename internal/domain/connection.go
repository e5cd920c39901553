package domain

import "time"

// ConnectionStatus reports capture-agent liveness as seen by the server.
type ConnectionStatus struct {
	Connected bool      `json:"connected"`
	LastPing  time.Time `json:"lastPing,omitzero"`
	Error     string    `json:"error,omitempty"`
}

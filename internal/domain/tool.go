package domain

import "time"

// GeneratedTool is the code artifact compiled from a finished action log.
// Once created it is independent of the session that produced it.
type GeneratedTool struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenantId"`
	SessionID      string    `json:"sessionId,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Code           string    `json:"code"`
	Parameters     []string  `json:"parameters,omitempty"`
	RegistryToolID string    `json:"registryToolId,omitempty"`
	ExecutionCount int       `json:"executionCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

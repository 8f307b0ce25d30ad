package users

import "github.com/Spok95/cmms-console/internal/session"

// User учётная запись из auth/users.
type User struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FullName    string       `json:"full_name"`
	Role        session.Role `json:"role"`
	RoleDisplay string       `json:"role_display"`
	Phone       string       `json:"phone"`
	Department  string       `json:"department"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

// LoginResult ответ auth/login.
type LoginResult struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    session.Profile `json:"user"`
}

// AuditEntry запись журнала действий.
type AuditEntry struct {
	ID            int64          `json:"id"`
	Actor         int64          `json:"actor"`
	ActorName     string         `json:"actor_name"`
	ActorUsername string         `json:"actor_username"`
	Action        string         `json:"action"`
	ActionDisplay string         `json:"action_display"`
	EntityType    string         `json:"entity_type"`
	EntityID      int64          `json:"entity_id"`
	EntityRepr    string         `json:"entity_repr"`
	Diff          map[string]any `json:"diff"`
	CreatedAt     string         `json:"created_at"`
}

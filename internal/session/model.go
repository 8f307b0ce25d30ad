package session

import "fmt"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleEngineer   Role = "engineer"
	RoleTechnician Role = "technician"
	RoleOperator   Role = "operator"
)

var roleLabels = map[Role]string{
	RoleAdmin:      "Администратор",
	RoleSupervisor: "Руководитель",
	RoleEngineer:   "Инженер",
	RoleTechnician: "Техник",
	RoleOperator:   "Оператор",
}

func (r Role) Label() string { return roleLabels[r] }

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r *Role) UnmarshalText(b []byte) error {
	v := Role(b)
	if !v.Valid() {
		return fmt.Errorf("unknown role %q", string(b))
	}
	*r = v
	return nil
}

// Credentials пара токенов текущей сессии.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Profile пользователь, под которым открыта сессия (ответ auth/login и auth/me).
type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        Role   `json:"role"`
	RoleDisplay string `json:"role_display"`
}

// DisplayName ФИО, если есть, иначе логин.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

package http

import (
	"fmt"
	"strings"
)

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(r.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "username")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	return missingFieldsError(missing)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "username")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	return missingFieldsError(missing)
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *UpdatePasswordRequest) Validate() error {
	var missing []string
	if r.CurrentPassword == "" {
		missing = append(missing, "current_password")
	}
	if r.NewPassword == "" {
		missing = append(missing, "new_password")
	}
	return missingFieldsError(missing)
}

func missingFieldsError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}

package backend

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Role 与后端 RoleLevel 的数值保持一致。
type Role int

const (
	RolePlayer Role = iota
	RoleManager
	RoleAdmin
)

var roleNames = []string{"RolePlayer", "RoleManager", "RoleAdmin"}

func (r Role) String() string {
	if r < RolePlayer || r > RoleAdmin {
		return "Role(" + strconv.Itoa(int(r)) + ")"
	}
	return roleNames[r]
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r >= RolePlayer && r <= RoleAdmin
}

// ParseRole accepts a role number ("0".."2") or its name, case-insensitive,
// with or without the "Role" prefix.
func ParseRole(raw string) (Role, bool) {
	trimmed := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(trimmed); err == nil {
		role := Role(n)
		return role, role.Valid()
	}
	lowered := strings.TrimPrefix(strings.ToLower(trimmed), "role")
	for i, name := range roleNames {
		if strings.ToLower(strings.TrimPrefix(name, "Role")) == lowered {
			return Role(i), true
		}
	}
	return RolePlayer, false
}

// User is an account row as returned by GET /user and POST /login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"Name"`
	Heros []int  `json:"Heros,omitempty"`
	Role  Role   `json:"Role"`
}

// NewUser is the create payload for POST /user.
type NewUser struct {
	Name     string `json:"Name" validate:"required"`
	Password string `json:"Password" validate:"required"`
	Heros    []int  `json:"Heros"`
	Role     Role   `json:"Role" validate:"min=0,max=2"`
}

// ListUsers fetches every account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.request(ctx, c.endpoint("user")).
		ToJSON(&users).
		Fetch(ctx)
	if err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}

// CreateUser posts a new account.
func (c *Client) CreateUser(ctx context.Context, user NewUser) error {
	err := c.request(ctx, c.endpoint("user")).
		BodyJSON(user).
		Fetch(ctx)
	return classify("create user "+user.Name, err)
}

// DeleteUser removes the account with id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	err := c.request(ctx, c.endpoint("user", id)).
		Method(http.MethodDelete).
		Fetch(ctx)
	return classify("delete user "+id, err)
}

package backend

import (
	"context"
	"net/http"
)

type authRequest struct {
	Username string
	Password string
}

// AuthState is the GET /auth payload.
type AuthState struct {
	User string `json:"user"`
	Role string `json:"role"`
}

// Login posts credentials and returns the user payload. The backend session
// cookie lands in the Credentials attached to ctx.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	var user User
	err := c.request(ctx, c.endpoint("login")).
		BodyJSON(authRequest{Username: username, Password: password}).
		ToJSON(&user).
		Fetch(ctx)
	if err != nil {
		return User{}, classify("login "+username, err)
	}
	return user, nil
}

// Register creates a player account and logs it in.
func (c *Client) Register(ctx context.Context, username, password string) (User, error) {
	var user User
	err := c.request(ctx, c.endpoint("register")).
		BodyJSON(authRequest{Username: username, Password: password}).
		ToJSON(&user).
		Fetch(ctx)
	if err != nil {
		return User{}, classify("register "+username, err)
	}
	return user, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.request(ctx, c.endpoint("logout")).
		Method(http.MethodPost).
		Fetch(ctx)
	return classify("logout", err)
}

// Auth probes the current backend session.
func (c *Client) Auth(ctx context.Context) (AuthState, error) {
	var state AuthState
	err := c.request(ctx, c.endpoint("auth")).
		ToJSON(&state).
		Fetch(ctx)
	if err != nil {
		return AuthState{}, classify("auth", err)
	}
	return state, nil
}

package client

import (
	"context"
	"net/http"
	"time"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates an account and returns a ready Session.
func (c *Client) Signup(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/users/signup", nil, credentials{email, password}, &s)
	return s, err
}

// Login exchanges credentials for a Session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/users/login", nil, credentials{email, password}, &s)
	return s, err
}

// Profile is the stored account as returned by GET /users/profile.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Client) Profile(ctx context.Context, s Session) (Profile, error) {
	var out struct {
		User Profile `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/users/profile", &s, nil, &out)
	return out.User, err
}

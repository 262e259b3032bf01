package backend

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"caradmin/internal/domain/admin"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignIn exchanges credentials for an upstream token (AUTH_KEY).
func (c *Client) SignIn(ctx context.Context, creds Credentials) (string, error) {
	r, err := jsonRequest(http.MethodPost, signinPath, creds)
	if err != nil {
		return "", err
	}
	body, err := c.raw(ctx, r)
	if err != nil {
		return "", err
	}
	token := gjson.GetBytes(body, "AUTH_KEY").String()
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Me returns the admin that owns the token.
func (c *Client) Me(ctx context.Context) (*admin.Admin, error) {
	var a admin.Admin
	if err := c.getJSON(ctx, "/auth", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

type ContactRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *Client) ContactUs(ctx context.Context, req ContactRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "/contact-us", req, nil)
}

package rest

import (
	"context"
	"net/http"

	"github.com/opst/labelkit/pkg/api/types/classification"
)

type AuthClient interface {
	// Login exchanges username and password for an auth token.
	//
	// It sends no credentials.
	Login(ctx context.Context, username string, password string) (Token, error)
}

func (c *client) Login(ctx context.Context, username string, password string) (Token, error) {
	creds := classification.Credentials{Username: username, Password: password}
	if err := Validate(creds); err != nil {
		return "", err
	}
	cl, err := jsonCall(http.MethodPost, resAuthToken, creds, pathAuthToken)
	if err != nil {
		return "", err
	}
	cl.anonymous = true

	tok := classification.AuthToken{}
	if err := c.do(ctx, cl, &tok); err != nil {
		return "", err
	}
	return Token(tok.Token), nil
}

package rest

import "net/http"

// Credential authorizes requests.
type Credential interface {
	Authorize(req *http.Request)
}

// Token is a credential sent as "Authorization: Token <value>".
//
// Empty Token sends nothing.
type Token string

func (t Token) Authorize(req *http.Request) {
	if t == "" {
		return
	}
	req.Header.Set("Authorization", "Token "+string(t))
}

// Anonymous sends no credentials.
var Anonymous Credential = Token("")

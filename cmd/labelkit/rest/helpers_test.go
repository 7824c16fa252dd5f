package rest_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/opst/labelkit/cmd/labelkit/config/profiles"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/pkg/utils/try"
)

const mockRoot = "http://labelkit.invalid/api"

// expectation of a request received by a server
type Request struct {
	Method string
	Path   string
	Query  string

	// json body, compared after normalization. empty means "no check".
	Body string
}

func assertRequest(t *testing.T, r *http.Request, expected Request) {
	t.Helper()

	if r.Method != expected.Method {
		t.Errorf("method: actual = %s, expected = %s", r.Method, expected.Method)
	}
	if r.URL.Path != expected.Path {
		t.Errorf("path: actual = %s, expected = %s", r.URL.Path, expected.Path)
	}
	if r.URL.RawQuery != expected.Query {
		t.Errorf("query: actual = %s, expected = %s", r.URL.RawQuery, expected.Query)
	}
	if r.Header.Get(rest.HeaderRequestId) == "" {
		t.Errorf("%s is not set", rest.HeaderRequestId)
	}
	if expected.Body != "" {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type: %s", ct)
		}
		actual, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("cannot read body: %v", err)
			return
		}
		if !jsonEq(t, actual, []byte(expected.Body)) {
			t.Errorf("body: actual = %s, expected = %s", actual, expected.Body)
		}
	}
}

func jsonEq(t *testing.T, a, b []byte) bool {
	t.Helper()
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		t.Errorf("not json: %s", a)
		return false
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		t.Errorf("not json: %s", b)
		return false
	}
	na, _ := json.Marshal(va)
	nb, _ := json.Marshal(vb)
	return string(na) == string(nb)
}

// serve starts a server which checks a request and responds.
func serve(t *testing.T, expected Request, status int, response string) (*httptest.Server, *int) {
	t.Helper()
	called := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called += 1
		assertRequest(t, r, expected)
		if auth := r.Header.Get("Authorization"); auth != "Token s3cr3t" {
			t.Errorf("Authorization: %s", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, called
}

func newClient(t *testing.T, apiRoot string, options ...rest.Option) rest.Client {
	t.Helper()
	prof := &profiles.Profile{ApiRoot: apiRoot, Token: "s3cr3t"}
	return try.To(rest.NewClient(prof, options...)).OrFatal(t)
}

// newMockedClient returns a client sending requests into a mock transport.
func newMockedClient(t *testing.T, options ...rest.Option) (rest.Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	options = append([]rest.Option{rest.WithHTTPClient(&http.Client{Transport: mt})}, options...)
	return newClient(t, mockRoot, options...), mt
}

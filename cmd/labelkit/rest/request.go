package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/sirupsen/logrus"
)

// HeaderRequestId is sent with each request to correlate client and server logs.
const HeaderRequestId = "X-Request-Id"

const (
	pathDatasets          = "data/datasets/classification"
	pathDatapoints        = "data/datapoints/classification"
	pathLabels            = "data/labels/classification"
	pathPredictions       = "data/predictions/classification"
	pathLegacyLabels      = "data/classification-labels"
	pathLegacyPredictions = "data/classification-predictions"
	pathActiveLearning    = "integrations/label-studio/start-active-learning"
	pathAuthToken         = "auth-token"
)

// resource names, used in errors and metrics
const (
	resDataset        = "dataset"
	resDatapoint      = "datapoint"
	resLabel          = "label"
	resPrediction     = "prediction"
	resActiveLearning = "active-learning"
	resAuthToken      = "auth-token"
)

type call struct {
	method      string
	resource    string
	id          int
	path        []string
	query       url.Values
	body        io.Reader
	contentType string

	// length of body in bytes. 0 means "as net/http guesses from body".
	contentLength int64

	// do not send credential
	anonymous bool
}

func (cl call) idString() string {
	if cl.id == 0 {
		return ""
	}
	return strconv.Itoa(cl.id)
}

func jsonCall(method string, resource string, payload any, path ...string) (call, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return call{}, err
	}
	return call{
		method:      method,
		resource:    resource,
		path:        path,
		body:        bytes.NewReader(buf),
		contentType: "application/json",
	}, nil
}

func filter(key string, id int) url.Values {
	if id <= 0 {
		return nil
	}
	return url.Values{key: []string{strconv.Itoa(id)}}
}

func (c *client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.apipath(cl.path...)
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, cl.body)
	if err != nil {
		return nil, err
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.contentLength > 0 {
		req.ContentLength = cl.contentLength
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestId, uuid.NewString())
	if !cl.anonymous {
		c.credential.Authorize(req)
	}
	return req, nil
}

// send req, and returns response.
//
// When no response is got, it returns *NetworkError.
func (c *client) send(req *http.Request, resource string) (*http.Response, error) {
	begin := time.Now()
	resp, err := c.httpclient.Do(req)
	elapsed := time.Since(begin)

	log := c.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get(HeaderRequestId),
		"elapsed":    elapsed,
	})
	if err != nil {
		c.metrics.observe(req.Method, resource, "error", elapsed)
		log.WithError(err).Debug("request failed")
		return nil, &kerr.NetworkError{Method: req.Method, URL: req.URL.String(), Cause: err}
	}

	c.metrics.observe(req.Method, resource, strconv.Itoa(resp.StatusCode), elapsed)
	log.WithField("status", resp.StatusCode).Debug("request done")
	return resp, nil
}

// do sends a request, and decodes its json response into out.
//
// When out is nil, response body is discarded.
func (c *client) do(ctx context.Context, cl call, out any) error {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return err
	}
	resp, err := c.send(req, cl.resource)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return unmarshalResponseDiscardingPayload(resp, cl.resource, cl.idString())
	}
	return unmarshalJsonResponse(resp, out, cl.resource, cl.idString())
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

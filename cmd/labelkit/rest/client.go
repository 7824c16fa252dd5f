package rest

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opst/labelkit/cmd/labelkit/config/profiles"
	"github.com/opst/labelkit/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Client is the gateway to the annotation server.
//
// Each method issues exactly one request, except for listing labels and
// predictions, which retry once on legacy paths when the server does not
// know the current path.
//
// Errors returned are classified with errors.Is against
// ErrNetwork, ErrHttp, ErrValidation and ErrNotFound in
// package "github.com/opst/labelkit/cmd/labelkit/errors".
type Client interface {
	DatasetClient
	DatapointClient
	LabelClient
	PredictionClient
	IntegrationClient
	AuthClient
}

type client struct {
	httpclient *http.Client
	api        string
	credential Credential
	logger     logrus.FieldLogger
	metrics    *metrics
}

type config struct {
	httpclient *http.Client
	credential Credential
	logger     logrus.FieldLogger
	timeout    time.Duration
	registerer prometheus.Registerer
}

type Option func(*config)

// WithHTTPClient makes the client send requests via hc.
//
// hc is copied, so later changes to hc are not reflected.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpclient = hc
	}
}

// WithCredential overrides the credential given by the profile.
func WithCredential(cred Credential) Option {
	return func(c *config) {
		c.credential = cred
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTimeout limits time for each request, including reading the response body.
//
// 0 means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithMetrics registers request metrics to reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// create new client for Profile
//
// # Args
//
// - *profiles.Profile: the server to be connected. Its token is used as credential.
//
// - ...Option
//
// # Return
//
// - Client: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *profiles.Profile, options ...Option) (Client, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}

	conf := &config{credential: Token(prof.Token)}
	for _, opt := range options {
		opt(conf)
	}

	httpclient := new(http.Client)
	if conf.httpclient != nil {
		hc := *conf.httpclient
		httpclient = &hc
	}
	if conf.timeout > 0 {
		httpclient.Timeout = conf.timeout
	}
	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	logger := conf.logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	cred := conf.credential
	if cred == nil {
		cred = Anonymous
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
		credential: cred,
		logger:     logger,
	}

	if conf.registerer != nil {
		m, err := newMetrics(conf.registerer)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}

	return c, nil
}

// build URL with path. It always ends with "/".
func (c *client) apipath(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.Trim(p, "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/") + "/"
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert: transport is not *http.Transport")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}

// Package server assembles routes of labelkitd.
package server

import (
	"errors"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/opst/labelkit/cmd/labelkitd/auth"
	"github.com/opst/labelkit/cmd/labelkitd/handlers"
	apierr "github.com/opst/labelkit/pkg/api/types/errors"
	"github.com/opst/labelkit/pkg/utils/echoutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Repository interface {
	auth.Authenticator
	handlers.DatasetRepository
	handlers.DatapointRepository
	handlers.LabelRepository
	handlers.PredictionRepository
	handlers.TrainingStarter
	handlers.MediaRepository
}

type Config struct {
	// Issuer issues and verifies auth tokens.
	Issuer *auth.Issuer

	// Registry collects metrics of the server, exposed at /metrics.
	// When nil, metrics are not collected.
	Registry *prometheus.Registry

	// MaxUpload limits the request size of datapoint creation, in bytes.
	MaxUpload int64

	// Legacy makes the server list labels and predictions only at their
	// legacy paths ("data/classification-labels" and "data/classification-predictions").
	Legacy bool

	// LogLevel is one of "debug", "info", "warn", "error" and "off".
	LogLevel string
}

const DefaultMaxUpload = 32 << 20

// New builds echo.Echo serving the api under /api.
func New(repo Repository, conf Config) (*echo.Echo, error) {
	if conf.Issuer == nil {
		return nil, errors.New("server: no token issuer")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.AddTrailingSlash())

	echoutil.SetLevel(e, conf.LogLevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	if conf.Registry != nil {
		m, err := handlers.NewMetrics(conf.Registry)
		if err != nil {
			return nil, err
		}
		e.Use(m.Middleware)
		e.GET("/metrics/", echo.WrapHandler(promhttp.HandlerFor(
			conf.Registry,
			promhttp.HandlerOpts{ErrorHandling: promhttp.HTTPErrorOnError},
		)))
	}

	maxUpload := conf.MaxUpload
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}

	api := root("/api")
	authed := auth.Middleware(conf.Issuer)

	e.POST(api("auth-token"), auth.LoginHandler(repo, conf.Issuer))

	{
		datasets := api("data/datasets/classification")
		id := "datasetId"
		item := datasets + ":" + id + "/"
		e.GET(datasets, handlers.DatasetListHandler(repo), authed)
		e.POST(datasets, handlers.DatasetCreateHandler(repo), authed)
		e.GET(item, handlers.DatasetGetHandler(repo, id), authed)
		e.PUT(item, handlers.DatasetUpdateHandler(repo, id), authed)
		e.PATCH(item, handlers.DatasetUpdateHandler(repo, id), authed)
		e.DELETE(item, handlers.DatasetDeleteHandler(repo, id), authed)
	}

	{
		datapoints := api("data/datapoints/classification")
		id := "datapointId"
		item := datapoints + ":" + id + "/"
		e.GET(datapoints, handlers.DatapointListHandler(repo), authed)
		e.POST(datapoints, handlers.DatapointCreateHandler(repo, maxUpload), authed)
		e.GET(item, handlers.DatapointGetHandler(repo, id), authed)
		e.PUT(item, handlers.DatapointUpdateHandler(repo, id), authed)
		e.PATCH(item, handlers.DatapointPatchHandler(repo, id), authed)
		e.DELETE(item, handlers.DatapointDeleteHandler(repo, id), authed)
	}

	{
		labels := api("data/labels/classification")
		id := "labelId"
		item := labels + ":" + id + "/"
		if conf.Legacy {
			e.GET(labels, notFound, authed)
			e.GET(api("data/classification-labels"), handlers.LabelListHandler(repo), authed)
		} else {
			e.GET(labels, handlers.LabelListHandler(repo), authed)
		}
		e.POST(labels, handlers.LabelCreateHandler(repo), authed)
		e.GET(item, handlers.LabelGetHandler(repo, id), authed)
		e.PUT(item, handlers.LabelUpdateHandler(repo, id), authed)
		e.PATCH(item, handlers.LabelUpdateHandler(repo, id), authed)
		e.DELETE(item, handlers.LabelDeleteHandler(repo, id), authed)
	}

	{
		predictions := api("data/predictions/classification")
		id := "predictionId"
		item := predictions + ":" + id + "/"
		if conf.Legacy {
			e.GET(predictions, notFound, authed)
			e.GET(api("data/classification-predictions"), handlers.PredictionListHandler(repo), authed)
		} else {
			e.GET(predictions, handlers.PredictionListHandler(repo), authed)
		}
		e.POST(predictions, handlers.PredictionCreateHandler(repo), authed)
		e.GET(item, handlers.PredictionGetHandler(repo, id), authed)
		e.PUT(item, handlers.PredictionUpdateHandler(repo, id), authed)
		e.DELETE(item, handlers.PredictionDeleteHandler(repo, id), authed)
	}

	e.POST(
		api("integrations/label-studio/start-active-learning"),
		handlers.ActiveLearningHandler(repo), authed,
	)

	e.GET("/media/:name/", handlers.MediaHandler(repo, "name"))

	return e, nil
}

func notFound(echo.Context) error {
	return apierr.NotFound()
}

// create api path factory
//
// args:
//   - r: api root path
//
// return:
//   - func: it receives relative path from root, and returns "/" terminated full path.
func root(r string) func(...string) string {
	return func(s ...string) string {
		return path.Join(append([]string{r}, s...)...) + "/"
	}
}

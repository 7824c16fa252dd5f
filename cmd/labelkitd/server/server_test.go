package server_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opst/labelkit/cmd/labelkit/config/profiles"
	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkitd/auth"
	"github.com/opst/labelkit/cmd/labelkitd/memory"
	"github.com/opst/labelkit/cmd/labelkitd/server"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
	"github.com/opst/labelkit/pkg/utils/try"
	"github.com/prometheus/client_golang/prometheus"
)

// start runs labelkitd with a user "admin" (password "secret"),
// and returns its api root.
func start(t *testing.T, conf server.Config) (string, *memory.Store) {
	t.Helper()
	repo := memory.New()
	repo.AddUser("admin", "secret")

	if conf.Issuer == nil {
		conf.Issuer = auth.NewIssuer([]byte("test"), time.Hour)
	}
	if conf.LogLevel == "" {
		conf.LogLevel = "off"
	}
	e := try.To(server.New(repo, conf)).OrFatal(t)
	svr := httptest.NewServer(e)
	t.Cleanup(svr.Close)
	return svr.URL + "/api", repo
}

// login returns a client with the token of admin.
func login(t *testing.T, apiRoot string) rest.Client {
	t.Helper()
	ctx := context.Background()
	anon := try.To(rest.NewClient(&profiles.Profile{ApiRoot: apiRoot})).OrFatal(t)
	token := try.To(anon.Login(ctx, "admin", "secret")).OrFatal(t)
	return try.To(rest.NewClient(&profiles.Profile{ApiRoot: apiRoot, Token: string(token)})).OrFatal(t)
}

func TestLogin(t *testing.T) {
	apiRoot, _ := start(t, server.Config{})
	ctx := context.Background()

	anon := try.To(rest.NewClient(&profiles.Profile{ApiRoot: apiRoot})).OrFatal(t)

	t.Run("wrong password is a validation error", func(t *testing.T) {
		_, err := anon.Login(ctx, "admin", "wrong")
		if !errors.Is(err, kerr.ErrValidation) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("requests without token are rejected", func(t *testing.T) {
		_, err := anon.ListDatasets(ctx)
		herr := new(kerr.HttpError)
		if !errors.As(err, &herr) || herr.Status != http.StatusUnauthorized {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("requests with forged token are rejected", func(t *testing.T) {
		forged := try.To(auth.NewIssuer([]byte("other"), time.Hour).Issue("admin")).OrFatal(t)
		client := try.To(rest.NewClient(&profiles.Profile{ApiRoot: apiRoot, Token: forged})).OrFatal(t)
		if _, err := client.ListDatasets(ctx); !errors.Is(err, kerr.ErrHttp) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("token works", func(t *testing.T) {
		client := login(t, apiRoot)
		if _, err := client.ListDatasets(ctx); err != nil {
			t.Error(err)
		}
	})
}

func TestResources(t *testing.T) {
	apiRoot, repo := start(t, server.Config{})
	client := login(t, apiRoot)
	ctx := context.Background()

	ds := try.To(client.CreateDataset(ctx, classification.DatasetFields{Name: "cats"})).OrFatal(t)
	cat := try.To(client.CreateLabel(ctx, classification.LabelFields{
		ClassIndex: pointer.Ref(0), ClassLabel: "cat", Dataset: ds.Id,
	})).OrFatal(t)

	upload := rest.BytesUpload("tama.png", []byte("meow"))
	dp := try.To(client.CreateDatapoint(ctx, rest.DatapointCreate{Dataset: ds.Id, File: &upload})).OrFatal(t)
	if dp.Label != nil || dp.File != "tama.png" {
		t.Errorf("created datapoint: %+v", dp)
	}

	t.Run("uploaded file is served", func(t *testing.T) {
		resp := try.To(http.Get(dp.FileURL)).OrFatal(t)
		defer resp.Body.Close()
		body := try.To(io.ReadAll(resp.Body)).OrFatal(t)
		if string(body) != "meow" || resp.Header.Get("Content-Type") != "image/png" {
			t.Errorf("served: %s %q", resp.Header.Get("Content-Type"), body)
		}
	})

	t.Run("label by class index", func(t *testing.T) {
		got := try.To(client.PatchDatapoint(ctx, dp.Id, classification.DatapointPatch{ClassIndex: pointer.Ref(0)})).OrFatal(t)
		if got.Label == nil || got.Label.Id != cat.Id {
			t.Errorf("label: %v", got.Label)
		}
	})

	t.Run("prediction by class index", func(t *testing.T) {
		p := try.To(client.CreatePrediction(ctx, classification.PredictionCreate{
			Datapoint: dp.Id, PredictedClassIndex: pointer.Ref(0), Confidence: pointer.Ref(0.87),
		})).OrFatal(t)
		if p.PredictedLabel.Id != cat.Id || *p.Confidence != 0.87 {
			t.Errorf("prediction: %+v", p)
		}
	})

	t.Run("dataset is nested", func(t *testing.T) {
		got := try.To(client.GetDataset(ctx, ds.Id)).OrFatal(t)
		if len(got.Datapoints) != 1 || len(got.Labels) != 1 {
			t.Fatalf("dataset: %+v", got)
		}
		d := got.Datapoints[0]
		if d.Label != got.Labels[0] || d.Label.ClassLabel != "cat" {
			t.Errorf("label of datapoint: %v", d.Label)
		}
		if len(d.Predictions) != 1 || d.Predictions[0].PredictedLabel != got.Labels[0] {
			t.Errorf("predictions: %+v", d.Predictions)
		}
	})

	t.Run("duplicated class index is a validation error", func(t *testing.T) {
		_, err := client.CreateLabel(ctx, classification.LabelFields{
			ClassIndex: pointer.Ref(0), ClassLabel: "tiger", Dataset: ds.Id,
		})
		verr := new(kerr.ValidationError)
		if !errors.As(err, &verr) || verr.Status != http.StatusBadRequest {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := verr.FieldErrors["non_field_errors"]; !ok {
			t.Errorf("fields: %+v", verr.FieldErrors)
		}
	})

	t.Run("missing entity is not found", func(t *testing.T) {
		_, err := client.GetDatapoint(ctx, 999)
		nf := new(kerr.NotFoundError)
		if !errors.As(err, &nf) || nf.Resource != "datapoint" || nf.Local {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("active learning", func(t *testing.T) {
		status := try.To(client.StartActiveLearning(ctx, ds.Id)).OrFatal(t)
		if status.Status != "started" {
			t.Errorf("status: %+v", status)
		}
		if got := try.To(repo.GetDataset(ds.Id)).OrFatal(t); got.State != memory.StateTraining || got.Epoch != 1 {
			t.Errorf("dataset: %+v", got)
		}
	})

	t.Run("delete label detaches datapoints", func(t *testing.T) {
		if err := client.DeleteLabel(ctx, cat.Id); err != nil {
			t.Fatal(err)
		}
		got := try.To(client.GetDatapoint(ctx, dp.Id)).OrFatal(t)
		if got.Label != nil || len(got.Predictions) != 0 {
			t.Errorf("datapoint: %+v", got)
		}
	})
}

func TestLegacyListing(t *testing.T) {
	apiRoot, _ := start(t, server.Config{Legacy: true})
	client := login(t, apiRoot)
	ctx := context.Background()

	ds := try.To(client.CreateDataset(ctx, classification.DatasetFields{Name: "dogs"})).OrFatal(t)
	try.To(client.CreateLabel(ctx, classification.LabelFields{
		ClassIndex: pointer.Ref(0), ClassLabel: "dog", Dataset: ds.Id,
	})).OrFatal(t)

	labels := try.To(client.ListLabels(ctx, ds.Id)).OrFatal(t)
	if len(labels) != 1 || labels[0].ClassLabel != "dog" {
		t.Errorf("labels: %+v", labels)
	}
	predictions := try.To(client.ListPredictions(ctx, 0)).OrFatal(t)
	if len(predictions) != 0 {
		t.Errorf("predictions: %+v", predictions)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	apiRoot, _ := start(t, server.Config{Registry: reg})
	client := login(t, apiRoot)
	if _, err := client.ListDatasets(context.Background()); err != nil {
		t.Fatal(err)
	}

	resp := try.To(http.Get(strings.TrimSuffix(apiRoot, "/api") + "/metrics")).OrFatal(t)
	defer resp.Body.Close()
	body := try.To(io.ReadAll(resp.Body)).OrFatal(t)
	if !strings.Contains(string(body), `labelkitd_http_requests_total{code="200",method="GET",route="/api/data/datasets/classification/"} 1`) {
		t.Errorf("metrics:\n%s", body)
	}
}

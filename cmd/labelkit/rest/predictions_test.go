package rest_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
	"github.com/opst/labelkit/pkg/utils/try"
)

const predictionJson = `{"id": 100, "predicted_label": 4, "confidence": 0.75, "model_version": 1, "datapoint": 10}`

func TestListPredictions(t *testing.T) {
	t.Run("it falls back to legacy path", func(t *testing.T) {
		testee, mt := newMockedClient(t)
		mt.RegisterResponder(
			http.MethodGet, mockRoot+"/data/predictions/classification/?datapoint=10",
			httpmock.NewStringResponder(http.StatusNotFound, `{"detail": "Not found."}`),
		)
		mt.RegisterResponder(
			http.MethodGet, mockRoot+"/data/classification-predictions/?datapoint=10",
			httpmock.NewStringResponder(http.StatusOK, "["+predictionJson+"]"),
		)

		preds := try.To(testee.ListPredictions(context.Background(), 10)).OrFatal(t)
		if len(preds) != 1 {
			t.Fatalf("unexpected: %v", preds)
		}
		p := preds[0]
		if p.Id != 100 || p.Datapoint != 10 || p.PredictedLabel.Id != 4 || !p.PredictedLabel.IsReference() {
			t.Errorf("unexpected prediction: %+v", p)
		}
		if p.Confidence == nil || *p.Confidence != 0.75 {
			t.Errorf("unexpected confidence: %v", p.Confidence)
		}
		if n := mt.GetTotalCallCount(); n != 2 {
			t.Errorf("request is sent %d times", n)
		}
	})
}

func TestCreatePrediction(t *testing.T) {
	t.Run("by class index", func(t *testing.T) {
		server, _ := serve(t, Request{
			Method: http.MethodPost, Path: "/api/data/predictions/classification/",
			Body: `{"datapoint": 10, "predicted_class_index": 1, "confidence": 0.75}`,
		}, http.StatusCreated, predictionJson)
		testee := newClient(t, server.URL+"/api")

		p := try.To(testee.CreatePrediction(context.Background(), classification.PredictionCreate{
			Datapoint: 10, PredictedClassIndex: pointer.Ref(1), Confidence: pointer.Ref(0.75),
		})).OrFatal(t)
		if p.Id != 100 {
			t.Errorf("unexpected prediction: %+v", p)
		}
	})

	t.Run("by label id", func(t *testing.T) {
		server, _ := serve(t, Request{
			Method: http.MethodPost, Path: "/api/data/predictions/classification/",
			Body: `{"datapoint": 10, "predicted_label": 4, "model_version": 2}`,
		}, http.StatusCreated, predictionJson)
		testee := newClient(t, server.URL+"/api")

		try.To(testee.CreatePrediction(context.Background(), classification.PredictionCreate{
			Datapoint: 10, PredictedLabel: pointer.Ref(4), ModelVersion: pointer.Ref(2),
		})).OrFatal(t)
	})

	type Then struct {
		fields []string
	}
	invalid := func(payload classification.PredictionCreate, then Then) func(*testing.T) {
		return func(t *testing.T) {
			testee, mt := newMockedClient(t)
			_, err := testee.CreatePrediction(context.Background(), payload)
			verr := &kerr.ValidationError{}
			if !errors.As(err, &verr) {
				t.Fatalf("unexpected error: %v", err)
			}
			got := verr.Fields()
			if len(got) != len(then.fields) {
				t.Fatalf("unexpected fields: actual = %v, expected = %v", got, then.fields)
			}
			for i := range got {
				if got[i] != then.fields[i] {
					t.Errorf("unexpected fields: actual = %v, expected = %v", got, then.fields)
				}
			}
			if n := mt.GetTotalCallCount(); n != 0 {
				t.Errorf("request is sent %d times", n)
			}
		}
	}

	t.Run("confidence over 1", invalid(
		classification.PredictionCreate{Datapoint: 10, PredictedLabel: pointer.Ref(4), Confidence: pointer.Ref(1.5)},
		Then{fields: []string{"confidence"}},
	))
	t.Run("negative confidence", invalid(
		classification.PredictionCreate{Datapoint: 10, PredictedLabel: pointer.Ref(4), Confidence: pointer.Ref(-0.1)},
		Then{fields: []string{"confidence"}},
	))
	t.Run("no label designation", invalid(
		classification.PredictionCreate{Datapoint: 10},
		Then{fields: []string{"predicted_class_index"}},
	))
	t.Run("both label designations", invalid(
		classification.PredictionCreate{Datapoint: 10, PredictedLabel: pointer.Ref(4), PredictedClassIndex: pointer.Ref(1)},
		Then{fields: []string{"predicted_class_index"}},
	))
	t.Run("no datapoint", invalid(
		classification.PredictionCreate{PredictedLabel: pointer.Ref(4)},
		Then{fields: []string{"datapoint"}},
	))
}

func TestUpdateDeletePrediction(t *testing.T) {
	t.Run("update", func(t *testing.T) {
		server, _ := serve(t, Request{
			Method: http.MethodPut, Path: "/api/data/predictions/classification/100/",
			Body: `{"datapoint": 10, "predicted_label": 4, "confidence": null, "model_version": 1}`,
		}, http.StatusOK, predictionJson)
		testee := newClient(t, server.URL+"/api")

		try.To(testee.UpdatePrediction(context.Background(), 100, classification.PredictionFields{
			Datapoint: 10, PredictedLabel: 4, ModelVersion: 1,
		})).OrFatal(t)
	})

	t.Run("get", func(t *testing.T) {
		server, _ := serve(t, Request{Method: http.MethodGet, Path: "/api/data/predictions/classification/100/"}, http.StatusOK, predictionJson)
		testee := newClient(t, server.URL+"/api")
		p := try.To(testee.GetPrediction(context.Background(), 100)).OrFatal(t)
		if p.Id != 100 {
			t.Errorf("unexpected: %+v", p)
		}
	})

	t.Run("delete of missing prediction", func(t *testing.T) {
		server, _ := serve(t, Request{Method: http.MethodDelete, Path: "/api/data/predictions/classification/100/"}, http.StatusNotFound, `{"detail": "Not found."}`)
		testee := newClient(t, server.URL+"/api")
		err := testee.DeletePrediction(context.Background(), 100)
		nf := &kerr.NotFoundError{}
		if !errors.As(err, &nf) || nf.Resource != "prediction" || nf.Id != "100" {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

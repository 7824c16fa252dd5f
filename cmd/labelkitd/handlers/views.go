package handlers

import (
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils"
)

type datasetSummary struct {
	Id                  int    `json:"id"`
	Name                string `json:"name"`
	LabelStudioURL      string `json:"label_studio_url"`
	LabelStudioAPIKey   string `json:"label_studio_api_key"`
	MLBackendURL        string `json:"ml_backend_url"`
	BatchSize           int    `json:"batch_size"`
	UncertaintyStrategy string `json:"uncertainty_strategy"`
	MaxEpochs           int    `json:"max_epochs"`
	Epoch               int    `json:"epoch"`
	State               string `json:"state"`
}

// datasetDetail is a dataset with its labels and datapoints.
//
// Datapoints refer their labels by id, and predictions embed their labels.
type datasetDetail struct {
	datasetSummary
	Labels     []*classification.Label `json:"labels"`
	Datapoints []datapointDetail       `json:"datapoints"`
}

type datapointView struct {
	Id      int    `json:"id"`
	File    string `json:"file"`
	FileURL string `json:"file_url"`
	Dataset int    `json:"dataset"`
	Label   *int   `json:"label"`
}

type datapointDetail struct {
	datapointView
	Predictions []*classification.Prediction `json:"predictions"`
}

type datapointWithPredictions struct {
	datapointView
	Predictions []predictionView `json:"predictions"`
}

type predictionView struct {
	Id             int      `json:"id"`
	PredictedLabel int      `json:"predicted_label"`
	Confidence     *float64 `json:"confidence"`
	ModelVersion   int      `json:"model_version"`
	Datapoint      int      `json:"datapoint"`
}

func summarize(ds *classification.Dataset) datasetSummary {
	return datasetSummary{
		Id:                  ds.Id,
		Name:                ds.Name,
		LabelStudioURL:      ds.LabelStudioURL,
		LabelStudioAPIKey:   ds.LabelStudioAPIKey,
		MLBackendURL:        ds.MLBackendURL,
		BatchSize:           ds.BatchSize,
		UncertaintyStrategy: ds.UncertaintyStrategy,
		MaxEpochs:           ds.MaxEpochs,
		Epoch:               ds.Epoch,
		State:               ds.State,
	}
}

func detailOfDataset(c echo.Context, ds *classification.Dataset) datasetDetail {
	return datasetDetail{
		datasetSummary: summarize(ds),
		Labels:         ds.Labels,
		Datapoints: utils.Map(ds.Datapoints, func(dp *classification.Datapoint) datapointDetail {
			return datapointDetail{datapointView: viewOfDatapoint(c, dp), Predictions: dp.Predictions}
		}),
	}
}

func viewOfDatapoint(c echo.Context, dp *classification.Datapoint) datapointView {
	v := datapointView{
		Id:      dp.Id,
		File:    dp.File,
		FileURL: mediaURL(c, dp.File),
		Dataset: dp.Dataset,
	}
	if dp.Label != nil {
		id := dp.Label.Id
		v.Label = &id
	}
	return v
}

func datapointWithPredictionsOf(c echo.Context, dp *classification.Datapoint) datapointWithPredictions {
	return datapointWithPredictions{
		datapointView: viewOfDatapoint(c, dp),
		Predictions:   utils.Map(dp.Predictions, viewOfPrediction),
	}
}

func viewOfPrediction(p *classification.Prediction) predictionView {
	v := predictionView{
		Id:           p.Id,
		Confidence:   p.Confidence,
		ModelVersion: p.ModelVersion,
		Datapoint:    p.Datapoint,
	}
	if p.PredictedLabel != nil {
		v.PredictedLabel = p.PredictedLabel.Id
	}
	return v
}

// mediaURL returns the absolute URL where the file is served.
func mediaURL(c echo.Context, name string) string {
	u := url.URL{
		Scheme: c.Scheme(),
		Host:   c.Request().Host,
		Path:   "/media/" + name,
	}
	return u.String()
}

package dataset

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type ShowFlag struct {
	Labeling      string `flag:"labeling" metavar:"all|labeled|unlabeled" help:"show only labeled or unlabeled datapoints."`
	MinConfidence string `flag:"min-confidence" metavar:"0.0-1.0" help:"show datapoints having a prediction with the confidence or more."`
	MaxConfidence string `flag:"max-confidence" metavar:"0.0-1.0" help:"show datapoints having a prediction with the confidence or less."`
	ModelVersion  string `flag:"model-version" metavar:"VERSION" help:"show datapoints having a prediction by the model version."`
}

// Filter builds the datapoint filter from flags.
func (f ShowFlag) Filter() (classification.DatapointFilter, error) {
	filter := classification.DatapointFilter{}

	labeling, err := classification.ParseLabeling(f.Labeling)
	if err != nil {
		return filter, fmt.Errorf("%w: --labeling: %w", flarc.ErrUsage, err)
	}
	filter.Labeling = labeling

	for _, b := range []struct {
		name  string
		value string
		dest  **float64
	}{
		{name: "--min-confidence", value: f.MinConfidence, dest: &filter.MinConfidence},
		{name: "--max-confidence", value: f.MaxConfidence, dest: &filter.MaxConfidence},
	} {
		if b.value == "" {
			continue
		}
		c, err := strconv.ParseFloat(b.value, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: %s should be a number: %s", flarc.ErrUsage, b.name, b.value)
		}
		*b.dest = &c
	}

	if f.ModelVersion != "" {
		v, err := strconv.Atoi(f.ModelVersion)
		if err != nil {
			return filter, fmt.Errorf("%w: --model-version should be an integer: %s", flarc.ErrUsage, f.ModelVersion)
		}
		filter.ModelVersion = &v
	}
	return filter, nil
}

func NewShow() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show a dataset with its labels, datapoints and predictions.",
		ShowFlag{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset to be shown.",
			},
		},
		common.NewTask(ShowTask()),
		flarc.WithDescription(`
Show a dataset with its labels, datapoints and predictions.

Datapoints can be narrowed with flags. Datapoints without predictions
are not narrowed by --min-confidence, --max-confidence and --model-version.
`),
	)
}

func ShowTask() common.Task[ShowFlag] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[ShowFlag],
		params []any,
	) error {
		datasetId, err := common.Id(cl.Args(), ARG_DATASET_ID)
		if err != nil {
			return err
		}
		filter, err := cl.Flags().Filter()
		if err != nil {
			return err
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		ds := *agg.Snapshot().Dataset
		ds.Datapoints = ds.FilterDatapoints(filter)
		logger.WithFields(logrus.Fields{
			"shown":   len(ds.Datapoints),
			"labeled": ds.LabeledCount(),
		}).Info("datapoints")
		return common.PrintJSON(cl.Stdout(), ds)
	}
}

package prediction

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type AddFlag struct {
	Confidence string `flag:"confidence" alias:"c" metavar:"0.0-1.0" help:"confidence of the prediction."`
}

func NewAdd() (flarc.Command, error) {
	return flarc.NewCommand(
		"Record a prediction of a datapoint.",
		AddFlag{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_DATAPOINT_ID, Required: true,
				Help: "Specify the id of the predicted datapoint.",
			},
			{
				Name: ARG_LABEL_ID, Required: true,
				Help: "Specify the id of the predicted label.",
			},
		},
		common.NewTask(AddTask()),
	)
}

func (f AddFlag) confidence() (*float64, error) {
	if f.Confidence == "" {
		return nil, nil
	}
	c, err := strconv.ParseFloat(f.Confidence, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: --confidence should be a number: %s", flarc.ErrUsage, f.Confidence)
	}
	return &c, nil
}

func AddTask() common.Task[AddFlag] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[AddFlag],
		params []any,
	) error {
		datasetId, err := common.Id(cl.Args(), ARG_DATASET_ID)
		if err != nil {
			return err
		}
		datapointId, err := common.Id(cl.Args(), ARG_DATAPOINT_ID)
		if err != nil {
			return err
		}
		labelId, err := common.Id(cl.Args(), ARG_LABEL_ID)
		if err != nil {
			return err
		}
		confidence, err := cl.Flags().confidence()
		if err != nil {
			return err
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		p, err := agg.AddPrediction(ctx, datapointId, labelId, confidence)
		if err != nil {
			return err
		}
		return common.PrintJSON(cl.Stdout(), p)
	}
}

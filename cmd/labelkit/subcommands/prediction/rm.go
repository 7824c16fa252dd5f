package prediction

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewRm() (flarc.Command, error) {
	return flarc.NewCommand(
		"Delete a prediction of a datapoint.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_DATAPOINT_ID, Required: true,
				Help: "Specify the id of the datapoint.",
			},
			{
				Name: ARG_PREDICTION_ID, Required: true,
				Help: "Specify the id of the prediction to be deleted.",
			},
		},
		common.NewTask(RmTask()),
	)
}

func RmTask() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[struct{}],
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
		predictionId, err := common.Id(cl.Args(), ARG_PREDICTION_ID)
		if err != nil {
			return err
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		if err := agg.DeletePrediction(ctx, datapointId, predictionId); err != nil {
			return err
		}
		logger.Infof("prediction %d is deleted", predictionId)
		return nil
	}
}

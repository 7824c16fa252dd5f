package datapoint

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewRm() (flarc.Command, error) {
	return flarc.NewCommand(
		"Delete a datapoint with its predictions.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_DATAPOINT_ID, Required: true,
				Help: "Specify the id of the datapoint to be deleted.",
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

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		if err := agg.DeleteDatapoint(ctx, datapointId); err != nil {
			return err
		}
		logger.Infof("datapoint %d is deleted", datapointId)
		return nil
	}
}

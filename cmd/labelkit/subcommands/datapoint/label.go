package datapoint

import (
	"context"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewLabel() (flarc.Command, error) {
	return flarc.NewCommand(
		"Set the label of a datapoint.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_DATAPOINT_ID, Required: true,
				Help: "Specify the id of the datapoint to be labeled.",
			},
			{
				Name: ARG_LABEL_ID, Required: true,
				Help: "Specify the id of the label. It should be a label of the dataset.",
			},
		},
		common.NewTask(LabelTask()),
	)
}

func LabelTask() common.Task[struct{}] {
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
		labelId, err := common.Id(cl.Args(), ARG_LABEL_ID)
		if err != nil {
			return err
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		label := agg.Snapshot().Dataset.FindLabel(labelId)
		if label == nil {
			return kerr.Missing("label", labelId)
		}
		if err := agg.UpdateDatapointLabel(ctx, datapointId, label); err != nil {
			return err
		}
		return common.PrintJSON(cl.Stdout(), agg.Snapshot().Dataset.FindDatapoint(datapointId))
	}
}

package label

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewRm() (flarc.Command, error) {
	return flarc.NewCommand(
		"Delete a label from a dataset.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_LABEL_ID, Required: true,
				Help: "Specify the id of the label to be deleted.",
			},
		},
		common.NewTask(RmTask()),
		flarc.WithDescription(`
Delete a label from a dataset.

Datapoints labeled with it become unlabeled, and predictions of it are deleted.
`),
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
		labelId, err := common.Id(cl.Args(), ARG_LABEL_ID)
		if err != nil {
			return err
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		if err := agg.DeleteLabel(ctx, labelId); err != nil {
			return err
		}
		logger.Infof("label %d is deleted", labelId)
		return nil
	}
}

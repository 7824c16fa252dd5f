package dataset

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewRm() (flarc.Command, error) {
	return flarc.NewCommand(
		"Delete a dataset.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset to be deleted.",
			},
		},
		common.NewTask(RmTask()),
		flarc.WithDescription(`
Delete a dataset.

Its datapoints, labels and predictions are also deleted by the server.
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

		list := store.NewList(client, store.WithLogger(logger))
		defer list.Close()
		if err := list.Load(ctx); err != nil {
			return err
		}
		if err := list.DeleteDataset(ctx, datasetId); err != nil {
			return err
		}
		logger.Infof("dataset %d is deleted", datasetId)
		return nil
	}
}

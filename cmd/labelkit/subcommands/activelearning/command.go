package activelearning

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

const ARG_DATASET_ID = "DATASET_ID"

func New() (flarc.Command, error) {
	start, err := NewStart()
	if err != nil {
		return nil, err
	}
	return flarc.NewCommandGroup(
		"Control active learning of datasets.",
		struct{}{},
		flarc.WithSubcommand("start", start),
	)
}

func NewStart() (flarc.Command, error) {
	return flarc.NewCommand(
		"Start active learning of a dataset.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
		},
		common.NewTask(StartTask()),
		flarc.WithDescription(`
Start active learning of a dataset with the Label Studio integration.

The dataset is reloaded after starting, and its state is printed.
`),
	)
}

func StartTask() common.Task[struct{}] {
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

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		status, err := agg.StartActiveLearning(ctx)
		if err != nil {
			return err
		}
		logger.Infof("%s: %s", status.Status, status.Message)

		if err := agg.Refetch(ctx); err != nil {
			return err
		}
		ds := agg.Snapshot().Dataset
		return common.PrintJSON(cl.Stdout(), map[string]any{
			"status":  status.Status,
			"message": status.Message,
			"state":   ds.State,
			"epoch":   ds.Epoch,
		})
	}
}

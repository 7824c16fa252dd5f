package label

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewRename() (flarc.Command, error) {
	return flarc.NewCommand(
		"Change the name of a label.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_LABEL_ID, Required: true,
				Help: "Specify the id of the label to be renamed.",
			},
			{
				Name: ARG_CLASS_LABEL, Required: true,
				Help: "new name of the label.",
			},
		},
		common.NewTask(RenameTask()),
	)
}

func RenameTask() common.Task[struct{}] {
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

		label, err := agg.UpdateLabel(ctx, labelId, cl.Args()[ARG_CLASS_LABEL][0])
		if err != nil {
			return err
		}
		return common.PrintJSON(cl.Stdout(), label)
	}
}

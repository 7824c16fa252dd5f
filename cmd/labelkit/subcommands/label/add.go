package label

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewAdd() (flarc.Command, error) {
	return flarc.NewCommand(
		"Add a label to a dataset.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_CLASS_INDEX, Required: true,
				Help: "class index of the new label. It should be unique in the dataset.",
			},
			{
				Name: ARG_CLASS_LABEL, Required: true,
				Help: "name of the new label.",
			},
		},
		common.NewTask(AddTask()),
	)
}

func AddTask() common.Task[struct{}] {
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
		classIndex, err := strconv.Atoi(cl.Args()[ARG_CLASS_INDEX][0])
		if err != nil || classIndex < 0 {
			return fmt.Errorf(
				"%w: %s should be a non-negative integer: %s",
				flarc.ErrUsage, ARG_CLASS_INDEX, cl.Args()[ARG_CLASS_INDEX][0],
			)
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		label, err := agg.AddLabel(ctx, &classIndex, cl.Args()[ARG_CLASS_LABEL][0])
		if err != nil {
			return err
		}
		return common.PrintJSON(cl.Stdout(), label)
	}
}

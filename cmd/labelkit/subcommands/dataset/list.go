package dataset

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func NewList() (flarc.Command, error) {
	return flarc.NewCommand(
		"List all datasets, without their datapoints and labels.",
		struct{}{},
		flarc.Args{},
		common.NewTask(ListTask()),
	)
}

func ListTask() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		list := store.NewList(client, store.WithLogger(logger))
		defer list.Close()
		if err := list.Load(ctx); err != nil {
			return err
		}
		return common.PrintJSON(cl.Stdout(), list.Snapshot().Datasets)
	}
}

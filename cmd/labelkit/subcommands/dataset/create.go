package dataset

import (
	"context"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type CreateFlag struct {
	LabelStudioURL      string `flag:"label-studio-url" metavar:"URL" help:"URL of the Label Studio project."`
	LabelStudioAPIKey   string `flag:"label-studio-api-key" help:"API key of Label Studio."`
	MLBackendURL        string `flag:"ml-backend-url" metavar:"URL" help:"URL of the ML backend."`
	BatchSize           int    `flag:"batch-size" help:"batch size of active learning."`
	UncertaintyStrategy string `flag:"uncertainty-strategy" help:"strategy to pick datapoints to be labeled."`
	MaxEpochs           int    `flag:"max-epochs" help:"max epochs of active learning."`
}

const ARG_NAME = "NAME"

func NewCreate() (flarc.Command, error) {
	return flarc.NewCommand(
		"Create a new dataset.",
		CreateFlag{},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "name of the new dataset.",
			},
		},
		common.NewTask(CreateTask()),
	)
}

func CreateTask() common.Task[CreateFlag] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[CreateFlag],
		params []any,
	) error {
		flags := cl.Flags()
		fields := classification.DatasetFields{
			Name:                cl.Args()[ARG_NAME][0],
			LabelStudioURL:      flags.LabelStudioURL,
			LabelStudioAPIKey:   flags.LabelStudioAPIKey,
			MLBackendURL:        flags.MLBackendURL,
			BatchSize:           flags.BatchSize,
			UncertaintyStrategy: flags.UncertaintyStrategy,
			MaxEpochs:           flags.MaxEpochs,
		}

		if err := rest.Validate(fields); err != nil {
			return err
		}

		list := store.NewList(client, store.WithLogger(logger))
		defer list.Close()
		if err := list.Load(ctx); err != nil {
			return err
		}
		ds, err := list.CreateDataset(ctx, fields)
		if err != nil {
			return err
		}
		logger.Infof("dataset %d is created", ds.Id)
		return common.PrintJSON(cl.Stdout(), ds)
	}
}

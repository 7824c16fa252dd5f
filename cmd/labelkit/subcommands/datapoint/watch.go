package datapoint

import (
	"context"
	"time"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/opst/labelkit/pkg/utils/filewatch"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type WatchFlag struct {
	Label  int           `flag:"label" alias:"l" metavar:"LABEL_ID" help:"label of uploaded datapoints. Unlabeled if not given."`
	Settle time.Duration `flag:"settle" help:"a file is uploaded when it has not been written for this duration."`
}

func NewWatch() (flarc.Command, error) {
	return flarc.NewCommand(
		"Upload files created in a directory, until interrupted.",
		WatchFlag{Settle: filewatch.DefaultSettle},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_DIR, Required: true,
				Help: "directory to be watched.",
			},
		},
		common.NewTask(WatchTask()),
		flarc.WithDescription(`
Watch a directory and upload files created (or moved) into it as datapoints.

Files already in the directory are not uploaded.
Failed uploads are reported, and watching continues.
`),
	)
}

func WatchTask() common.Task[WatchFlag] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[WatchFlag],
		params []any,
	) error {
		datasetId, err := common.Id(cl.Args(), ARG_DATASET_ID)
		if err != nil {
			return err
		}
		labelId, err := labelFlag(cl.Flags().Label)
		if err != nil {
			return err
		}
		dir := cl.Args()[ARG_DIR][0]

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		created, err := filewatch.Created(ctx, dir, cl.Flags().Settle)
		if err != nil {
			return err
		}
		logger.Infof("watching %s", dir)

		for path := range created {
			u, err := rest.FileUpload(path)
			if err != nil {
				logger.WithError(err).Warnf("%s is skipped", path)
				continue
			}
			dps, err := agg.AddDatapoints(ctx, []rest.Upload{withProgress(u, cl.Stderr())}, labelId)
			if err != nil {
				logger.WithError(err).Errorf("failed to upload %s", path)
				continue
			}
			for _, dp := range dps {
				if err := common.PrintJSON(cl.Stdout(), dp); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

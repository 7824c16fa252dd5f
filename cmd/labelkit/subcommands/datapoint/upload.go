package datapoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type UploadFlag struct {
	Label int `flag:"label" alias:"l" metavar:"LABEL_ID" help:"label of uploaded datapoints. Unlabeled if not given."`
}

func NewUpload() (flarc.Command, error) {
	return flarc.NewCommand(
		"Upload files as datapoints of a dataset.",
		UploadFlag{},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset.",
			},
			{
				Name: ARG_FILE, Required: true, Repeatable: true,
				Help: "files to be uploaded.",
			},
		},
		common.NewTask(UploadTask()),
		flarc.WithDescription(`
Upload files as datapoints of a dataset, one by one in the given order.

A failed upload does not stop others. The command fails when some uploads have failed.
`),
	)
}

func labelFlag(id int) (*int, error) {
	switch {
	case id == 0:
		return nil, nil
	case id < 0:
		return nil, fmt.Errorf("%w: --label should be a positive integer", flarc.ErrUsage)
	default:
		return &id, nil
	}
}

func UploadTask() common.Task[UploadFlag] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[UploadFlag],
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

		files := cl.Args()[ARG_FILE]
		uploads := make([]rest.Upload, 0, len(files))
		for _, f := range files {
			u, err := rest.FileUpload(f)
			if err != nil {
				return fmt.Errorf("%w: %w", flarc.ErrUsage, err)
			}
			uploads = append(uploads, withProgress(u, cl.Stderr()))
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		created, err := agg.AddDatapoints(ctx, uploads, labelId)
		if perr := common.PrintJSON(cl.Stdout(), created); perr != nil {
			return errors.Join(err, perr)
		}
		if berr := new(store.BatchError); errors.As(err, &berr) {
			for _, f := range berr.Failures {
				logger.WithError(f.Err).Errorf("failed to upload %s", files[f.Index])
			}
		}
		if err != nil {
			return err
		}
		logger.Infof("%d datapoints are uploaded", len(created))
		return nil
	}
}

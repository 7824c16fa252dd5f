package dataset

import (
	"context"
	"fmt"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

// PatchFlag tells fields to be changed. Empty strings and negative numbers are left as is.
type PatchFlag struct {
	Name                string `flag:"name" help:"new name of the dataset."`
	LabelStudioURL      string `flag:"label-studio-url" metavar:"URL" help:"URL of the Label Studio project."`
	LabelStudioAPIKey   string `flag:"label-studio-api-key" help:"API key of Label Studio."`
	MLBackendURL        string `flag:"ml-backend-url" metavar:"URL" help:"URL of the ML backend."`
	BatchSize           int    `flag:"batch-size" help:"batch size of active learning."`
	UncertaintyStrategy string `flag:"uncertainty-strategy" help:"strategy to pick datapoints to be labeled."`
	MaxEpochs           int    `flag:"max-epochs" help:"max epochs of active learning."`
}

func NewPatch() (flarc.Command, error) {
	return flarc.NewCommand(
		"Update configuration of a dataset.",
		PatchFlag{BatchSize: -1, MaxEpochs: -1},
		flarc.Args{
			{
				Name: ARG_DATASET_ID, Required: true,
				Help: "Specify the id of the dataset to be updated.",
			},
		},
		common.NewTask(PatchTask()),
		flarc.WithDescription(`
Update configuration of a dataset. Only fields given by flags are changed.
`),
	)
}

func (f PatchFlag) patch() (classification.DatasetPatch, bool) {
	p := classification.DatasetPatch{}
	given := false
	str := func(v string) *string {
		if v == "" {
			return nil
		}
		given = true
		return pointer.Ref(v)
	}
	num := func(v int) *int {
		if v < 0 {
			return nil
		}
		given = true
		return pointer.Ref(v)
	}

	p.Name = str(f.Name)
	p.LabelStudioURL = str(f.LabelStudioURL)
	p.LabelStudioAPIKey = str(f.LabelStudioAPIKey)
	p.MLBackendURL = str(f.MLBackendURL)
	p.UncertaintyStrategy = str(f.UncertaintyStrategy)
	p.BatchSize = num(f.BatchSize)
	p.MaxEpochs = num(f.MaxEpochs)
	return p, given
}

func PatchTask() common.Task[PatchFlag] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		client rest.Client,
		cl flarc.Commandline[PatchFlag],
		params []any,
	) error {
		datasetId, err := common.Id(cl.Args(), ARG_DATASET_ID)
		if err != nil {
			return err
		}
		patch, given := cl.Flags().patch()
		if !given {
			return fmt.Errorf("%w: no fields to be changed", flarc.ErrUsage)
		}

		agg, err := common.LoadAggregate(ctx, logger, client, datasetId)
		if err != nil {
			return err
		}
		defer agg.Close()

		ds, err := agg.PatchDataset(ctx, patch)
		if err != nil {
			return err
		}
		return common.PrintJSON(cl.Stdout(), ds)
	}
}

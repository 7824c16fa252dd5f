package main

import (
	"context"
	"os"
	"os/signal"

	subal "github.com/opst/labelkit/cmd/labelkit/subcommands/activelearning"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	subdp "github.com/opst/labelkit/cmd/labelkit/subcommands/datapoint"
	subds "github.com/opst/labelkit/cmd/labelkit/subcommands/dataset"
	sublabel "github.com/opst/labelkit/cmd/labelkit/subcommands/label"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/logger"
	sublogin "github.com/opst/labelkit/cmd/labelkit/subcommands/login"
	sublogout "github.com/opst/labelkit/cmd/labelkit/subcommands/logout"
	subpred "github.com/opst/labelkit/cmd/labelkit/subcommands/prediction"
	subver "github.com/opst/labelkit/cmd/labelkit/subcommands/version"
	"github.com/opst/labelkit/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	logger := logger.Default()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	login := try.To(sublogin.New()).OrFatal(logger)
	logout := try.To(sublogout.New()).OrFatal(logger)
	dataset := try.To(subds.New()).OrFatal(logger)
	label := try.To(sublabel.New()).OrFatal(logger)
	datapoint := try.To(subdp.New()).OrFatal(logger)
	prediction := try.To(subpred.New()).OrFatal(logger)
	activeLearning := try.To(subal.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	labelkit := try.To(
		flarc.NewCommandGroup(
			"labelkit: command line interface of the image classification annotation server",
			cf,
			flarc.WithSubcommand("login", login),
			flarc.WithSubcommand("logout", logout),
			flarc.WithSubcommand("dataset", dataset),
			flarc.WithSubcommand("label", label),
			flarc.WithSubcommand("datapoint", datapoint),
			flarc.WithSubcommand("prediction", prediction),
			flarc.WithSubcommand("active-learning", activeLearning),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, labelkit, flarc.WithHelp(true)))
}

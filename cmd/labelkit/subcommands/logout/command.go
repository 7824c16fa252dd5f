package logout

import (
	"context"
	"fmt"

	"github.com/opst/labelkit/cmd/labelkit/config/profiles"
	"github.com/opst/labelkit/cmd/labelkit/config/settings"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Forget the auth token of the current profile.",
		struct{}{},
		flarc.Args{},
		common.NewTaskWithCommonFlag(Task()),
	)
}

func Task() common.TaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		commonFlag common.CommonFlags,
		conf settings.Settings,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			return err
		}
		prof, err := store.Get(commonFlag.Profile)
		if err != nil {
			return err
		}
		if prof.Token == "" {
			logger.Infof("profile %s is not logged in", commonFlag.Profile)
			return nil
		}

		prof.Token = ""
		if err := store.Save(commonFlag.ProfileStore); err != nil {
			return fmt.Errorf("failed to save profile store (%s): %w", commonFlag.ProfileStore, err)
		}
		logger.Infof("profile %s is logged out", commonFlag.Profile)
		return nil
	}
}

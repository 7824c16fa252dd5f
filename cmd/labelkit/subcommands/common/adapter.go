package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/opst/labelkit/cmd/labelkit/config/profiles"
	"github.com/opst/labelkit/cmd/labelkit/config/settings"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger logrus.FieldLogger,
	commonFlag CommonFlags,
	conf settings.Settings,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTaskWithCommonFlag adapts task to flarc.Task.
//
// CommonFlags should be passed to the flarc.Task as one of params.
// It is taken out from params given to task.
func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		settingsPath, err := settings.DefaultPath()
		if err != nil {
			settingsPath = ""
		}
		conf, err := settings.Load(settingsPath)
		if err != nil {
			return err
		}

		l := logrus.New()
		l.SetOutput(cl.Stderr())
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		if level, err := conf.Level(); err == nil {
			l.SetLevel(level)
		}

		return task(
			ctx,
			l.WithField("command", cl.Fullname()),
			commonFlag,
			conf,
			cl,
			newpos,
		)
	}
}

type Task[T any] func(
	ctx context.Context,
	logger logrus.FieldLogger,
	client rest.Client,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask adapts task to flarc.Task, with the client for the current profile.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger logrus.FieldLogger,
		commonFlag CommonFlags,
		conf settings.Settings,
		cl flarc.Commandline[T],
		params []any,
	) error {
		prof, err := Profile(commonFlag, conf)
		if err != nil {
			return err
		}

		client, err := rest.NewClient(
			prof,
			rest.WithLogger(logger),
			rest.WithTimeout(conf.Timeout),
		)
		if err != nil {
			return fmt.Errorf(
				"%w: failed to create client. Your profile (%s in %s) can be broken.\n\nTry `labelkit login` again",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		return Advise(task(ctx, logger, client, cl, params))
	})
}

// Profile returns the profile named in commonFlag, with overrides in conf.
//
// When conf has api_root, the profile store is not required.
func Profile(commonFlag CommonFlags, conf settings.Settings) (*profiles.Profile, error) {
	prof := &profiles.Profile{}

	store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
	switch {
	case err == nil:
		if p, err := store.Get(commonFlag.Profile); err == nil {
			*prof = *p
		} else if conf.ApiRoot == "" {
			return nil, fmt.Errorf(
				"%w in the profile store (%s). Try `labelkit login` first",
				err, commonFlag.ProfileStore,
			)
		}
	case errors.Is(err, profiles.ErrProfileStoreNotFound):
		if conf.ApiRoot == "" {
			return nil, fmt.Errorf("%w. Try `labelkit login` first", err)
		}
	default:
		return nil, fmt.Errorf(
			"%w: failed to load profile store (%s)", err, commonFlag.ProfileStore,
		)
	}

	if conf.ApiRoot != "" {
		prof.ApiRoot = conf.ApiRoot
	}
	if conf.Token != "" {
		prof.Token = conf.Token
	}
	return prof, nil
}

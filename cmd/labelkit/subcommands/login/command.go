package login

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/opst/labelkit/cmd/labelkit/config/profiles"
	"github.com/opst/labelkit/cmd/labelkit/config/settings"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/common"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Username string `flag:"username" alias:"u" help:"user name to log in. required."`
	Password string `flag:"password" alias:"p" help:"password. When it is not given, the first line of stdin is read."`
	CA       string `flag:"cacert" metavar:"PEM file" help:"CA certificate to verify the server."`
}

const ARG_API_ROOT = "API_ROOT"

// ClientFactory creates a client to log in.
type ClientFactory func(prof *profiles.Profile, options ...rest.Option) (rest.Client, error)

type Option struct {
	newClient ClientFactory
	workdir   func() (string, error)
}

func WithClientFactory(newClient ClientFactory) func(*Option) *Option {
	return func(o *Option) *Option {
		o.newClient = newClient
		return o
	}
}

// WithWorkdir sets the directory where the profile file is written.
func WithWorkdir(dir string) func(*Option) *Option {
	return func(o *Option) *Option {
		o.workdir = func() (string, error) { return dir, nil }
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{newClient: rest.NewClient, workdir: os.Getwd}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Log in to an annotation server, and save the token as a profile.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_API_ROOT, Required: true,
				Help: `API root of the server, like "https://example.com/api".`,
			},
		},
		common.NewTaskWithCommonFlag(Task(option.newClient, option.workdir)),
		flarc.WithDescription(`
Log in to the server at API_ROOT and save the auth token into your profile store.

The profile is named by "--profile" (default: the current directory).
The current directory is configured to use the profile.
`),
	)
}

func Task(newClient ClientFactory, workdir func() (string, error)) common.TaskWithCommonFlag[Flag] {
	return func(
		ctx context.Context,
		logger logrus.FieldLogger,
		commonFlag common.CommonFlags,
		conf settings.Settings,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		if flags.Username == "" {
			return fmt.Errorf("%w: --username is required", flarc.ErrUsage)
		}

		password := flags.Password
		if password == "" {
			p, err := readLine(cl)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = p
		}

		prof := &profiles.Profile{ApiRoot: cl.Args()[ARG_API_ROOT][0]}
		if flags.CA != "" {
			ca, err := profiles.ReadCA(flags.CA)
			if err != nil {
				return err
			}
			prof.Cert.CA = ca
		}
		if err := prof.Verify(); err != nil {
			return fmt.Errorf("%w: %w", flarc.ErrUsage, err)
		}

		client, err := newClient(
			prof,
			rest.WithCredential(rest.Anonymous),
			rest.WithLogger(logger),
			rest.WithTimeout(conf.Timeout),
		)
		if err != nil {
			return err
		}

		token, err := client.Login(ctx, flags.Username, password)
		if err != nil {
			return err
		}
		prof.Token = string(token)

		store, err := profiles.LoadOrEmpty(commonFlag.ProfileStore)
		if err != nil {
			return fmt.Errorf("failed to load profile store (%s): %w", commonFlag.ProfileStore, err)
		}
		store[commonFlag.Profile] = prof
		if err := store.Save(commonFlag.ProfileStore); err != nil {
			return fmt.Errorf("failed to save profile store (%s): %w", commonFlag.ProfileStore, err)
		}
		logger.Infof("profile %s is saved to %s", commonFlag.Profile, commonFlag.ProfileStore)

		dir, err := workdir()
		if err != nil {
			return err
		}
		if err := common.WriteProfileFile(dir, commonFlag.Profile); err != nil {
			return fmt.Errorf("failed to write %s: %w", common.ProfileFileName, err)
		}
		return nil
	}
}

func readLine(cl flarc.Commandline[Flag]) (string, error) {
	if cl.Stdin() == nil {
		return "", errors.New("no stdin")
	}
	sc := bufio.NewScanner(cl.Stdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("password is empty")
	}
	line := strings.TrimRight(sc.Text(), "\r")
	if line == "" {
		return "", errors.New("password is empty")
	}
	return line, nil
}

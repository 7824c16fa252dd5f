package common

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/opst/labelkit/pkg/utils"
)

// ProfileFileName is the name of a file telling which profile is used in the directory and its descendants.
const ProfileFileName = ".labelkitprofile"

type CommonFlags struct {
	Profile      string `flag:"profile" help:"name of the profile to use"`
	ProfileStore string `flag:"profile-store" help:"path to the profile store file"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags detects default values of CommonFlags for the directory from.
//
// The profile name is the first line of the nearest ProfileFileName in from or its ancestors.
// If there are no such files, the absolute path of from is the profile name.
//
// The profile store is "~/.labelkit/profile".
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := &commonFlagDetection{}
	for _, o := range opt {
		detparam = o(detparam)
	}

	home := detparam.home
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	if abs, err := filepath.Abs(from); err == nil {
		from = abs
	}

	profile := from
	if found, ok := utils.SearchFileUpward(from, ProfileFileName); ok {
		content, err := os.ReadFile(found)
		if err != nil {
			return CommonFlags{}, err
		}
		first, _, _ := strings.Cut(string(content), "\n")
		if name := strings.TrimSpace(first); name != "" {
			profile = name
		}
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: filepath.Join(home, ".labelkit", "profile"),
	}, nil
}

// WriteProfileFile makes dir use the profile.
func WriteProfileFile(dir string, profile string) error {
	return os.WriteFile(
		filepath.Join(dir, ProfileFileName), []byte(profile+"\n"), os.FileMode(0600),
	)
}

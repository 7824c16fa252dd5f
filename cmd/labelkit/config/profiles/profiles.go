package profiles

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hectane/go-acl"
	"github.com/opst/labelkit/cmd/labelkit/config/open"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("profile store is not found")
var ErrCannotUpdateProfileStore = errors.New("cannot update profile store")
var ErrProfileInvalid = errors.New("profile is invalid")
var ErrProfileNotFound = errors.New("profile is not found")

// ProfileStore is a map from profile name to Profile.
type ProfileStore map[string]*Profile

type Cert struct {
	// base64 encoded CA certificate
	CA string `yaml:"ca,omitempty"`
}

// Profile is a connection setting for an annotation server.
type Profile struct {
	// api root url of the server, like "https://example.com/api"
	ApiRoot string `yaml:"apiRoot"`

	// certificate to verify the server.
	Cert Cert `yaml:"cert,omitempty"`

	// auth token obtained by login.
	Token string `yaml:"token,omitempty"`
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}

func verifyPEM(b64cert string) bool {
	bin, err := base64.StdEncoding.DecodeString(b64cert)
	if err != nil {
		return false
	}
	blk, _ := pem.Decode(bin)
	return blk != nil
}

// Verify Profile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *Profile) Verify() error {
	if !verifyUrl(p.ApiRoot) {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if p.Cert.CA != "" && !verifyPEM(p.Cert.CA) {
		return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
	}
	return nil
}

// DefaultStorePath is "~/.labelkit/profile".
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".labelkit", "profile"), nil
}

// LoadProfileStore loads profile store from file.
func LoadProfileStore(filepath string) (ProfileStore, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, filepath)
		}
		return nil, err
	}
	return Unmarshall(buf)
}

// LoadOrEmpty loads profile store from file, or returns an empty store if no files are there.
func LoadOrEmpty(filepath string) (ProfileStore, error) {
	ps, err := LoadProfileStore(filepath)
	if errors.Is(err, ErrProfileStoreNotFound) {
		return ProfileStore{}, nil
	}
	return ps, err
}

// Unmarshall profile store from yaml in byte array.
func Unmarshall(buf []byte) (ProfileStore, error) {
	ret := ProfileStore{}
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Get returns the named profile.
func (ps ProfileStore) Get(name string) (*Profile, error) {
	p, ok := ps[name]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

// Save profile store to file.
//
// The previous content is kept in "<path>.backup" until the new content is written.
func (ps ProfileStore) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}

	prev, err := os.ReadFile(path)
	switch {
	case err == nil:
		// existing file may have loose permission.
		if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
			return fmt.Errorf("%w: %w", ErrCannotUpdateProfileStore, err)
		}
	case errors.Is(err, os.ErrNotExist):
		prev = nil
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w, because no permission to read file at %s", ErrCannotUpdateProfileStore, path)
	default:
		return err
	}

	bkpath := path + ".backup"
	if err := writeSafe(bkpath, prev); err != nil {
		return err
	}

	if err := writeSafe(path, buf); err != nil {
		return fmt.Errorf("%w (previous content is at %s): %w", ErrCannotUpdateProfileStore, bkpath, err)
	}
	return os.Remove(bkpath)
}

func writeSafe(path string, content []byte) error {
	f, err := open.NewSafeFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return err
	}
	return f.Sync()
}

// ReadCA reads a PEM file and encodes it as the value of Cert.CA.
func ReadCA(path string) (string, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if blk, _ := pem.Decode(pemBytes); blk == nil {
		return "", fmt.Errorf("%w: %s is not PEM", ErrProfileInvalid, path)
	}
	return base64.StdEncoding.EncodeToString(pemBytes), nil
}

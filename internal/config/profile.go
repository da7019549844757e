package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/utils"
)

// Profile is the client configuration kept between CLI runs.
type Profile struct {
	Server   string `toml:"server"`
	Username string `toml:"username,omitempty"`
	Timezone string `toml:"timezone,omitempty"`
}

func DefaultProfile() Profile {
	return Profile{Server: constants.DefaultServerURL}
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// LoadProfile reads the profile at path. A missing file yields the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	path, err := ExpandPath(path)
	if err != nil {
		return profile, err
	}
	if _, err := toml.DecodeFile(path, &profile); err != nil {
		if os.IsNotExist(err) {
			return DefaultProfile(), nil
		}
		return profile, fmt.Errorf("loading profile %s: %w", path, err)
	}
	if profile.Server == "" {
		profile.Server = constants.DefaultServerURL
	}
	if _, err := profile.Location(); err != nil {
		return profile, err
	}
	return profile, nil
}

// SaveProfile writes the profile to path, creating its directory.
func SaveProfile(path string, profile Profile) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(profile); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// Location is the timezone used to decide the local date for chores.
func (p Profile) Location() (*time.Location, error) {
	loc, err := utils.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

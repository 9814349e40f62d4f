package config

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/pkg/errors"
)

type Configuration struct {
	Scan          ScanConfig          `koanf:"scan"`
	Filters       FilterConfiguration `koanf:"filters"`
	Notifications NotificationsConfig `koanf:"notifications"`
}

type ScanConfig struct {
	// BlockSize is the comparison block size as a human readable string,
	// e.g. "1MiB" or "256KiB".
	BlockSize string `koanf:"block_size"`
	// ReadRate caps block reads per second. 0 means unpaced.
	ReadRate int `koanf:"read_rate"`
}

type FilterConfiguration struct {
	// Include / Exclude are filter expressions evaluated per discovered
	// file. A file is recorded when it matches any include expression
	// (or there are none) and no exclude expression.
	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`
	// IgnorePaths are regex patterns matched against full paths.
	IgnorePaths []string `yaml:"ignore_paths" koanf:"ignore_paths"`
}

/* Vars */

var (
	Config *Configuration
)

/* Public */

// Init loads the configuration, layering the YAML file (if it exists) over
// built-in defaults.
func Init(configFilePath string) error {
	k := koanf.New(".")

	cfg := Configuration{
		Scan: ScanConfig{
			BlockSize: "1MiB",
		},
	}

	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return errors.Wrap(err, "load default config")
	}

	if _, err := os.Stat(configFilePath); err == nil {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return errors.Wrapf(err, "load config file: %q", configFilePath)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return errors.Wrap(err, "unmarshal config")
	}

	Config = &cfg
	return nil
}

// BlockSizeBytes parses the configured comparison block size.
func (c *Configuration) BlockSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.Scan.BlockSize)
	if err != nil {
		return 0, errors.Wrapf(err, "parse scan.block_size: %q", c.Scan.BlockSize)
	}
	if n == 0 {
		return 0, errors.Errorf("scan.block_size must be nonzero: %q", c.Scan.BlockSize)
	}
	return int64(n), nil
}

// GetDefaultConfigDirectory returns the default directory for the config
// file, preferring the user config dir and falling back to the working
// directory.
func GetDefaultConfigDirectory(appName string, configFile string) string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return "."
}

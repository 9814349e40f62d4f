package cmd

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hardlinkr/hardlinkr/pkg/config"
	"github.com/hardlinkr/hardlinkr/pkg/logger"
	"github.com/hardlinkr/hardlinkr/pkg/runtime"
)

var (
	// Global flags
	FlagLogLevel     = 0
	FlagConfigFile   = "config.yaml"
	FlagConfigFolder = config.GetDefaultConfigDirectory("hardlinkr", "config.yaml")
	FlagLogFile      = "activity.log"
	FlagDryRun       bool

	initialized bool
)

// initCore initializes logging and configuration.
func initCore(showAppInfo bool) {
	logFilePath := ""
	if FlagLogFile != "" {
		logFilePath = filepath.Join(FlagConfigFolder, FlagLogFile)
	}

	logger.Init(FlagLogLevel, logFilePath)

	configFilePath := filepath.Join(FlagConfigFolder, FlagConfigFile)
	if err := config.Init(configFilePath); err != nil {
		logrus.WithError(err).Fatalf("Failed loading config: %q", configFilePath)
	}

	if showAppInfo {
		log := logger.GetLogger("app")
		log.Infof("Using version: %s (%s@%s)", runtime.Version, runtime.GitCommit, runtime.Timestamp)
		log.Debugf("Using config: %q", configFilePath)
	}
}

package support

import (
	"path/filepath"

	"github.com/alapierre/sortjson/pkg/config"
	"github.com/alapierre/sortjson/pkg/logging"
	"github.com/alapierre/sortjson/pkg/sortjson"
)

var logger = logging.Component("support")

// GlobalConfigFile is the name of the optional config file in the config dir.
const GlobalConfigFile = "sortjson.env"

// LoadMergedConfig merges the environment over <configDir>/sortjson.env.
func LoadMergedConfig(configDir string) config.Config {
	envCfg := config.GetEnvConfig()
	path := filepath.Join(configDir, GlobalConfigFile)
	fileCfg, err := config.LoadFile(path)
	if err != nil {
		logger.Warnf("Failed to load config %s: %v", path, err)
	}
	return config.MergeConfigs(envCfg, fileCfg)
}

// SorterOptions fills the options not set on the command line from cfg.
func SorterOptions(cfg config.Config, flags sortjson.Options) sortjson.Options {
	opts := flags
	if !opts.SkipKeyDuplication {
		opts.SkipKeyDuplication = cfg.GetBool(config.KeySkipKeyDuplication, false)
	}
	if opts.BufferSize == 0 {
		opts.BufferSize = cfg.GetInt(config.KeyBufferSize, sortjson.DefaultBufferSize)
	}
	if opts.MaxKeys == 0 {
		opts.MaxKeys = cfg.GetInt(config.KeyMaxKeys, 0)
	}
	return opts
}

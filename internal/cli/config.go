package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	configFileName = "tpgm"
	configFileType = "yaml"

	// configDirEnv names an extra directory searched for tpgm.yaml.
	configDirEnv = "TPGM_CONFIG_DIR"
	envPrefix    = "TPGM"

	cfgKeyFormat    = "format"
	cfgKeyVerbose   = "verbose"
	cfgKeyVariables = "variables"

	defaultFormat = "text"
)

// loadConfig reads tpgm.yaml using Viper. An explicit path must exist;
// otherwise $TPGM_CONFIG_DIR and the working directory are searched, and a
// missing file is not an error. TPGM_FORMAT and TPGM_VERBOSE override the
// file.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyFormat, defaultFormat)
	v.SetDefault(cfgKeyVerbose, false)
	v.SetDefault(cfgKeyVariables, []string{})
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	if dir := os.Getenv(configDirEnv); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

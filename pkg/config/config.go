package config

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alapierre/sortjson/pkg/logging"
)

var logger = logging.Component("pkg/config")

// EnvPrefix marks the environment variables read by GetEnvConfig.
const EnvPrefix = "SORTJSON_"

const (
	KeySkipKeyDuplication = "SORTJSON_SKIP_KEY_DUPLICATION"
	KeyBufferSize         = "SORTJSON_BUFFER_SIZE"
	KeyMaxKeys            = "SORTJSON_MAX_KEYS"
	KeyCompress           = "SORTJSON_COMPRESS"
	KeyRemote             = "SORTJSON_REMOTE"
	KeyRemotePassword     = "SORTJSON_REMOTE_PASSWORD"
	KeySigningSeed        = "SORTJSON_SIGNING_SEED_B64"
)

type Config map[string]string

func Parse(r io.Reader) (Config, error) {
	config := make(Config)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		config[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return config, scanner.Err()
}

func LoadFile(path string) (Config, error) {
	logger.Debugf("Loading config from %s", path)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(Config), nil
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func (c Config) Merge(other Config) {
	for k, v := range other {
		c[k] = v
	}
}

func (c Config) Get(key string, defaultValue string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return defaultValue
}

// GetBool accepts the usual strconv spellings (true, 1, false, 0, ...).
// Unparsable values fall back to defaultValue.
func (c Config) GetBool(key string, defaultValue bool) bool {
	v, ok := c[key]
	if !ok || v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warnf("Ignoring invalid boolean %s=%q", key, v)
		return defaultValue
	}
	return b
}

func (c Config) GetInt(key string, defaultValue int) int {
	v, ok := c[key]
	if !ok || v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warnf("Ignoring invalid integer %s=%q", key, v)
		return defaultValue
	}
	return n
}

// MergeConfigs merges configs in priority order: earlier arguments win.
func MergeConfigs(priority ...Config) Config {
	res := make(Config)
	for i := len(priority) - 1; i >= 0; i-- {
		res.Merge(priority[i])
	}
	return res
}

func GetEnvConfig() Config {
	res := make(Config)
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, EnvPrefix) {
			key, value, _ := strings.Cut(env, "=")
			res[key] = value
		}
	}
	return res
}

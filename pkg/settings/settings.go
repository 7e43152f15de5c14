// Package settings loads process-level settings for programs embedding the
// library: log level, the random seed shared by all algorithms, where default
// configuration resources live, and the model cache size.
//
// Precedence is environment > file > defaults. Environment variables use the
// PREFLEARN_ prefix and a double underscore for nesting:
//
//	PREFLEARN_LOG_LEVEL=debug
//	PREFLEARN_MODEL_CACHE__MAX_MODELS=64
package settings

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/validation"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "PREFLEARN_"

// Settings holds the process-level knobs.
type Settings struct {
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	// RandomSeed seeds the single random source handed to every algorithm.
	RandomSeed int64 `koanf:"random_seed"`
	// ResourceDir overrides the embedded default configuration resources when non-empty.
	ResourceDir string             `koanf:"resource_dir"`
	ModelCache  ModelCacheSettings `koanf:"model_cache"`
}

// ModelCacheSettings configures core/cache.ModelCache.
type ModelCacheSettings struct {
	MaxModels int64 `koanf:"max_models" validate:"min=1"`
}

// Default returns the settings used when neither a file nor the environment say otherwise.
func Default() Settings {
	return Settings{
		LogLevel:   "info",
		RandomSeed: 42,
		ModelCache: ModelCacheSettings{MaxModels: 128},
	}
}

// Load layers defaults, the optional YAML file at path (skipped when empty or
// missing) and PREFLEARN_* environment variables, then validates the result.
func Load(path string) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Settings{}, errors.Wrap(err, "failed to load default settings")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Settings{}, errors.Wrapf(err, "failed to load settings file %s", path)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return Settings{}, errors.Wrap(err, "failed to load environment variables")
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, errors.Wrap(err, "failed to unmarshal settings")
	}

	if err := validation.ValidateConfiguration("settings", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// envTransformFunc maps PREFLEARN_MODEL_CACHE__MAX_MODELS to model_cache.max_models.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

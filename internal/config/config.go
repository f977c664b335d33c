package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cozy-creator/ondevice/internal/frames"
	"github.com/cozy-creator/ondevice/internal/shotclassification"
	"github.com/cozy-creator/ondevice/internal/templates"
	"github.com/cozy-creator/ondevice/internal/types"
	"github.com/cozy-creator/ondevice/internal/utils/pathutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "ONDEVICE"

type Config struct {
	Environment        string                    `mapstructure:"environment"`
	Home               string                    `mapstructure:"home"`
	ModelsDir          string                    `mapstructure:"models_dir"`
	Model              ModelConfig               `mapstructure:"model"`
	ShotClassification shotclassification.Config `mapstructure:"shot_classification"`
	Frames             frames.Options            `mapstructure:"frames"`
}

type ModelConfig struct {
	Path     string `mapstructure:"path"`
	LabelMap string `mapstructure:"label_map"`
	Format   string `mapstructure:"format"`
}

var config *Config

// InitConfig prepares the home directory, writes the default .env and
// config.yaml if they are missing, and loads them into the global viper.
func InitConfig() error {
	v := viper.GetViper()

	home, err := getHome(v)
	if err != nil {
		return err
	}

	if err := createHomeDirs(home); err != nil {
		return err
	}

	v.Set("home", home)
	SetDefaults(v, home)

	envFile := v.GetString("env_file")
	if envFile == "" {
		envFile = filepath.Join(home, ".env")
	}
	configFile := v.GetString("config_file")
	if configFile == "" {
		configFile = filepath.Join(home, "config.yaml")
	}

	if err := ensureFile(envFile, templates.WriteEnv); err != nil {
		return fmt.Errorf("failed to prepare .env file: %w", err)
	}
	if err := ensureFile(configFile, templates.WriteConfig); err != nil {
		return fmt.Errorf("failed to prepare config file: %w", err)
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	BindEnv(v)
	v.SetConfigFile(configFile)

	if err := LoadConfig(false); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			fmt.Println("No config file found. Using default config.")
		} else {
			return err
		}
	}

	return nil
}

// SetDefaults registers every key so that environment overrides reach
// Unmarshal even when the config file leaves the key out.
func SetDefaults(v *viper.Viper, home string) {
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("models_dir", filepath.Join(home, "models"))
	v.SetDefault("model.path", "")
	v.SetDefault("model.label_map", "")
	v.SetDefault("model.format", "")
	v.SetDefault("shot_classification.score_threshold", 0.0)
	v.SetDefault("shot_classification.top_k", 0)
	v.SetDefault("shot_classification.input_tensor", "")
	v.SetDefault("shot_classification.output_tensor", "")
	v.SetDefault("frames.workers", frames.DefaultWorkers)
	v.SetDefault("frames.frame_rate", frames.DefaultFrameRate)
}

// BindEnv maps ONDEVICE_* variables onto keys, e.g. ONDEVICE_MODEL_PATH -> model.path.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`, `-`, `_`))
	v.AutomaticEnv()
}

func LoadConfig(reload bool) error {
	if config != nil && !reload {
		return fmt.Errorf("config already loaded")
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	cfg, err := Decode(viper.GetViper())
	if err != nil {
		return err
	}

	config = cfg
	return nil
}

// Decode unmarshals v and resolves model paths against models_dir, so the
// loader receives final paths.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	var err error
	if cfg.ModelsDir, err = pathutil.ExpandPath(cfg.ModelsDir); err != nil {
		return nil, ErrHomeExpandFailed
	}
	if cfg.Model.Path, err = pathutil.ResolvePath(cfg.ModelsDir, cfg.Model.Path); err != nil {
		return nil, fmt.Errorf("failed to resolve model path: %w", err)
	}
	if cfg.Model.LabelMap, err = pathutil.ResolvePath(cfg.ModelsDir, cfg.Model.LabelMap); err != nil {
		return nil, fmt.Errorf("failed to resolve label map path: %w", err)
	}

	return cfg, nil
}

func GetConfig() *Config {
	if config == nil {
		panic("config not loaded")
	}

	return config
}

// ModelFormat parses Model.Format; an empty value means "guess from filename".
func (c *Config) ModelFormat() (types.Format, error) {
	return types.ParseFormat(c.Model.Format)
}

func (c *Config) Validate() error {
	if c.Model.Path == "" {
		return ErrModelPathNotSet
	}

	if _, err := c.ModelFormat(); err != nil {
		return err
	}

	return nil
}

// Returns the ondevice home directory path.
// It attempts to retrieve the home directory from the following sources in order:
// 1. The `home` flag from viper.
// 2. The `ONDEVICE_HOME` environment variable.
// 3. The default home directory.
func getHome(v *viper.Viper) (string, error) {
	home := v.GetString("home")
	if home == "" {
		home = os.Getenv(EnvPrefix + "_HOME")
		if home == "" {
			home = DefaultHome
		}
	}

	home, err := pathutil.ExpandPath(home)
	if err != nil {
		return "", ErrHomeExpandFailed
	}
	if home == "" {
		return "", ErrHomeNotSet
	}

	return home, nil
}

func createHomeDirs(home string) error {
	if err := os.MkdirAll(filepath.Join(home, "models"), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}

	return nil
}

func ensureFile(path string, write func(string) error) error {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return err
		}

		return write(path)
	}

	return nil
}

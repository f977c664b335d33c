package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Subcommands
	classify "github.com/cozy-creator/ondevice/cmd/ondevice/classify"
	load "github.com/cozy-creator/ondevice/cmd/ondevice/load"
	"github.com/cozy-creator/ondevice/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "ondevice",
	Short: "On-device video shot classification",
	Long:  "Loads shot classification models (TensorFlow frozen graphs and friends) and runs them over video frames",

	SilenceUsage: true,

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix(config.EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(
			`-`, `_`, // convert hyphens to underscores
			`.`, `_`, // convert dots to underscores
		))
		viper.AutomaticEnv()

		// Paths given on the command line are relative to the working
		// directory, not to models_dir.
		if err := setAbsPath(cmd, "model", "model.path"); err != nil {
			return err
		}
		if err := setAbsPath(cmd, "labels", "model.label_map"); err != nil {
			return err
		}

		return config.InitConfig()
	},
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("home", "", "Path to the ondevice home directory")
	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")
	pflags.String("environment", "", "Environment configuration: dev, test or prod")

	pflags.String("model", "", "Path to the model artifact (e.g. frozen_graph.pb)")
	pflags.String("labels", "", "Path to the label map (.pbtxt or .txt)")
	pflags.String("format", "", "Model format: tensorflow, tflite, tensorrt; empty guesses from the file name")

	// Bind flags to viper
	viper.BindPFlag("home", pflags.Lookup("home"))
	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))
	viper.BindPFlag("environment", pflags.Lookup("environment"))
	viper.BindPFlag("model.format", pflags.Lookup("format"))

	Cmd.AddCommand(load.Cmd, classify.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}

func setAbsPath(cmd *cobra.Command, flag, key string) error {
	f := cmd.Flags().Lookup(flag)
	if f == nil || !f.Changed {
		return nil
	}

	path, err := filepath.Abs(f.Value.String())
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", flag, err)
	}

	viper.Set(key, path)
	return nil
}

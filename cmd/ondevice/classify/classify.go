package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cozy-creator/ondevice/internal/app"
	"github.com/cozy-creator/ondevice/internal/config"
	"github.com/cozy-creator/ondevice/internal/frames"
	"github.com/cozy-creator/ondevice/internal/shotclassification"
	"github.com/cozy-creator/ondevice/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Run shot classification over a directory of extracted frames",
	RunE:  runClassify,
}

func init() {
	flags := Cmd.Flags()

	flags.String("frames", "", "Directory of frames (png, jpeg, gif, bmp, webp), ordered by file name")
	flags.String("output", OutputYAML, "Output format: 'yaml' or 'json'")
	flags.Int("workers", frames.DefaultWorkers, "Number of frames decoded concurrently")
	flags.Float64("frame-rate", frames.DefaultFrameRate, "Rate the frames were sampled at, in frames per second")

	Cmd.MarkFlagRequired("frames")

	viper.BindPFlag("frames.workers", flags.Lookup("workers"))
	viper.BindPFlag("frames.frame_rate", flags.Lookup("frame-rate"))
}

type FrameResult struct {
	Frame       string                               `json:"frame" yaml:"frame"`
	Timestamp   string                               `json:"timestamp" yaml:"timestamp"`
	Annotations []types.ShotClassificationAnnotation `json:"annotations" yaml:"annotations"`
}

func runClassify(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("frames")
	output, _ := cmd.Flags().GetString("output")
	if output != OutputYAML && output != OutputJSON {
		return fmt.Errorf("invalid output format %q: want %s or %s", output, OutputYAML, OutputJSON)
	}

	app, err := app.NewApp(config.GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(app.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := app.Logger.With(zap.String("run_id", uuid.NewString()))

	engine, format, err := app.LoadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	size, err := engine.InputSize()
	if err != nil {
		return fmt.Errorf("engine for %s cannot classify: %w", format, err)
	}

	opts := app.Config().Frames
	opts.TargetSize = image.Pt(size.Width, size.Height)

	logger.Info("loading frames", zap.String("dir", dir), zap.Int("workers", opts.Workers))
	frameList, err := frames.LoadDir(ctx, dir, opts)
	if err != nil {
		return err
	}

	results, err := Classify(ctx, engine, frameList)
	if err != nil {
		return err
	}
	logger.Info("classified frames", zap.Int("frames", len(results)))

	return Encode(cmd.OutOrStdout(), output, results)
}

// Classify runs the engine over frames in order.
func Classify(ctx context.Context, engine shotclassification.Engine, frameList []frames.Frame) ([]FrameResult, error) {
	results := make([]FrameResult, 0, len(frameList))
	for _, frame := range frameList {
		annotations, err := engine.Run(ctx, frame.Timestamp, frame.Image)
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w", frame.Path, err)
		}

		results = append(results, FrameResult{
			Frame:       frame.Path,
			Timestamp:   frame.Timestamp.String(),
			Annotations: annotations,
		})
	}

	return results, nil
}

func Encode(w io.Writer, output string, results []FrameResult) error {
	switch output {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	}
}

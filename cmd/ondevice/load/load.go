package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/cozy-creator/ondevice/internal/app"
	"github.com/cozy-creator/ondevice/internal/config"
	"github.com/cozy-creator/ondevice/internal/shotclassification"
	"github.com/cozy-creator/ondevice/internal/types"
	"github.com/cozy-creator/ondevice/internal/utils/hashutil"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "load",
	Short: "Resolve the model format and construct its inference engine",
	RunE:  runLoad,
}

func runLoad(cmd *cobra.Command, _ []string) error {
	app, err := app.NewApp(config.GetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	engine, format, err := app.LoadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	fingerprint, err := hashutil.Blake3File(app.Config().Model.Path)
	if err != nil {
		app.Logger.Warn("failed to fingerprint model", zap.Error(err))
	}

	return describe(cmd.OutOrStdout(), app.Logger, app.Config().Model, format, fingerprint, engine)
}

// describe prints what the loader picked. A BaseEngine cannot run
// inference, so it is called out rather than failing.
func describe(w io.Writer, logger *zap.Logger, model config.ModelConfig, format types.Format, fingerprint string, engine shotclassification.Engine) error {
	fmt.Fprintf(w, "model:      %s\n", model.Path)
	fmt.Fprintf(w, "label map:  %s\n", model.LabelMap)
	fmt.Fprintf(w, "format:     %s\n", format)
	fmt.Fprintf(w, "engine:     %T\n", engine)
	if fingerprint != "" {
		fmt.Fprintf(w, "blake3:     %s\n", fingerprint)
	}

	size, err := engine.InputSize()
	switch {
	case errors.Is(err, shotclassification.ErrNotImplemented):
		fmt.Fprintln(w, "input size: n/a")
		logger.Warn("no backend for model format; engine cannot run inference",
			zap.Stringer("format", format),
			zap.String("path", model.Path),
		)
	case err != nil:
		return err
	default:
		fmt.Fprintf(w, "input size: %dx%d\n", size.Width, size.Height)
	}

	return nil
}

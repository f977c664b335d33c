package app

import (
	"context"
	"fmt"

	"github.com/cozy-creator/ondevice/internal/config"
	"github.com/cozy-creator/ondevice/internal/shotclassification"
	"github.com/cozy-creator/ondevice/internal/types"
	"github.com/cozy-creator/ondevice/pkg/logger"

	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc

	loaderOpts []shotclassification.Option
	loader     *shotclassification.Loader

	Logger *zap.Logger
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = logger
		return nil
	}
}

// WithBackend overrides the engine constructor for format, mostly for tests
// and for embedding programs that bring their own runtime.
func WithBackend(format types.Format, ctor shotclassification.Constructor) OptionFunc {
	return func(app *App) error {
		if format == types.FormatUndefined {
			return fmt.Errorf("cannot register a backend for %s", format)
		}

		app.loaderOpts = append(app.loaderOpts, shotclassification.WithBackend(format, ctor))
		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			cancel()
			return nil, err
		}
	}

	if app.Logger == nil {
		l, err := logger.InitLogger(cfg)
		if err != nil {
			cancel()
			return nil, err
		}
		app.Logger = l
	}

	opts := append([]shotclassification.Option{shotclassification.WithLogger(app.Logger)}, app.loaderOpts...)
	app.loader = shotclassification.NewLoader(opts...)

	return app, nil
}

// LoadEngine constructs the engine for the configured model.
func (app *App) LoadEngine() (shotclassification.Engine, types.Format, error) {
	if err := app.config.Validate(); err != nil {
		return nil, types.FormatUndefined, err
	}

	format, _ := app.config.ModelFormat()
	engine, err := app.loader.Load(app.config.Model.Path, app.config.Model.LabelMap, app.config.ShotClassification, format)

	// Report the format the loader resolved.
	if format == types.FormatUndefined {
		format = types.FormatFromFilename(app.config.Model.Path)
	}

	return engine, format, err
}

func (app *App) Close() {
	app.cancelFunc()

	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) Loader() *shotclassification.Loader {
	return app.loader
}

package shotclassification

import (
	"github.com/cozy-creator/ondevice/internal/types"

	"go.uber.org/zap"
)

// Loader picks the engine implementation for a model and constructs it.
// A Loader is immutable once built and safe for concurrent use.
type Loader struct {
	logger   *zap.Logger
	backends map[types.Format]Constructor
	fallback Constructor
}

type Option func(l *Loader)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBackend overrides (or adds) the constructor used for format on this
// loader only. The global registry is not touched.
func WithBackend(format types.Format, ctor Constructor) Option {
	return func(l *Loader) {
		if ctor == nil {
			delete(l.backends, format)
			return
		}
		l.backends[format] = ctor
	}
}

// WithFallback replaces NewBaseEngine as the constructor for formats without a backend.
func WithFallback(ctor Constructor) Option {
	return func(l *Loader) {
		if ctor != nil {
			l.fallback = ctor
		}
	}
}

// NewLoader returns a loader seeded with every backend registered so far.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger:   zap.L(),
		backends: registeredBackends(),
		fallback: NewBaseEngine,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load instantiates an inference engine for the model at modelPath.
//
// When format is FormatUndefined it is guessed from the file name. A format
// without a registered backend, including one that stays undefined, gets a
// BaseEngine: there is no "unsupported format" error, so callers that need a
// real backend must pass the format or check the engine they get back.
// Paths are not validated here; constructor errors are returned as is.
func (l *Loader) Load(modelPath, labelMapPath string, cfg Config, format types.Format) (Engine, error) {
	if format == types.FormatUndefined {
		format = types.FormatFromFilename(modelPath)
	}

	l.logger.Info("Loading",
		zap.String("path", modelPath),
		zap.Stringer("format", format),
		zap.String("label_map", labelMapPath),
	)

	ctor, ok := l.backends[format]
	if !ok {
		ctor = l.fallback
	}

	return ctor(modelPath, labelMapPath, cfg)
}

// Load is shorthand for NewLoader().Load with the global zap logger.
func Load(modelPath, labelMapPath string, cfg Config, format types.Format) (Engine, error) {
	return NewLoader().Load(modelPath, labelMapPath, cfg, format)
}

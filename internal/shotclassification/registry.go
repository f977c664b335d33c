package shotclassification

import (
	"slices"
	"sync"

	"github.com/cozy-creator/ondevice/internal/types"
)

var (
	backendsMu sync.RWMutex
	backends   = make(map[types.Format]Constructor)
)

// Register makes a backend available for format. Backend packages call it
// from init, so a backend and its runtime are only linked into programs that
// import it. Register panics if ctor is nil, if format is undefined, or if
// the format already has a backend.
func Register(format types.Format, ctor Constructor) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if ctor == nil {
		panic("shotclassification: Register constructor is nil")
	}
	if format == types.FormatUndefined {
		panic("shotclassification: Register called with undefined format")
	}
	if _, dup := backends[format]; dup {
		panic("shotclassification: Register called twice for format " + format.String())
	}

	backends[format] = ctor
}

// Backends returns the formats that have a registered backend, in enum order.
func Backends() []types.Format {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	formats := make([]types.Format, 0, len(backends))
	for format := range backends {
		formats = append(formats, format)
	}
	slices.Sort(formats)

	return formats
}

func registeredBackends() map[types.Format]Constructor {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	snapshot := make(map[types.Format]Constructor, len(backends))
	for format, ctor := range backends {
		snapshot[format] = ctor
	}

	return snapshot
}

package imecore

import (
	"log/slog"
	"math/bits"

	"github.com/hupe1980/imecore/connector"
	"github.com/hupe1980/imecore/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	cacheSize        int
	rc               *resource.Controller
	magic            string
	verifyChecksums  bool
	cacheDir         string
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging for Open and Close.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := imecore.NewJSONLogger(slog.LevelInfo)
//	eng, _ := imecore.Open(ctx, src, imecore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithConnectorCacheSize sets the transition cost cache size of every
// Connector the engine hands out. It is rounded up to a power of two;
// n <= 0 selects connector.DefaultCacheSize.
func WithConnectorCacheSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			o.cacheSize = connector.DefaultCacheSize
			return
		}
		o.cacheSize = 1 << bits.Len(uint(n-1))
	}
}

// WithResourceController bounds the memory, load parallelism and remote
// read throughput used by Open.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMagic sets the expected data set magic. Empty selects the default.
func WithMagic(magic string) Option {
	return func(o *options) {
		o.magic = magic
	}
}

// WithVerifyChecksums toggles CRC32C verification of section bytes at load.
// Enabled by default.
func WithVerifyChecksums(verify bool) Option {
	return func(o *options) {
		o.verifyChecksums = verify
	}
}

// WithCacheDir keeps a copy of remote data sets in dir and maps it from
// there. A cached copy is reused while its size matches the remote blob.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cacheDir = dir
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		cacheSize:        connector.DefaultCacheSize,
		verifyChecksums:  true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

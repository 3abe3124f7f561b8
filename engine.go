package imecore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/imecore/collocation"
	"github.com/hupe1980/imecore/connector"
	"github.com/hupe1980/imecore/datamanager"
	"github.com/hupe1980/imecore/segmenter"
	"github.com/hupe1980/imecore/suggestion"
)

// Component names used in logs, metrics and ComponentError.
const (
	ComponentConnector   = "connector"
	ComponentSegmenter   = "segmenter"
	ComponentSuggestion  = "suggestion_filter"
	ComponentCollocation = "collocation_filter"
	ComponentSuppression = "suppression_filter"
)

// Engine holds a loaded data set and the query components built from it.
type Engine struct {
	src    Source
	opts   options
	logger *Logger
	data   *loaded

	connector   *connector.Connector
	segmenter   *segmenter.Segmenter
	suggestion  *suggestion.Filter
	collocation *collocation.Filter
	suppression *collocation.SuppressionFilter

	closeOnce sync.Once
	closeErr  error
}

// Open loads the data set at src and builds every query component.
//
// Components are built in parallel, bounded by the resource controller's
// worker limit. A malformed connector, segmenter or collocation filter fails
// Open. A malformed suggestion filter is logged and replaced by one that
// accepts everything.
func Open(ctx context.Context, src Source, optFns ...Option) (*Engine, error) {
	if src == nil {
		return nil, ErrInvalidSource
	}
	o := applyOptions(optFns)
	e := &Engine{
		src:    src,
		opts:   o,
		logger: o.logger.WithSource(src.String()),
	}

	start := time.Now()
	err := e.open(ctx)
	d := time.Since(start)

	var size int
	if err == nil {
		size = e.data.dm.DataSet().Len()
	}
	e.logger.LogOpen(ctx, src.String(), size, d, err)
	o.metricsCollector.RecordOpen(src.Kind(), int64(size), d, err)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := e.src.load(ctx, &e.opts)
	if err != nil {
		return translateError(err)
	}
	e.data = data

	for _, s := range data.dm.DataSet().Sections() {
		e.logger.LogSectionLoaded(ctx, s)
	}

	if err := e.build(ctx); err != nil {
		_ = data.close(e.opts.rc)
		return err
	}
	return nil
}

func (e *Engine) build(ctx context.Context) error {
	dm := e.data.dm
	g, gctx := errgroup.WithContext(ctx)

	e.spawn(gctx, g, ComponentConnector, func() (err error) {
		e.connector, err = connector.NewFromDataManager(dm, e.opts.cacheSize)
		return err
	})
	e.spawn(gctx, g, ComponentSegmenter, func() (err error) {
		e.segmenter, err = segmenter.NewFromDataManager(dm)
		return err
	})
	e.spawn(gctx, g, ComponentCollocation, func() (err error) {
		e.collocation, err = collocation.NewFromDataManager(dm)
		return err
	})
	e.spawn(gctx, g, ComponentSuppression, func() (err error) {
		e.suppression, err = collocation.NewSuppressionFromDataManager(dm)
		return err
	})
	e.spawn(gctx, g, ComponentSuggestion, func() error {
		f, err := suggestion.NewFromDataManager(dm)
		if err != nil {
			e.logger.LogFailOpen(gctx, ComponentSuggestion, err)
			e.opts.metricsCollector.RecordFailOpen(ComponentSuggestion)
			f = suggestion.Disabled()
		}
		e.suggestion = f
		return nil
	})

	return g.Wait()
}

// spawn builds one component on the group under a worker slot.
func (e *Engine) spawn(ctx context.Context, g *errgroup.Group, name string, build func() error) {
	g.Go(func() error {
		if err := e.opts.rc.AcquireWorker(ctx); err != nil {
			return err
		}
		defer e.opts.rc.ReleaseWorker()

		start := time.Now()
		err := build()
		d := time.Since(start)

		e.logger.LogComponentInit(ctx, name, d, err)
		e.opts.metricsCollector.RecordComponentInit(name, d, err)
		if err != nil {
			return &ComponentError{Component: name, cause: err}
		}
		return nil
	})
}

// Connector returns the engine's shared Connector. Its cache is not
// synchronized; concurrent callers should use NewConnector instead.
func (e *Engine) Connector() *connector.Connector { return e.connector }

// NewConnector returns a Connector sharing the engine's parsed rows with a
// private cache, for use by a single goroutine.
func (e *Engine) NewConnector() *connector.Connector { return e.connector.Clone() }

// Segmenter returns the segmenter. It is safe for concurrent use.
func (e *Engine) Segmenter() *segmenter.Segmenter { return e.segmenter }

// SuggestionFilter returns the suggestion filter. It is safe for concurrent
// use and never nil.
func (e *Engine) SuggestionFilter() *suggestion.Filter { return e.suggestion }

// CollocationFilter returns the collocation filter.
func (e *Engine) CollocationFilter() *collocation.Filter { return e.collocation }

// SuppressionFilter returns the collocation suppression filter.
func (e *Engine) SuppressionFilter() *collocation.SuppressionFilter { return e.suppression }

// DataManager returns the loaded data set.
func (e *Engine) DataManager() *datamanager.DataManager { return e.data.dm }

// Version returns the data version string.
func (e *Engine) Version() string { return e.data.dm.Version() }

// Source returns the source the engine was opened from.
func (e *Engine) Source() Source { return e.src }

// Close releases the data set. It is idempotent. Components obtained from
// the engine must not be used afterwards.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.closeOnce.Do(func() {
		e.closeErr = e.data.close(e.opts.rc)
		e.logger.LogClose(context.Background(), e.src.String(), e.closeErr)
	})
	return e.closeErr
}

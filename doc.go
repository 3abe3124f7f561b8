// Package imecore is the conversion scoring core of a Japanese input method
// engine.
//
// It loads a compiled data set and serves the read-only lookups a lattice
// converter needs while ranking candidates:
//
//   - transition costs between POS ids (Connector)
//   - segment boundary decisions and boundary penalties (Segmenter)
//   - bad-suggestion checks (SuggestionFilter)
//   - collocation and collocation suppression checks
//
// # Quick Start
//
// Local data file (memory mapped):
//
//	ctx := context.Background()
//	eng, err := imecore.Open(ctx, imecore.Local("/usr/share/ime/imecore.data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	conn := eng.NewConnector() // one per goroutine
//	cost := conn.GetTransitionCost(rid, lid)
//
// Remote data set:
//
//	store, _ := s3.New(ctx, "ime-data", func(o *s3.Options) { o.Prefix = "releases/" })
//	eng, err := imecore.Open(ctx, imecore.Remote(store, "imecore.data"),
//	    imecore.WithResourceController(resource.NewController(resource.Config{
//	        IOLimitBytesPerSec: 64 << 20,
//	    })))
//
// # Concurrency
//
// Open is the only operation that performs I/O. Everything it returns is
// immutable except the connector cache, which is unsynchronized: give each
// goroutine its own Connector via NewConnector.
package imecore

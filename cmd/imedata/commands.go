package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/hupe1980/imecore"
	"github.com/hupe1980/imecore/codec"
	"github.com/hupe1980/imecore/connector"
	"github.com/hupe1980/imecore/datamanager"
	"github.com/hupe1980/imecore/datamanager/datamanagertest"
	"github.com/hupe1980/imecore/dataset"
	"github.com/hupe1980/imecore/suggestion"
)

func newFlagSet(name string, stdout io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("imedata "+name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return errUsage
	}
	return nil
}

// sourceFlags selects the data set for query commands.
type sourceFlags struct {
	input   string
	config  string
	magic   string
	verbose bool
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.input, "i", "", "data set file")
	fs.StringVar(&s.config, "config", "", "YAML configuration naming the data set")
	fs.StringVar(&s.magic, "magic", "", "expected data set magic (default: built in)")
	fs.BoolVar(&s.verbose, "v", false, "log load progress to stderr")
}

func (s *sourceFlags) open(ctx context.Context) (*imecore.Engine, error) {
	level := slog.LevelWarn
	if s.verbose {
		level = slog.LevelDebug
	}

	switch {
	case s.config != "":
		cfg, err := imecore.LoadConfig(s.config)
		if err != nil {
			return nil, err
		}
		src, err := cfg.OpenSource(ctx)
		if err != nil {
			return nil, err
		}
		opts := append(cfg.Options(), imecore.WithLogLevel(level))
		if s.magic != "" {
			opts = append(opts, imecore.WithMagic(s.magic))
		}
		return imecore.Open(ctx, src, opts...)
	case s.input != "":
		return imecore.Open(ctx, imecore.Local(s.input),
			imecore.WithLogLevel(level),
			imecore.WithMagic(s.magic))
	default:
		return nil, fmt.Errorf("%w: -i or -config is required", errUsage)
	}
}

func parseIDs(args []string) (uint16, uint16, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%w: want <rid> <lid>", errUsage)
	}
	ids := make([]uint16, 2)
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 16)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid id %q: %w", a, err)
		}
		ids[i] = uint16(v)
	}
	return ids[0], ids[1], nil
}

// checkIDs rejects ids past the tables; lookups do not bounds check.
func checkIDs(rid uint16, maxRID int, lid uint16, maxLID int) error {
	if int(rid) > maxRID {
		return fmt.Errorf("%w: rid %d out of range [0, %d]", errUsage, rid, maxRID)
	}
	if int(lid) > maxLID {
		return fmt.Errorf("%w: lid %d out of range [0, %d]", errUsage, lid, maxLID)
	}
	return nil
}

func runPack(args []string, stdout io.Writer) error {
	fs := newFlagSet("pack", stdout)
	dir := fs.String("dir", "", "directory holding one file per section")
	out := fs.String("o", "imecore.data", "output file")
	codecName := fs.String("codec", "zstd", "section codec: none, zstd, lz4, snappy")
	magic := fs.String("magic", "", "data set magic (default: built in)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("%w: -dir is required", errUsage)
	}

	c, err := codec.ByName(*codecName)
	if err != nil {
		return err
	}

	var s datamanager.Sections
	for _, name := range datamanager.RequiredSections {
		b, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			return fmt.Errorf("section %s: %w", name, err)
		}
		if name == datamanager.SectionVersion {
			b = []byte(strings.TrimSpace(string(b)))
		}
		if err := s.Set(name, b); err != nil {
			return err
		}
	}

	data, err := s.Bytes(*magic, c)
	if err != nil {
		return err
	}
	// Reject output the engine could not load.
	dm, err := datamanager.FromArray(data, *magic)
	if err != nil {
		return err
	}
	_ = dm.Close()

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes, %d sections)\n", *out, len(data), len(datamanager.RequiredSections))
	return nil
}

func runUnpack(args []string, stdout io.Writer) error {
	fs := newFlagSet("unpack", stdout)
	input := fs.String("i", "", "data set file")
	dir := fs.String("dir", "", "output directory")
	magic := fs.String("magic", "", "expected data set magic (default: built in)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *input == "" || *dir == "" {
		return fmt.Errorf("%w: -i and -dir are required", errUsage)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return err
	}
	ds, err := dataset.Open(data, func(o *dataset.ReaderOptions) { o.Magic = *magic })
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	for _, s := range ds.Sections() {
		b, err := ds.Get(s.Name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(*dir, s.Name), b, 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, "extracted %d sections to %s\n", ds.Len(), *dir)
	return nil
}

func runInfo(args []string, stdout io.Writer) error {
	fs := newFlagSet("info", stdout)
	var src sourceFlags
	src.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	eng, err := src.open(context.Background())
	if err != nil {
		return err
	}
	defer eng.Close()

	ds := eng.DataManager().DataSet()
	meta := eng.Connector().Metadata()
	cl, cr := eng.Segmenter().CompressedSize()

	fmt.Fprintf(stdout, "source:      %s\n", eng.Source())
	fmt.Fprintf(stdout, "version:     %s\n", eng.Version())
	fmt.Fprintf(stdout, "size:        %d bytes\n", ds.Len())
	fmt.Fprintf(stdout, "connector:   %d x %d, resolution %d\n", meta.RSize, meta.LSize, meta.Resolution)
	fmt.Fprintf(stdout, "segmenter:   %d x %d ids, compressed %d x %d\n",
		eng.Segmenter().LSize()+1, eng.Segmenter().RSize()+1, cl, cr)
	fmt.Fprintf(stdout, "suggestion:  enabled=%t\n\n", eng.SuggestionFilter().Enabled())

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tOFFSET\tSTORED\tSIZE\tCODEC\tCRC32C")
	for _, s := range ds.Sections() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%08x\n", s.Name, s.Offset, s.StoredSize, s.Size, s.Codec, s.Checksum)
	}
	return tw.Flush()
}

func runCost(args []string, stdout io.Writer) error {
	fs := newFlagSet("cost", stdout)
	var src sourceFlags
	src.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	rid, lid, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}

	eng, err := src.open(context.Background())
	if err != nil {
		return err
	}
	defer eng.Close()

	conn := eng.Connector()
	if err := checkIDs(rid, conn.Size()-1, lid, conn.Size()-1); err != nil {
		return err
	}
	fmt.Fprintln(stdout, conn.GetTransitionCost(rid, lid))
	return nil
}

func runBoundary(args []string, stdout io.Writer) error {
	fs := newFlagSet("boundary", stdout)
	var src sourceFlags
	src.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	rid, lid, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}

	eng, err := src.open(context.Background())
	if err != nil {
		return err
	}
	defer eng.Close()

	seg := eng.Segmenter()
	if err := checkIDs(rid, seg.LSize(), lid, seg.RSize()); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "boundary=%t suffix_penalty(%d)=%d prefix_penalty(%d)=%d\n",
		seg.IsBoundaryIDs(rid, lid), rid, seg.SuffixPenalty(rid), lid, seg.PrefixPenalty(lid))
	return nil
}

func runSuggest(args []string, stdout io.Writer) error {
	fs := newFlagSet("suggest", stdout)
	var src sourceFlags
	src.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: want one or more words", errUsage)
	}

	eng, err := src.open(context.Background())
	if err != nil {
		return err
	}
	defer eng.Close()

	f := eng.SuggestionFilter()
	for _, w := range fs.Args() {
		verdict := "ok"
		if f.IsBadSuggestion(w) {
			verdict = "bad"
		}
		fmt.Fprintf(stdout, "%s\t%s\n", w, verdict)
	}
	return nil
}

func runCollocation(args []string, stdout io.Writer) error {
	fs := newFlagSet("collocation", stdout)
	var src sourceFlags
	src.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: want <left> <right>", errUsage)
	}

	eng, err := src.open(context.Background())
	if err != nil {
		return err
	}
	defer eng.Close()

	left, right := fs.Arg(0), fs.Arg(1)
	fmt.Fprintf(stdout, "collocation=%t suppressed=%t\n",
		eng.CollocationFilter().Exists(left, right),
		eng.SuppressionFilter().Exists(left, right))
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

func runGenFilter(args []string, stdout io.Writer) error {
	fs := newFlagSet("gen-filter", stdout)
	words := fs.String("words", "", "word list, one word per line")
	out := fs.String("o", "sugg", "output file")
	rate := fs.Float64("rate", suggestion.DefaultErrorRate, "target false positive rate")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *words == "" {
		return fmt.Errorf("%w: -words is required", errUsage)
	}

	list, err := readLines(*words)
	if err != nil {
		return err
	}
	b, err := suggestion.NewBuilder(len(list), *rate)
	if err != nil {
		return err
	}
	for _, w := range list {
		b.Add(w)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if _, err := b.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d words)\n", *out, b.Count())
	return nil
}

// readCostMatrix parses a size line followed by size*size costs in
// [rid][lid] order, one per line.
func readCostMatrix(path string) ([][]int, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New("empty cost matrix")
	}
	n, err := strconv.Atoi(lines[0])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid matrix size %q", lines[0])
	}
	if len(lines)-1 != n*n {
		return nil, fmt.Errorf("matrix of size %d needs %d costs, have %d", n, n*n, len(lines)-1)
	}

	costs := make([][]int, n)
	for rid := range costs {
		costs[rid] = make([]int, n)
		for lid := range costs[rid] {
			line := lines[1+rid*n+lid]
			v, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("cost [%d][%d]: %w", rid, lid, err)
			}
			costs[rid][lid] = v
		}
	}
	return costs, nil
}

func runGenConnector(args []string, stdout io.Writer) error {
	fs := newFlagSet("gen-connector", stdout)
	matrix := fs.String("matrix", "", "cost matrix file")
	out := fs.String("o", "conn", "output file")
	resolution := fs.Int("resolution", 1, "cost resolution; values above 1 store 1-byte costs")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *matrix == "" {
		return fmt.Errorf("%w: -matrix is required", errUsage)
	}

	costs, err := readCostMatrix(*matrix)
	if err != nil {
		return err
	}
	data, err := connector.NewBuilder(costs, *resolution).Build()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d x %d, %d bytes)\n", *out, len(costs), len(costs), len(data))
	return nil
}

func runFixture(args []string, stdout io.Writer) error {
	fs := newFlagSet("fixture", stdout)
	out := fs.String("o", "imecore.data", "output file")
	seed := fs.Int64("seed", 1, "random seed")
	codecName := fs.String("codec", "zstd", "section codec: none, zstd, lz4, snappy")
	if err := parse(fs, args); err != nil {
		return err
	}

	c, err := codec.ByName(*codecName)
	if err != nil {
		return err
	}
	f, err := datamanagertest.New(*seed)
	if err != nil {
		return err
	}
	data, err := f.Bytes("", c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

func loadStoreConfig(path string) (*imecore.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: -config is required", errUsage)
	}
	return imecore.LoadConfig(path)
}

func runPush(args []string, stdout io.Writer) error {
	fs := newFlagSet("push", stdout)
	config := fs.String("config", "", "YAML configuration naming the store and blob")
	input := fs.String("i", "", "data set file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("%w: -i is required", errUsage)
	}
	cfg, err := loadStoreConfig(*config)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return err
	}
	// Never publish a data set the engine would reject.
	dm, err := datamanager.FromArray(data, cfg.Magic)
	if err != nil {
		return err
	}
	_ = dm.Close()

	ctx := context.Background()
	store, err := cfg.Store(ctx)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, cfg.BlobName(), data); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "pushed %s to %s\n", *input, cfg.BlobName())
	return nil
}

func runList(args []string, stdout io.Writer) error {
	fs := newFlagSet("ls", stdout)
	config := fs.String("config", "", "YAML configuration naming the store")
	prefix := fs.String("prefix", "", "name prefix")
	if err := parse(fs, args); err != nil {
		return err
	}
	cfg, err := loadStoreConfig(*config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := cfg.Store(ctx)
	if err != nil {
		return err
	}
	names, err := store.List(ctx, *prefix)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(stdout, n)
	}
	return nil
}

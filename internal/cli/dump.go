package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/render"
)

// engineOpts holds the flags that override config file values.
type engineOpts struct {
	maxDepth    int
	timeout     time.Duration
	noCodegen   bool
	chunks      string
	redisAddr   string
	mongoURI    string
	getters     bool
	noMethods   bool
	maxChildren int
}

func (o *engineOpts) register(fs *pflag.FlagSet) {
	fs.IntVar(&o.maxDepth, "max-depth", 10, "nesting ceiling below the root (negative disables)")
	fs.DurationVar(&o.timeout, "timeout", 5*time.Second, "time budget per dump (0 disables)")
	fs.BoolVar(&o.noCodegen, "no-codegen", false, "omit generated access expressions")
	fs.StringVar(&o.chunks, "chunks", config.BackendMemory, "chunk scratch backend: none, memory, file, redis, mongo")
	fs.StringVar(&o.redisAddr, "redis-addr", "", "redis address for --chunks redis")
	fs.StringVar(&o.mongoURI, "mongo-uri", "", "mongo URI for --chunks mongo")
	fs.BoolVar(&o.getters, "getters", false, "call Get*/Is*/Has* methods and show their results")
	fs.BoolVar(&o.noMethods, "no-methods", false, "do not list method sets")
	fs.IntVar(&o.maxChildren, "max-children", 1000, "children shown per container (0 disables)")
}

// apply copies explicitly set flags onto cfg and validates the result.
func (o *engineOpts) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("max-depth") {
		cfg.Limits.MaxDepth = o.maxDepth
	}
	if fs.Changed("timeout") {
		cfg.Limits.Timeout = config.Duration{Duration: o.timeout}
	}
	if o.noCodegen {
		cfg.Codegen.Enabled = false
	}
	if fs.Changed("chunks") {
		cfg.Chunks.Enabled = o.chunks != config.BackendNone
		cfg.Chunks.Backend = o.chunks
	}
	if fs.Changed("redis-addr") {
		cfg.Chunks.RedisAddr = o.redisAddr
	}
	if fs.Changed("mongo-uri") {
		cfg.Chunks.MongoURI = o.mongoURI
	}
	if fs.Changed("getters") {
		cfg.Analysis.Getters = o.getters
	}
	if o.noMethods {
		cfg.Analysis.Methods = false
	}
	if fs.Changed("max-children") {
		cfg.Analysis.MaxChildren = o.maxChildren
	}
	return cfg.Validate()
}

// dumpOpts holds the command-line flags for the dump command.
type dumpOpts struct {
	demo   bool
	output string
	render renderOpts
	engine engineOpts
}

// dumpCommand creates the dump command.
func (c *CLI) dumpCommand() *cobra.Command {
	opts := dumpOpts{render: renderOpts{format: render.FormatText}}

	cmd := &cobra.Command{
		Use:   "dump [files...]",
		Short: "Dump JSON or TOML documents, or the built-in demo values",
		Long: `Dump decodes every input file into plain Go maps, slices and scalars and
renders it as an annotated tree. Inputs are dumped concurrently, each in its
own session. Use "-" to read a document from standard input.`,
		Example: `  spyglass dump --demo
  spyglass dump config.toml --format json --indent
  spyglass dump a.json b.json --format svg -o out.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.render.format); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.engine.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			inputs, err := loadInputs(args)
			if err != nil {
				return err
			}
			if opts.demo {
				inputs = append(inputs, input{name: "demo", value: newDemo()})
			}
			if len(inputs) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to dump: pass input files or --demo")
			}
			return c.runDump(cmd.Context(), cfg, inputs, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.demo, "demo", false, "dump the built-in demo values")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single input) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.render.format, "format", "f", opts.render.format, "output format: text, json, dot, svg")
	cmd.Flags().BoolVar(&opts.render.color, "color", false, "colorize text output")
	cmd.Flags().BoolVar(&opts.render.detailed, "detailed", false, "show DOM ids and metadata in diagrams")
	cmd.Flags().BoolVar(&opts.render.indent, "indent", false, "pretty-print JSON output")
	opts.engine.register(cmd.Flags())

	return cmd
}

// dumped is the outcome of one input.
type dumped struct {
	name  string
	data  []byte
	stats dump.Stats
}

// runDump dumps the inputs concurrently and writes the results in input
// order.
func (c *CLI) runDump(ctx context.Context, cfg config.Config, inputs []input, opts *dumpOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	r, err := newRenderer(opts.render, cfg.Codegen.Enabled)
	if err != nil {
		return err
	}
	d, closeBackend, err := c.newDumper(ctx, cfg, r)
	if err != nil {
		return err
	}
	defer closeBackend()

	results := make([]dumped, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, in := range inputs {
		g.Go(func() error {
			if err := errors.ValidateName(in.name); err != nil {
				return err
			}
			res := d.Analyze(gctx, in.value, in.name)
			data, err := finishOutput(gctx, opts.render.format, res)
			if err != nil {
				return fmt.Errorf("%s: %w", in.name, err)
			}
			loggerFromContext(gctx).Debug("dumped input", "name", in.name, "dump", res.DumpID, "bytes", len(data))
			results[i] = dumped{name: in.name, data: data, stats: res.Stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	multiple := len(results) > 1
	for _, res := range results {
		if err := writeDump(opts, res, multiple); err != nil {
			return err
		}
		if res.stats.Degraded {
			printWarning("%s: chunk storage failed, assembled in memory", res.name)
		}
	}
	prog.done(fmt.Sprintf("Dumped %d input(s)", len(results)))
	return nil
}

func writeDump(opts *dumpOpts, res dumped, multiple bool) error {
	path := ""
	if opts.output != "" {
		path = outputPath(opts.output, opts.render.format, res.name, multiple)
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(res.data); err != nil {
		return err
	}
	if path != "" {
		printFile(path)
		printStats(res.name, res.stats)
	}
	return nil
}

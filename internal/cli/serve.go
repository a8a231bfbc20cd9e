package cli

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/httpdump"
	"github.com/matzehuels/spyglass/pkg/render"
)

const (
	defaultAddr  = "127.0.0.1:7070"
	debugPrefix  = "/debug/dump"
	shutdownWait = 5 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		engine engineOpts
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dumps of demo and runtime values over HTTP",
		Long: `Serve starts an HTTP server exposing the debug dump handler under
/debug/dump. Every request dumps the current state of the value, e.g.

  curl localhost:7070/debug/dump/memstats?format=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := engine.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	engine.register(cmd.Flags())
	return cmd
}

// newDebugHandler builds the dump handler with text, JSON and DOT formats
// sharing one chunk backend, and registers the built-in values.
func (c *CLI) newDebugHandler(cfg config.Config, backend cache.Cache) (*httpdump.Handler, error) {
	dumpers := make(map[string]*dump.Dumper)
	for _, f := range []string{render.FormatText, render.FormatJSON, render.FormatDOT} {
		r, err := newRenderer(renderOpts{format: f}, cfg.Codegen.Enabled)
		if err != nil {
			return nil, err
		}
		d, err := dump.New(cfg, r, dump.WithLogger(c.Logger), dump.WithCache(backend))
		if err != nil {
			return nil, err
		}
		dumpers[f] = d
	}

	h := httpdump.New(dumpers[render.FormatText],
		httpdump.WithFormat(render.FormatJSON, dumpers[render.FormatJSON], "application/json"),
		httpdump.WithFormat(render.FormatDOT, dumpers[render.FormatDOT], "text/vnd.graphviz"),
		httpdump.WithLogger(c.Logger),
	)

	demo := newDemo()
	h.Register("demo", func() any { return demo })
	h.Register("config", func() any { return cfg })
	h.Register("memstats", func() any {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return ms
	})
	h.Register("build", func() any {
		info, _ := debug.ReadBuildInfo()
		return info
	})
	return h, nil
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, addr string) error {
	logger := loggerFromContext(ctx)

	backend := c.openBackend(ctx, cfg.Chunks)
	defer backend.Close()

	h, err := c.newDebugHandler(cfg, backend)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, debugPrefix+"/", http.StatusFound)
	})
	r.Mount(debugPrefix, h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Serving dumps")
	printKeyValue("Address", StyleLink.Render("http://"+addr+debugPrefix+"/"))
	printDetail("Values: %v", h.Names())

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

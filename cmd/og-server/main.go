package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/og-negotiator/internal/config"
	"github.com/Sternrassler/og-negotiator/internal/server"
	"github.com/Sternrassler/og-negotiator/pkg/artifact"
	"github.com/Sternrassler/og-negotiator/pkg/content"
	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/Sternrassler/og-negotiator/pkg/negotiate"
	"github.com/Sternrassler/og-negotiator/pkg/render"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the og-server command tree. Configuration is loaded once
// before any subcommand runs.
func newRootCmd() *cobra.Command {
	v := config.New()
	var (
		configFile string
		cfg        config.Config
	)

	root := &cobra.Command{
		Use:          "og-server",
		Short:        "Serve records as Markdown, HTML, JSON, YAML or an OpenGraph preview image",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(v, cmd.Root().PersistentFlags(), configFile)
			if err != nil {
				return err
			}
			cfg = loaded
			logging.Setup(logging.Config{
				Level:  cfg.Log.Level,
				Pretty: cfg.Log.Pretty,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	config.RegisterFlags(root.PersistentFlags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	var output string
	renderCmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render the preview image of a record to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0] + ".png"
			}
			return renderToFile(cmd.Context(), cfg, args[0], output)
		},
	}
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <id>.png)")

	root.AddCommand(serveCmd, renderCmd)
	return root
}

func loadConfig(v *viper.Viper, flags *pflag.FlagSet, file string) (config.Config, error) {
	if err := config.BindFlags(v, flags); err != nil {
		return config.Config{}, err
	}
	return config.Load(v, file)
}

// serve runs the HTTP server until ctx is cancelled, then drains requests and
// background prefetches.
func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.NewLogger("og-server")

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	renderer, err := newRenderer(cfg.Render)
	if err != nil {
		return err
	}

	srv, prefetcher, err := newServer(cfg, store, renderer)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logStartup(logger, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP shutdown incomplete")
		}
		return prefetcher.Close(shutdownCtx)
	})

	return g.Wait()
}

func logStartup(logger zerolog.Logger, cfg config.Config) {
	renderer := "rasterizer"
	if cfg.Render.RemoteURL != "" {
		renderer = cfg.Render.RemoteURL
	}
	logger.Info().
		Str("addr", cfg.Server.Address()).
		Str("store", cfg.Store.Backend).
		Str("renderer", renderer).
		Dur("ttl", cfg.Artifact.TTL).
		Int("prefetch_concurrency", cfg.Artifact.PrefetchConcurrency).
		Bool("image_extension", cfg.Negotiate.ImageExtension).
		Msg("Starting og-server")
}

// openStore connects the configured artifact store. A Redis store must answer
// a ping before the server starts.
func openStore(ctx context.Context, cfg config.StoreConfig) (artifact.Store, error) {
	switch cfg.Backend {
	case config.BackendLevelDB:
		return artifact.OpenLevelDBStore(cfg.LevelDBPath)
	case config.BackendRedis:
		store := artifact.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// newRenderer returns the remote renderer when a URL is configured and the
// built-in rasterizer otherwise.
func newRenderer(cfg config.RenderConfig) (render.Renderer, error) {
	if cfg.RemoteURL == "" {
		return render.NewRasterizer(), nil
	}
	return render.NewRemote(render.DefaultRemoteConfig(cfg.RemoteURL))
}

func newServer(cfg config.Config, store artifact.Store, renderer render.Renderer) (*server.Server, *artifact.Prefetcher, error) {
	cache := artifact.New(store, artifact.Config{
		TTL:           cfg.Artifact.TTL,
		MaxAge:        artifact.DefaultMaxAge,
		RenderTimeout: cfg.Artifact.RenderTimeout,
	})
	prefetcher := artifact.NewPrefetcher(cache, cfg.Artifact.PrefetchConcurrency)

	var opts []negotiate.Option
	if cfg.Negotiate.ImageExtension {
		opts = append(opts, negotiate.WithImageExtension())
	}

	srv, err := server.New(server.Config{
		Resolver:   negotiate.NewResolver(opts...),
		Source:     content.NewDemoSource(),
		Cache:      cache,
		Prefetcher: prefetcher,
		Renderer:   renderer,
		TTL:        cfg.Artifact.TTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return srv, prefetcher, nil
}

// renderToFile writes the preview image of id to path without touching the
// store.
func renderToFile(ctx context.Context, cfg config.Config, id, path string) error {
	record, err := content.NewDemoSource().Lookup(ctx, id)
	if err != nil {
		return err
	}

	doc, err := content.PreviewHTML(record)
	if err != nil {
		return err
	}

	renderer, err := newRenderer(cfg.Render)
	if err != nil {
		return err
	}

	if cfg.Artifact.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Artifact.RenderTimeout)
		defer cancel()
	}

	img, err := renderer.Render(ctx, doc, render.DefaultOptions())
	if err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}

	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger := logging.NewLogger("og-server")
	logger.Info().
		Str("id", id).
		Str("path", path).
		Int("bytes", len(img)).
		Msg("Rendered preview image")
	return nil
}

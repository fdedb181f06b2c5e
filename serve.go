package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/eyescreen/eyescreen/bootstrap"
	"github.com/eyescreen/eyescreen/config"
	"github.com/eyescreen/eyescreen/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const mountAnchor = "#app"

func newServeCmd(f *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the browser client",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return f.withApp(ctx, func(app *Application) error {
				s := app.Settings
				if addr != "" {
					s.ListenAddr = addr
				}
				host, err := buildHost(app, s)
				if err != nil {
					return err
				}
				return runHost(ctx, host, s)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: $EYESCREEN_LISTEN_ADDR or "+config.ListenAddr()+")")
	return cmd
}

// buildHost creates the app with the resolved endpoint, registers the
// plugins and mounts it. Nothing can issue a request before the endpoint
// passed to bootstrap.New exists.
func buildHost(app *Application, s config.Settings) (*bootstrap.App, error) {
	log.Printf("mode=%s baseURL=%q", s.Mode, s.Endpoint.BaseURL())

	assets, err := web.FS(s.LiveAssets, s.AssetDir)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}

	host := bootstrap.New(s.Endpoint, bootstrap.WithTitle("眼底疾病检测"))
	plugins := []bootstrap.Plugin{
		bootstrap.ComponentLibrary{
			FS:          assets,
			Stylesheets: []string{"library/index.css"},
			Scripts:     []string{"app.js"},
		},
		bootstrap.APIProxy{Upstream: s.Upstream},
		bootstrap.HistoryPage{Repo: app.Repo},
	}
	for _, p := range plugins {
		if err := host.Use(p); err != nil {
			return nil, err
		}
	}
	if err := host.Mount(mountAnchor); err != nil {
		return nil, err
	}
	return host, nil
}

func runHost(ctx context.Context, host *bootstrap.App, s config.Settings) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on %s", s.ListenAddr)
		return host.Start(gctx, s.ListenAddr)
	})
	if s.LiveAssets {
		dir := filepath.Join(s.AssetDir, "dist")
		g.Go(func() error { return bootstrap.WatchAssets(gctx, host, dir) })
	}
	return g.Wait()
}

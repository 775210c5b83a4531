// Command sketchd runs the VR sketching engine and its device link.
package main

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VRBoard/internal/command"
	"VRBoard/internal/config"
	"VRBoard/internal/engine"
	"VRBoard/internal/export"
	linknet "VRBoard/internal/net"
	"VRBoard/internal/ui"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "sketchd",
		Short:        "VR sketching engine with a WebSocket device link",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "sketchd.toml", "configuration file")

	root.AddCommand(newServeCmd(&configPath), newConfigCmd(&configPath), newDiscoverCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var (
		addr    string
		preview bool
		noMDNS  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine and accept device connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Link.Addr = addr
			}
			if noMDNS {
				cfg.Link.MDNS = false
			}
			return serve(cmd.Context(), cfg, preview)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides link.addr)")
	cmd.Flags().BoolVar(&preview, "preview", false, "open the desktop preview window")
	cmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "do not advertise the link over mDNS")
	return cmd
}

func serve(parent context.Context, cfg config.Config, preview bool) error {
	e := engine.New(cfg.EngineConfig(), cfg.SurfaceSet())
	e.Pencil.SetTipColor(cfg.TipColor())
	e.SetMetrics(command.LogSink{})
	srv := linknet.NewServer(e)

	ln, err := net.Listen("tcp", cfg.Link.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Link.Addr, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	log.Printf("[CMD] Devices connect to %s", linknet.LinkURL(linknet.GetOutgoingIP(), port))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return e.Run(ctx, cfg.TickInterval()) })
	g.Go(func() error { return srv.Serve(ctx, ln) })

	if cfg.Link.MDNS {
		zone, err := linknet.Advertise(cfg.Link.Service, port)
		if err != nil {
			log.Printf("[MDNS] Advertising disabled: %v", err)
		} else {
			g.Go(func() error {
				<-ctx.Done()
				return zone.Shutdown()
			})
		}
	}

	if preview {
		p := ui.NewPreview(export.ViewFront)
		e.AddSink(p)
		ui.RunApp("VRBoard", linknet.LinkURL(linknet.GetOutgoingIP(), port), p, ui.Controls{
			OnTipColor: func(c color.NRGBA) { e.Push(engine.TipColor(c)) },
			OnWorkflow: func(k command.Kind) { e.Push(engine.ActivateWorkflow(k)) },
			OnExport: func(w io.Writer, view export.View) error {
				var strokes []export.Stroke
				if err := e.Do(ctx, func() { strokes = export.FromStrokes(e.Registry.All()) }); err != nil {
					return err
				}
				return export.WritePDF(w, strokes, view)
			},
		})
		// Closing the window ends the daemon.
		stop()
	}

	return g.Wait()
}

func newConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

func newDiscoverCmd(configPath *string) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List sketchd links advertised on the local network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return linknet.Browse(cfg.Link.Service, timeout, func(addr string) {
				fmt.Fprintln(cmd.OutOrStdout(), addr)
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "how long to wait for answers")
	return cmd
}

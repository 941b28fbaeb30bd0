package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ekiroute/pkg/config"
	"ekiroute/pkg/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the route proxy for browser clients",
	Long: `Serves POST /api/ekispert/route, forwarding one course search per request
to Ekispert with the API key from the request body. Useful when a browser
page cannot call the provider directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		defer logger.Sync()

		settings, err := config.Resolve()
		if err != nil {
			return err
		}
		addr := settings.Addr()
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		origins, _ := cmd.Flags().GetStringSlice("allow-origin")

		opts := []server.Option{}
		if len(origins) > 0 {
			opts = append(opts, server.WithAllowedOrigins(origins...))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("🚉 Route proxy listening on %s (POST %s)\n", addr, server.RoutePath)
		return server.New(logger, opts...).ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", config.DefaultListenAddr, "Listen address (defaults to EKIROUTE_ADDR)")
	serveCmd.Flags().StringSlice("allow-origin", nil, "Allowed CORS origins (default any)")
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/server"
)

var (
	serveAddr    string
	serveOrigins []string
	serveFlags   cascadeFlags
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "Allowed CORS origins (default any)")
	serveCmd.Flags().BoolVar(&serveFlags.face, "face", false, "Allow ?face=true lookups")
	serveCmd.Flags().BoolVar(&serveFlags.affiliations, "affiliations", false, "Add authors' affiliations to image searches")
	serveCmd.Flags().BoolVar(&serveFlags.noWeb, "no-web", false, "Skip the gpeters.com lookup")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cascade and stored answers over HTTP",
	Long: `Start an HTTP API:

  GET /health
  GET /api/v1/classify?name=<author>&face=<bool>
  GET /api/v1/authors/{name}
  GET /api/v1/counts`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, layout := requireDataDir()
	cls, err := buildClassifier(cfg, layout, serveFlags)
	if err != nil {
		exitForSetupError(err)
	}

	store := openStore(ctx, cfg)
	defer store.Close()

	h := server.NewHandler(cls, store)
	return server.ListenAndServe(ctx, serveAddr, server.NewRouter(h, serveOrigins))
}

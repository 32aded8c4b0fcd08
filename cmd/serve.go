package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gemini-chat-cli/cmd/utils"
	"gemini-chat-cli/internal/server"

	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveModel string
	serveEcho  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server that relays conversations to Gemini",
	Long: `Run the companion chat server. It exposes POST /api/chat and GET /health and
answers with Gemini using the key in GEMINI_API_KEY.

Examples:
  gchat serve
  gchat serve --addr :9090 --model gemini-1.5-pro
  gchat serve --echo          # no API key needed, replies echo the prompt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := settings.ServeAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		model := settings.Model
		if serveModel != "" {
			model = serveModel
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, closeBackend, err := newBackend(ctx, model)
		if err != nil {
			return err
		}
		defer closeBackend()

		srv := &http.Server{
			Addr:              addr,
			Handler:           server.New(backend, server.WithLogger(utils.LogDebug)).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(ctx, srv)
	},
}

func newBackend(ctx context.Context, model string) (server.Backend, func(), error) {
	if serveEcho {
		utils.OutputWarning("Running in echo mode; replies will not come from Gemini")
		return server.EchoBackend{}, func() {}, nil
	}
	if settings.APIKey == "" {
		return nil, nil, errors.New("GEMINI_API_KEY is not set; export it or add it to .env (or use --echo)")
	}
	b, err := server.NewGeminiBackend(ctx, settings.APIKey, model)
	if err != nil {
		return nil, nil, err
	}
	utils.LogDebug(fmt.Sprintf("gemini backend ready, model=%s", model))
	return b, func() { b.Close() }, nil
}

// runServer serves until ctx is cancelled, then drains in-flight requests.
func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		utils.OutputSuccess("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.OutputInfo("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, PORT or :8080)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Gemini model name (default from config or GCHAT_MODEL)")
	serveCmd.Flags().BoolVar(&serveEcho, "echo", false, "Reply by echoing the prompt instead of calling Gemini")
	rootCmd.AddCommand(serveCmd)
}

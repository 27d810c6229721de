package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/textlens/textlens/internal/handlers"
)

func newServeCmd() *cobra.Command {
	var port string
	var dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Long: `Starts the TextLens web API on the specified port.

The API accepts text for analysis, manages settings, custom prompts,
and run history, and moves selected images into the DaVinci export
folder.`,
		Example: `  # Start server on default port 8888
  textlens serve

  # Start server on custom port
  textlens serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := handlers.New(dir)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/analyze", handler.HandleAnalyze)
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/api/settings", handler.HandleSettings)
			mux.HandleFunc("/api/prompts", handler.HandlePrompts)
			mux.HandleFunc("/api/history", handler.HandleHistory)
			mux.HandleFunc("/api/images/used", handler.HandleMarkUsed)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("TextLens API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Working directory")

	return cmd
}

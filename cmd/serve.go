package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/gallery"
	"github.com/atelierlog/reportcard/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the designer API server",
	Long: `Start the Report Card designer API.
The API manages template sessions, renders live previews and exports
finished cards as PNG files.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Gallery.URL == "" {
		return errors.New("GALLERY_URL environment variable is required")
	}

	g, err := gallery.New(cfg.Gallery.URL, cfg.Gallery.Token)
	if err != nil {
		return fmt.Errorf("creating gallery client: %w", err)
	}

	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}

	server, err := web.NewServer(cfg, g, host, port)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Report Card API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

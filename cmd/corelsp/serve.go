package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javanhut/corelsp/internal/protocol"
	"github.com/javanhut/corelsp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server over stdio",
	Long:  "serve starts corelsp speaking LSP over stdin/stdout, the mode every editor integration launches it in.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	var stdLogger *log.Logger
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer file.Close()
		stdLogger = log.New(file, "[corelsp] ", log.LstdFlags|log.Lshortfile)
	} else {
		stdLogger = log.New(os.Stderr, "[corelsp] ", log.LstdFlags)
	}

	opts := server.ServerOptions{
		CarrionPath: carrionPath,
		Logger:      stdLogger,
	}

	transport := protocol.NewStdioTransport(os.Stdin, os.Stdout)
	srv := server.NewServerWithOptions(opts)
	srv.SetTransport(transport)

	stdLogger.Printf("Starting corelsp version %s", version)
	if carrionPath != "" {
		stdLogger.Printf("Using Carrion installation at: %s", carrionPath)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		stdLogger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := runServerLoop(ctx, srv, stdLogger); err != nil {
		stdLogger.Printf("Server error: %v", err)
		return err
	}

	stdLogger.Printf("Server shut down successfully")
	return nil
}

// runServerLoop processes requests until the context is cancelled, the
// server exits normally, or the transport reports the client disconnected.
func runServerLoop(ctx context.Context, srv *server.Server, logger *log.Logger) error {
	for {
		select {
		case <-ctx.Done():
			logger.Printf("Context cancelled, shutting down...")
			return nil
		default:
			if err := srv.ProcessRequest(ctx); err != nil {
				if srv.IsExited() {
					logger.Printf("Server exited normally")
					return nil
				}
				logger.Printf("Request processing error: %v", err)
				if isTransportError(err) {
					logger.Printf("Transport error detected, shutting down")
					return nil
				}
				continue
			}
		}
	}
}

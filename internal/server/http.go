package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// ServeHTTP exposes the MCP server over SSE on addr, with a /health probe,
// and blocks until SIGINT/SIGTERM. Stdio is the default transport; this
// one exists for hosts that connect over the network.
func ServeHTTP(s *mcpserver.MCPServer, addr string, logger *zap.Logger) error {
	sse := mcpserver.NewSSEServer(s)

	router := chi.NewRouter()
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Mount("/", sse)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting MCP SSE server", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/nhn-tools/dooray-mcp/internal/config"
	"github.com/nhn-tools/dooray-mcp/internal/dooray"
	"github.com/nhn-tools/dooray-mcp/internal/server"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := dooray.NewClient(cfg.BaseURL, cfg.APIToken, cfg.Timeout, logger)
	s := server.New(client, cfg, logger)

	logger.Info("dooray mcp server starting",
		zap.String("baseUrl", cfg.BaseURL),
		zap.String("defaultProject", cfg.DefaultProjectID),
	)

	if cfg.HTTPAddr != "" {
		if err := server.ServeHTTP(s, cfg.HTTPAddr, logger); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
		return
	}

	if err := mcpserver.ServeStdio(s); err != nil {
		logger.Fatal("stdio server failed", zap.Error(err))
	}
}

// newLogger builds a production zap logger writing to stderr; stdout is
// reserved for the MCP stdio transport.
func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = parsed
	}
	return cfg.Build()
}

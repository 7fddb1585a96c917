// Package main implements a standalone fake chat-completions oracle for
// running the gateway locally without a real model.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sipico/nlsql-gateway/internal/testutil/mockoracle"
)

// getPort returns the port from the PORT environment variable or the default.
func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	return port
}

// createHandler returns a mock oracle preloaded with the demo replies.
func createHandler() *mockoracle.Handler {
	h := mockoracle.NewHandler()
	h.LoadDemo()
	return h
}

// createHTTPServer creates an http.Server with the given port and handler.
func createHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// setupShutdownHandler closes httpServer on SIGINT or SIGTERM.
func setupShutdownHandler(httpServer *http.Server, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("shutting down mockoracle")
		//nolint:errcheck
		httpServer.Close()
		close(done)
	}()
	return done
}

// doHealthCheck returns 0 when url answers 200, 1 otherwise.
// Used by the container HEALTHCHECK through the health subcommand.
func doHealthCheck(url string) int {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 1
	}
	//nolint:errcheck // Response body close errors are unrecoverable in health check
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "health" {
		os.Exit(doHealthCheck("http://localhost:" + getPort() + "/health"))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	port := getPort()
	httpServer := createHTTPServer(port, createHandler())
	done := setupShutdownHandler(httpServer, logger)

	logger.Info("mockoracle listening", "port", port, "questions", len(mockoracle.DemoReplies))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("mockoracle stopped")
}

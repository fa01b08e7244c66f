package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kjhallberg/bullscows/server/runner"
)

const (
	defaultAddr             = "127.0.0.1:7878"
	environmentVariableAddr = "BULLSCOWS_ADDR"
	shutdownTimeout         = 5 * time.Second
)

var (
	addr       string
	maxLobbies int
	serverRun  runner.Runner
)

var rootCmd = &cobra.Command{
	Use:   "bullscows",
	Short: "Runs the Bulls & Cows lobby/game server",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", envOrDefault(environmentVariableAddr, defaultAddr), "address the server listens on")
	rootCmd.Flags().IntVar(&maxLobbies, "max-lobbies", 0, "maximum number of concurrent lobbies (0 = unbounded)")
}

func envOrDefault(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

func run(cmd *cobra.Command, args []string) error {
	if err := serverRun.Run(); err != nil {
		return err
	}
	defer serverRun.Finish()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	mux := newServeMux(logger, maxLobbies)
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Printf("listening on %v", addr)
		errC <- server.ListenAndServe()
	}()

	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errC:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case sig := <-done:
		logger.Printf("handled %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return nil
}

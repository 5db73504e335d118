package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/logging"
	"github.com/studiowebux/restdeck/internal/mock"
)

// runMock serves fixtures until interrupted
func runMock(cmd *cobra.Command) error {
	level := flagLogLevel
	if level == "" {
		level = "info"
	}
	logger, err := logging.New(level, "")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	cfg, workdir, err := mockSettings(cmd)
	if err != nil {
		return err
	}

	server := mock.NewServer(cfg, workdir, logger)
	if err := server.Start(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Serving %d routes at %s\n", len(cfg.Routes), server.GetAddress())
	fmt.Fprintf(out, "Browse them with: restdeck --base-url %s\n", server.GetAddress())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	ctx, stop := contextWithSignals(cmd.Context())
	defer stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "Stopping fixture server")
			return server.Stop()
		case <-server.NotifyChannel():
			// The log buffer is trimmed, so progress is tracked by timestamp
			for _, entry := range server.GetLogs() {
				if !entry.Timestamp.After(last) {
					continue
				}
				last = entry.Timestamp
				fmt.Fprintf(out, "%s %-6s %-10s %3d %-8s %s\n",
					entry.Timestamp.Local().Format("15:04:05"),
					entry.Method,
					entry.Path,
					entry.Status,
					entry.MatchedRule,
					executor.FormatDuration(entry.Duration.Milliseconds()))
			}
		}
	}
}

// mockSettings builds the server config from the route file and flags
func mockSettings(cmd *cobra.Command) (*mock.Config, string, error) {
	cfg := mock.DefaultConfig()
	workdir, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	if mockConfig != "" {
		cfg, err = mock.LoadConfig(mockConfig)
		if err != nil {
			return nil, "", err
		}
		workdir = filepath.Dir(mockConfig)
		if cmd.Flags().Changed("port") {
			cfg.Port = mockPort
		}
		if cmd.Flags().Changed("host") {
			cfg.Host = mockHost
		}
	} else {
		cfg.Port = mockPort
		cfg.Host = mockHost
	}

	for _, arg := range mockDelays {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, "", fmt.Errorf("invalid --delay %q (expected name=duration)", arg)
		}
		delay, err := time.ParseDuration(value)
		if err != nil {
			return nil, "", fmt.Errorf("invalid --delay %q: %w", arg, err)
		}
		if err := cfg.SetDelay(name, delay); err != nil {
			return nil, "", err
		}
	}

	for _, arg := range mockFails {
		name, value, hasStatus := strings.Cut(arg, "=")
		status := http.StatusInternalServerError
		if hasStatus {
			status, err = strconv.Atoi(value)
			if err != nil || status < 400 || status > 599 {
				return nil, "", fmt.Errorf("invalid --fail %q (status must be 400-599)", arg)
			}
		}
		if err := cfg.SetFailure(name, status); err != nil {
			return nil, "", err
		}
	}

	return cfg, workdir, nil
}

// normalizeBaseURL validates a --base-url value the same way config.yaml is validated
func normalizeBaseURL(raw string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return "", fmt.Errorf("--base-url must start with http:// or https://, got %q", raw)
	}
	return base, nil
}

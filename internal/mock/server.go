package mock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxLogs = 1000

// Server serves collection fixtures over HTTP
type Server struct {
	config     *Config
	logger     *zap.Logger
	httpServer *http.Server
	addr       string
	logs       []RequestLog
	logsMutex  sync.RWMutex
	workdir    string
	notifyCh   chan struct{} // Signalled when a new log arrives
}

// NewServer creates a new fixture server
func NewServer(config *Config, workdir string, logger *zap.Logger) *Server {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		config:   config,
		logger:   logger,
		logs:     make([]RequestLog, 0),
		workdir:  workdir,
		notifyCh: make(chan struct{}, 100),
	}
}

// Handler returns the request handler, for embedding or httptest
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start binds the listener and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.config.Host, s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.addr = ln.Addr().String()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("fixture server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("fixture server started", zap.String("addr", s.addr), zap.Int("routes", len(s.config.Routes)))
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	route := s.findMatchingRoute(r.Method, r.URL.Path)

	var (
		status      int
		body        []byte
		matchedRule = "none"
	)

	if route == nil {
		status = http.StatusNotFound
		body = []byte(fmt.Sprintf(`{"error":"no route for %s %s"}`, r.Method, r.URL.Path))
	} else {
		matchedRule = route.Name
		if matchedRule == "" {
			matchedRule = route.Path
		}

		if route.Delay > 0 {
			select {
			case <-time.After(time.Duration(route.Delay) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}

		status = route.Status
		if status == 0 {
			status = http.StatusOK
		}

		var err error
		body, err = s.routeBody(route)
		if err != nil {
			status = http.StatusInternalServerError
			body = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	duration := time.Since(start)
	s.logger.Debug("fixture request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("route", matchedRule),
		zap.Int("status", status),
		zap.Duration("duration", duration))

	if s.config.Logging {
		s.logRequest(RequestLog{
			Timestamp:   start,
			Method:      r.Method,
			Path:        r.URL.Path,
			MatchedRule: matchedRule,
			Status:      status,
			Duration:    duration,
		})
	}
}

// routeBody resolves the body of a route: file, then inline, then fixture
func (s *Server) routeBody(route *Route) ([]byte, error) {
	switch {
	case route.BodyFile != "":
		path := route.BodyFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.workdir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file %s: %w", route.BodyFile, err)
		}
		return data, nil
	case route.Body != "":
		return []byte(route.Body), nil
	case route.Fixture != "":
		return fixture(route.Fixture)
	default:
		return []byte("[]"), nil
	}
}

// findMatchingRoute finds the first route that matches the method and path
func (s *Server) findMatchingRoute(method, path string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		routeMethod := route.Method
		if routeMethod == "" {
			routeMethod = http.MethodGet
		}
		if strings.EqualFold(routeMethod, method) && route.Path == path {
			return route
		}
	}
	return nil
}

func (s *Server) logRequest(entry RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// GetLogs returns a copy of all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// GetAddress returns the base URL clients should use
func (s *Server) GetAddress() string {
	if s.addr != "" {
		return "http://" + s.addr
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// Package web exposes the control and observation endpoints for the
// trading engine: lifecycle, watchlist management, the trade log and an
// SSE stream of executed orders.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/voxtrade/riskpilot/internal/domain"
	"github.com/voxtrade/riskpilot/internal/services/watchlist"
	"github.com/voxtrade/riskpilot/internal/storage/tradelog"
)

const tradePollInterval = 2 * time.Second

type engineController interface {
	Start() string
	Stop() string
	Running() bool
	Watchlist() *watchlist.Watchlist
}

type positionReader interface {
	OpenPositions(ctx context.Context) (map[string]domain.RawPosition, error)
}

// Server exposes the HTTP API and the SSE trade stream.
type Server struct {
	Addr      string
	Engine    engineController
	Trades    *tradelog.Log
	Positions positionReader
	Logger    *zap.Logger
}

// NewServer creates a web server over the given engine and trade log.
func NewServer(addr string, engine engineController, trades *tradelog.Log, positions positionReader, logger *zap.Logger) *Server {
	return &Server{Addr: addr, Engine: engine, Trades: trades, Positions: positions, Logger: logger}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /start", s.handleStart)
	mux.HandleFunc("POST /stop", s.handleStop)
	mux.HandleFunc("GET /watchlist", s.handleWatchlist)
	mux.HandleFunc("POST /watchlist/add", s.handleWatchlistAdd)
	mux.HandleFunc("POST /watchlist/remove", s.handleWatchlistRemove)
	mux.HandleFunc("GET /trades", s.handleTrades)
	mux.HandleFunc("GET /trades/stream", s.handleTradeStream)
	mux.HandleFunc("GET /open-positions", s.handleOpenPositions)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.serve(ctx, server, server.ListenAndServe)
}

// StartWithAutoTLS runs the server with Let's Encrypt certificates for the
// given host.
func (s *Server) StartWithAutoTLS(ctx context.Context, host, cacheDir string) error {
	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(host),
		Cache:      autocert.DirCache(cacheDir),
	}

	server := &http.Server{
		Addr:              ":443",
		Handler:           s.routes(),
		TLSConfig:         manager.TLSConfig(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// serve the ACME http-01 challenge
		_ = http.ListenAndServe(":80", manager.HTTPHandler(nil))
	}()

	return s.serve(ctx, server, func() error { return server.ListenAndServeTLS("", "") })
}

func (s *Server) serve(ctx context.Context, server *http.Server, listen func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if s.Engine.Running() {
		status = "running"
	}
	writeJSON(w, map[string]any{
		"status":    status,
		"watchlist": s.Engine.Watchlist().Snapshot(),
		"trades":    s.Trades.Len(),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": s.Engine.Start()})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": s.Engine.Stop()})
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"assets": s.Engine.Watchlist().Snapshot()})
}

type watchlistRequest struct {
	Asset string `json:"asset"`
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	asset, ok := decodeAsset(w, r)
	if !ok {
		return
	}
	if !s.Engine.Watchlist().Add(asset) {
		writeJSON(w, map[string]string{"message": fmt.Sprintf("%s already watched", asset)})
		return
	}
	s.Logger.Info("asset added to watchlist", zap.String("asset", string(asset)))
	writeJSON(w, map[string]string{"message": fmt.Sprintf("%s added", asset)})
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	asset, ok := decodeAsset(w, r)
	if !ok {
		return
	}
	if !s.Engine.Watchlist().Remove(asset) {
		http.Error(w, fmt.Sprintf("%s is not watched", asset), http.StatusNotFound)
		return
	}
	s.Logger.Info("asset removed from watchlist", zap.String("asset", string(asset)))
	writeJSON(w, map[string]string{"message": fmt.Sprintf("%s removed", asset)})
}

func decodeAsset(w http.ResponseWriter, r *http.Request) (domain.Asset, bool) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(req.Asset)
	if name == "" {
		http.Error(w, "asset is required", http.StatusBadRequest)
		return "", false
	}
	return domain.Asset(name), true
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"trades": s.Trades.All()})
}

func (s *Server) handleOpenPositions(w http.ResponseWriter, r *http.Request) {
	if s.Positions == nil {
		http.Error(w, "position provider not available", http.StatusServiceUnavailable)
		return
	}
	positions, err := s.Positions.OpenPositions(r.Context())
	if err != nil {
		s.Logger.Error("failed to fetch open positions", zap.Error(err))
		http.Error(w, "failed to fetch open positions", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"positions": positions})
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat so proxies keep the connection open
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	poll := time.NewTicker(tradePollInterval)
	defer poll.Stop()

	lastIndex := uint64(0)
	sendTrades := func() error {
		for _, record := range s.Trades.After(lastIndex) {
			payload, err := json.Marshal(record.Order)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: trade\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendTrades(); err != nil {
		http.Error(w, "failed to load trades", http.StatusInternalServerError)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-poll.C:
			if err := sendTrades(); err != nil {
				s.Logger.Error("trade stream poll failed", zap.Error(err))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}

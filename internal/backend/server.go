package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/turtacn/inventa/pkg/consts"
	"github.com/turtacn/inventa/pkg/logger"
)

// Server is the backend runtime: it binds the requested port, emits the
// readiness token on stdout once the listener is live, and serves the
// health endpoint, the inventory API, and the websocket event feed.
type Server struct {
	cfg   *Config
	store *Store
	hub   *Hub
	http  *http.Server

	port int
}

// NewServer wires a server over an opened store.
func NewServer(cfg *Config, store *Store) *Server {
	s := &Server{cfg: cfg, store: store, hub: NewHub()}
	s.http = &http.Server{Handler: s.routes()}
	return s
}

// Port returns the bound port, valid after Run has emitted readiness.
func (s *Server) Port() int { return s.port }

// Run binds the listener, announces readiness, and serves until ctx is
// cancelled, then shuts down within the grace deadline. The readiness token
// is written only after the listener is bound, so the supervisor can trust
// it as "accepting requests".
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.cfg.Port))
	if err != nil {
		// The raw bind error lands on stderr for the supervisor's classifier.
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return err
	}
	s.port = l.Addr().(*net.TCPAddr).Port

	logger.Log.Info("Backend: listener bound", "port", s.port, "data_dir", s.cfg.DataDir)
	fmt.Printf("%s%d\n", consts.ReadyTokenPrefix, s.port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("Backend: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.DefaultGraceDeadline)
	defer cancel()
	s.hub.Close()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("Backend: forced close after shutdown deadline", "err", err)
		s.http.Close()
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/items", s.handleListItems)
	mux.HandleFunc("POST /api/items", s.handleCreateItem)
	mux.HandleFunc("POST /api/items/{id}/adjust", s.handleAdjustItem)
	mux.HandleFunc("GET /ws/events", s.hub.ServeWS)
	if s.cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU      string `json:"sku"`
		Name     string `json:"name"`
		Quantity int64  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.SKU == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("sku and name are required"))
		return
	}
	item, err := s.store.CreateItem(r.Context(), req.SKU, req.Name, req.Quantity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.hub.Broadcast(ChangeEvent{Kind: "created", Item: item})
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleAdjustItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Delta int64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	q, err := s.store.AdjustQuantity(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.hub.Broadcast(ChangeEvent{Kind: "adjusted", ID: id})
	writeJSON(w, http.StatusOK, map[string]int64{"id": id, "quantity": q})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// Run loads config, opens the store, and serves until ctx cancellation.
// Shared by `inventa serve` and the standalone inventad binary.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return err
	}

	began := time.Now()
	store, err := OpenStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return err
	}
	defer store.Close()
	logger.Log.Info("Backend: store ready", "elapsed", time.Since(began).String())

	return NewServer(cfg, store).Run(ctx)
}

// Personal.AI order the ending

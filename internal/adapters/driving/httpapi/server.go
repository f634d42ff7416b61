package httpapi

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driving"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
)

// DefaultPort is the port the trigger server listens on.
const DefaultPort = 3128

// Query parameters accepted by the trigger endpoint.
const (
	ParamContractAddress = "NFT_CONTRACT_ADDRESS"
	ParamFirstTokenID    = "FIRST_TOKEN_ID"
	ParamLastTokenID     = "LAST_TOKEN_ID"
)

// Server is a local HTTP server that triggers range extractions.
// Requests are processed synchronously; the response carries the
// batch summary once every token in the range was attempted.
type Server struct {
	mu       sync.Mutex
	port     int
	runner   driving.BatchRunner
	server   *http.Server
	listener net.Listener
}

// NewServer creates a trigger server. If port is 0, a random
// available port will be chosen on Start.
func NewServer(port int, runner driving.BatchRunner) *Server {
	return &Server{
		port:   port,
		runner: runner,
	}
}

// Start starts the trigger server on the configured port.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleExtract)

	s.server = &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		// No write timeout: a large range takes as long as it takes.
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Store the actual port (important when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	logger.Info("Trigger server listening on %s", listener.Addr())

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("Trigger server: %v", err)
		}
	}()

	return nil
}

// handleExtract parses the range parameters and runs the batch.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	contract := query.Get(ParamContractAddress)
	if contract == "" {
		http.Error(w, ParamContractAddress+" is required", http.StatusBadRequest)
		return
	}

	first, err := parseTokenIDParam(query.Get(ParamFirstTokenID))
	if err != nil {
		http.Error(w, ParamFirstTokenID+": "+err.Error(), http.StatusBadRequest)
		return
	}
	// LAST_TOKEN_ID is optional; when absent the request extracts
	// just the first token.
	last := first
	if raw := query.Get(ParamLastTokenID); raw != "" {
		last, err = parseTokenIDParam(raw)
		if err != nil {
			http.Error(w, ParamLastTokenID+": "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	logger.Info("Trigger request: %s tokens %d..%d", contract, first, last)

	refs := make(chan domain.TokenRef)
	go func() {
		defer close(refs)
		for _, ref := range domain.TokenRange(contract, first, last) {
			select {
			case refs <- ref:
			case <-r.Context().Done():
				return
			}
		}
	}()

	summary := s.runner.Run(r.Context(), refs, nil)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	})
}

// parseTokenIDParam accepts decimal or 0x-prefixed hex token ids.
func parseTokenIDParam(raw string) (uint64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing token id")
	}
	decimal, err := domain.ParseTokenID(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(decimal, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token id out of range: %q", raw)
	}
	return n, nil
}

// Stop shuts down the trigger server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/", s.Port())
}

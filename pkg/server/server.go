package server

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/nearword/internal/logger"
	"github.com/bastiangx/nearword/internal/metrics"
	"github.com/bastiangx/nearword/internal/utils"
	"github.com/bastiangx/nearword/pkg/config"
	"github.com/bastiangx/nearword/pkg/stringset"
)

type cacheKey struct {
	query string
	limit int
}

// Server answers IPC requests against one index
type Server struct {
	mu    sync.RWMutex
	idx   *stringset.Index
	cfg   config.ServerConfig
	cache *lru.Cache[cacheKey, []LookupMatch]
	log   *log.Logger
}

// NewServer creates a server for idx. A non-positive cache size disables
// the result cache.
func NewServer(idx *stringset.Index, cfg config.ServerConfig) *Server {
	defaults := config.DefaultConfig().Server
	if cfg.MaxLimit < 1 {
		cfg.MaxLimit = defaults.MaxLimit
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	if cfg.MaxQuery < 1 {
		cfg.MaxQuery = defaults.MaxQuery
	}

	s := &Server{
		idx: idx,
		cfg: cfg,
		log: logger.New("server"),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[cacheKey, []LookupMatch](cfg.CacheSize)
		if err != nil {
			s.log.Warnf("Result cache disabled: %v", err)
		} else {
			s.cache = cache
		}
	}
	return s
}

// Serve reads msgpack requests from r until EOF and writes one response per
// request to w. Requests that cannot be decoded get an error reply; a stream
// that cannot be read any further ends the loop with an error.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	dec := msgpack.NewDecoder(r)
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)

	s.log.Debug("Starting Server.")
	if err := enc.Encode(StatusResponse{Status: "ready"}); err != nil {
		return fmt.Errorf("failed to announce server: %w", err)
	}

	for {
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Client closed the stream")
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}

		var resp any
		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			resp = s.errorResponse("", "invalid msgpack request", 400)
		} else {
			resp = s.Handle(req)
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

// Handle answers a single request.
func (s *Server) Handle(req Request) any {
	action := req.Action
	if action == "" {
		action = ActionLookup
	}
	metrics.Requests.WithLabelValues(action).Inc()

	switch action {
	case ActionLookup:
		return s.handleLookup(req)
	case ActionAdd:
		return s.handleAdd(req)
	case ActionStats:
		return s.handleStats(req)
	case ActionHealth:
		return StatusResponse{ID: req.ID, Status: "ok"}
	default:
		return s.errorResponse(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) errorResponse(id, message string, code int) ErrorResponse {
	metrics.RequestErrors.WithLabelValues(fmt.Sprint(code)).Inc()
	return ErrorResponse{ID: id, Error: message, Code: code}
}

// handleLookup validates the query, clamps the limit and answers from the
// cache when it can.
func (s *Server) handleLookup(req Request) any {
	if req.Query == "" {
		s.log.Debug("Query is empty in request")
		return s.errorResponse(req.ID, "missing 'q' parameter", 400)
	}
	if n := len([]rune(req.Query)); n > s.cfg.MaxQuery {
		s.log.Debugf("Query is too long in request: %d", n)
		return s.errorResponse(req.ID, fmt.Sprintf("query exceeds maximum length of %d characters", s.cfg.MaxQuery), 400)
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	start := time.Now()
	s.mu.RLock()
	key := cacheKey{query: s.idx.Normalize(req.Query), limit: limit}
	if s.cache != nil {
		if matches, ok := s.cache.Get(key); ok {
			s.mu.RUnlock()
			metrics.CacheHits.Inc()
			return LookupResponse{
				ID:        req.ID,
				Matches:   matches,
				Count:     len(matches),
				TimeTaken: time.Since(start).Microseconds(),
				Cached:    true,
			}
		}
	}
	found := s.idx.Nearest(req.Query, limit)
	s.mu.RUnlock()
	elapsed := time.Since(start)
	metrics.CacheMisses.Inc()
	metrics.LookupDuration.Observe(elapsed.Seconds())

	ranks := utils.CreateRankList(len(found))
	matches := make([]LookupMatch, len(found))
	for i, m := range found {
		matches[i] = LookupMatch{
			Key:     m.Hint.Key,
			Payload: m.Hint.Payload,
			Cost:    m.Cost,
			Rank:    ranks[i],
		}
	}
	if s.cache != nil {
		s.cache.Add(key, matches)
	}

	return LookupResponse{
		ID:        req.ID,
		Matches:   matches,
		Count:     len(matches),
		TimeTaken: elapsed.Microseconds(),
	}
}

func (s *Server) handleAdd(req Request) any {
	if req.Key == "" {
		return s.errorResponse(req.ID, "missing 'k' parameter", 400)
	}

	s.mu.Lock()
	added, err := s.idx.Add(req.Key, req.Payload)
	entries := s.idx.Len()
	if added && s.cache != nil {
		s.cache.Purge()
	}
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, stringset.ErrEmptyKey) {
			return s.errorResponse(req.ID, err.Error(), 400)
		}
		s.log.Errorf("Adding %q: %v", req.Key, err)
		return s.errorResponse(req.ID, "internal server error", 500)
	}
	if added {
		s.log.Debugf("Added %q", req.Key)
	}
	return AddResponse{ID: req.ID, Status: "ok", Added: added, Entries: entries}
}

func (s *Server) handleStats(req Request) any {
	s.mu.RLock()
	st := s.idx.Stats()
	s.mu.RUnlock()
	return StatsResponse{
		ID:       req.ID,
		Status:   "ok",
		Entries:  st.Entries,
		Lengths:  st.Lengths,
		Clusters: st.Clusters,
		Leaves:   st.Leaves,
		MaxDepth: st.MaxDepth,
	}
}

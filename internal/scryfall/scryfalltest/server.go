// Package scryfalltest provides an in-process fake of the Scryfall card API.
package scryfalltest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Server is a fake Scryfall API serving /cards/{id} and /cards/named.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	byID     map[string]entry
	byName   map[string]entry
	failures map[string]int
	requests []Request
}

// Request is a recorded lookup.
type Request struct {
	Path  string
	Exact string
	Set   string
	At    time.Time
}

type entry struct {
	usd     *string
	usdFoil *string
	setCode string
}

// NewServer starts a fake server. Close it when done.
func NewServer() *Server {
	s := &Server{
		byID:     make(map[string]entry),
		byName:   make(map[string]entry),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Price registers a card by name and set with a usd price. An empty price
// registers the card without any price.
func (s *Server) Price(name, setCode, usd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[nameKey(name, setCode)] = entry{usd: optional(usd), setCode: setCode}
}

// FoilPrice registers a card that only has a foil price.
func (s *Server) FoilPrice(name, setCode, usdFoil string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[nameKey(name, setCode)] = entry{usdFoil: optional(usdFoil), setCode: setCode}
}

// PriceByID registers a card by Scryfall id.
func (s *Server) PriceByID(id, usd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = entry{usd: optional(usd)}
}

// Fail makes lookups for name answer with status. Unregistered names answer 404.
func (s *Server) Fail(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[name] = status
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	s.requests = append(s.requests, Request{Path: r.URL.Path, Exact: q.Get("exact"), Set: q.Get("set"), At: time.Now()})

	var (
		e      entry
		ok     bool
		name   string
		cardID string
	)
	switch {
	case r.URL.Path == "/cards/named":
		name = q.Get("exact")
		if status, failing := s.failures[name]; failing {
			s.mu.Unlock()
			writeError(w, status)
			return
		}
		e, ok = s.byName[nameKey(name, q.Get("set"))]
		if !ok && q.Get("set") == "" {
			e, ok = s.findAnySet(name)
		}
	case strings.HasPrefix(r.URL.Path, "/cards/"):
		cardID = strings.TrimPrefix(r.URL.Path, "/cards/")
		e, ok = s.byID[cardID]
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "card",
		"id":     cardID,
		"name":   name,
		"set":    e.setCode,
		"prices": map[string]*string{"usd": e.usd, "usd_foil": e.usdFoil},
	})
}

func (s *Server) findAnySet(name string) (entry, bool) {
	prefix := strings.ToLower(name) + "|"
	for k, e := range s.byName {
		if strings.HasPrefix(k, prefix) {
			return e, true
		}
	}
	return entry{}, false
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object":  "error",
		"status":  status,
		"code":    strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"),
		"details": http.StatusText(status),
	})
}

func nameKey(name, setCode string) string {
	return strings.ToLower(name) + "|" + strings.ToLower(setCode)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

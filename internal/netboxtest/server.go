// Package netboxtest provides an in-memory NetBox API for tests. It serves a
// swagger discovery document, token authentication and list, create, read,
// update and delete handlers for every registered collection.
package netboxtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
)

// DefaultToken is the token accepted by a server created without WithToken.
const DefaultToken = "0123456789abcdef0123456789abcdef01234567"

// DocsPath is where the discovery document is served.
const DocsPath = "/api/docs/"

// Record is one stored object. The id field is assigned by the server.
type Record map[string]interface{}

// Canned is a fixed response that replaces the handler for one method and
// path.
type Canned struct {
	Status int
	Body   string
	Header http.Header
}

// Recorded is a request as the server saw it.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Option configures a Server.
type Option func(*Server)

// WithToken sets the accepted API token.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithCollections registers collection paths such as "/dcim/devices/".
func WithCollections(paths ...string) Option {
	return func(s *Server) {
		for _, path := range paths {
			s.addCollection(path)
		}
	}
}

// WithDocument replaces the generated discovery document.
func WithDocument(document []byte) Option {
	return func(s *Server) {
		s.document = document
	}
}

// Server is a running fake NetBox.
type Server struct {
	*httptest.Server

	token    string
	document []byte
	router   *mux.Router

	mu          sync.Mutex
	collections map[string]*collection
	order       []string
	canned      map[string]Canned
	requests    []Recorded
}

type collection struct {
	path    string
	nextID  int
	records []Record
}

// NewServer starts a fake NetBox. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		token:       DefaultToken,
		router:      mux.NewRouter(),
		collections: make(map[string]*collection),
		canned:      make(map[string]Canned),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router.HandleFunc(DocsPath, s.handleDocs()).Methods(http.MethodGet)

	n := negroni.New()
	n.Use(negroni.HandlerFunc(s.record))
	n.Use(negroni.HandlerFunc(s.serveCanned))
	n.Use(negroni.HandlerFunc(s.authenticate))
	n.UseHandler(s.router)

	s.Server = httptest.NewServer(n)

	return s
}

// Token returns the accepted API token.
func (s *Server) Token() string {
	return s.token
}

// AddCollection registers a collection path after start.
func (s *Server) AddCollection(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addCollection(path)
}

func (s *Server) addCollection(path string) {
	if _, ok := s.collections[path]; ok {
		return
	}

	c := &collection{path: path, nextID: 1}
	s.collections[path] = c
	s.order = append(s.order, path)

	s.router.HandleFunc("/api"+path, s.handleList(c)).Methods(http.MethodGet)
	s.router.HandleFunc("/api"+path, s.handleCreate(c)).Methods(http.MethodPost)
	s.router.HandleFunc("/api"+path+"{id:[0-9]+}/", s.handleRead(c)).Methods(http.MethodGet)
	s.router.HandleFunc("/api"+path+"{id:[0-9]+}/", s.handleUpdate(c, false)).Methods(http.MethodPut)
	s.router.HandleFunc("/api"+path+"{id:[0-9]+}/", s.handleUpdate(c, true)).Methods(http.MethodPatch)
	s.router.HandleFunc("/api"+path+"{id:[0-9]+}/", s.handleDelete(c)).Methods(http.MethodDelete)
}

// Seed stores records in a collection and returns them with ids assigned.
func (s *Server) Seed(path string, records ...Record) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addCollection(path)

	c := s.collections[path]
	stored := make([]Record, 0, len(records))

	for _, record := range records {
		stored = append(stored, c.insert(record))
	}

	return stored
}

// Records returns a copy of the records held by a collection.
func (s *Server) Records(path string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[path]
	if !ok {
		return nil
	}

	records := make([]Record, len(c.records))
	for i, record := range c.records {
		records[i] = record.clone()
	}

	return records
}

// Respond makes every request for method and path (query excluded) answer
// with canned instead of reaching a handler.
func (s *Server) Respond(method, path string, canned Canned) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canned[method+" "+path] = canned
}

// Requests returns the requests received so far, oldest first.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make([]Recorded, len(s.requests))
	copy(requests, s.requests)

	return requests
}

// Paths returns the registered collection paths in registration order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, len(s.order))
	copy(paths, s.order)

	return paths
}

func (c *collection) insert(record Record) Record {
	stored := record.clone()
	stored["id"] = c.nextID
	c.nextID++
	c.records = append(c.records, stored)

	return stored.clone()
}

func (c *collection) find(id string) (int, bool) {
	for i, record := range c.records {
		if idString(record["id"]) == id {
			return i, true
		}
	}

	return 0, false
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = value
	}

	return out
}

func (r Record) matches(filters map[string][]string) bool {
	for key, wanted := range filters {
		value, ok := r[key]
		if !ok {
			return false
		}

		actual := idString(value)
		found := false

		for _, candidate := range wanted {
			if strings.EqualFold(candidate, actual) {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func sortedKeys(m map[string]*collection) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

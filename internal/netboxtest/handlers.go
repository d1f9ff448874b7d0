package netboxtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

const defaultLimit = 50

type page struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Record `json:"results"`
}

type detail struct {
	Detail string `json:"detail"`
}

func (s *Server) record(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	var body []byte

	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	s.mu.Unlock()

	next(w, r)
}

func (s *Server) serveCanned(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	s.mu.Lock()
	canned, ok := s.canned[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		next(w, r)

		return
	}

	for key, values := range canned.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	if canned.Body != "" && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	status := canned.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	_, _ = io.WriteString(w, canned.Body)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.URL.Path == DocsPath {
		next(w, r)

		return
	}

	if r.Header.Get("Authorization") != "Token "+s.token {
		writeJSON(w, http.StatusForbidden, detail{Detail: "Invalid token"})

		return
	}

	next(w, r)
}

func (s *Server) handleDocs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		document := s.document
		if document == nil {
			document = s.swagger()
		}
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(document)
	}
}

// swagger renders a swagger 2.0 document with a collection and a detail path
// for each registered collection.
func (s *Server) swagger() []byte {
	paths := make(map[string]interface{}, 2*len(s.collections))

	for _, path := range sortedKeys(s.collections) {
		name := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
		paths[path] = map[string]interface{}{
			"get":  operation(name + "_list"),
			"post": operation(name + "_create"),
		}
		paths[path+"{id}/"] = map[string]interface{}{
			"get":    operation(name + "_read"),
			"put":    operation(name + "_update"),
			"patch":  operation(name + "_partial_update"),
			"delete": operation(name + "_delete"),
		}
	}

	document, _ := json.Marshal(map[string]interface{}{
		"swagger":  "2.0",
		"info":     map[string]interface{}{"title": "NetBox API", "version": "3.7"},
		"basePath": "/api",
		"paths":    paths,
	})

	return document
}

func operation(id string) map[string]interface{} {
	return map[string]interface{}{
		"operationId": id,
		"responses": map[string]interface{}{
			"200": map[string]interface{}{"description": "OK"},
		},
	}
}

func (s *Server) handleList(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		limit := intParam(query, "limit", defaultLimit)
		if limit == 0 {
			limit = defaultLimit
		}

		offset := intParam(query, "offset", 0)
		search := query.Get("q")

		filters := make(map[string][]string)
		for key, values := range query {
			switch key {
			case "limit", "offset", "q", "format", "brief":
				continue
			default:
				filters[key] = values
			}
		}

		s.mu.Lock()
		matched := make([]Record, 0, len(c.records))
		for _, record := range c.records {
			if record.matches(filters) && record.contains(search) {
				matched = append(matched, record.clone())
			}
		}
		s.mu.Unlock()

		result := page{Count: len(matched), Results: []Record{}}

		if offset < len(matched) {
			end := min(offset+limit, len(matched))
			result.Results = matched[offset:end]

			if end < len(matched) {
				next := pageURL(r, limit, end)
				result.Next = &next
			}
		}

		if offset > 0 {
			previous := pageURL(r, limit, max(offset-limit, 0))
			result.Previous = &previous
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleCreate(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, detail{Detail: "JSON parse error - " + err.Error()})

			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		switch typed := body.(type) {
		case map[string]interface{}:
			writeJSON(w, http.StatusCreated, c.insert(Record(typed)))
		case []interface{}:
			created := make([]Record, 0, len(typed))

			for _, item := range typed {
				object, ok := item.(map[string]interface{})
				if !ok {
					writeJSON(w, http.StatusBadRequest, detail{Detail: "Expected a list of items."})

					return
				}

				created = append(created, c.insert(Record(object)))
			}

			writeJSON(w, http.StatusCreated, created)
		default:
			writeJSON(w, http.StatusBadRequest, detail{Detail: "Invalid data."})
		}
	}
}

func (s *Server) handleRead(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		i, ok := c.find(mux.Vars(r)["id"])
		if !ok {
			writeJSON(w, http.StatusNotFound, detail{Detail: "Not found."})

			return
		}

		writeJSON(w, http.StatusOK, c.records[i])
	}
}

func (s *Server) handleUpdate(c *collection, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, detail{Detail: "JSON parse error - " + err.Error()})

			return
		}

		fields, ok := body.(map[string]interface{})
		if !ok {
			writeJSON(w, http.StatusBadRequest, detail{Detail: "Invalid data."})

			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		i, found := c.find(mux.Vars(r)["id"])
		if !found {
			writeJSON(w, http.StatusNotFound, detail{Detail: "Not found."})

			return
		}

		updated := c.records[i].clone()
		if !partial {
			updated = Record{"id": c.records[i]["id"]}
		}

		for key, value := range fields {
			if key == "id" {
				continue
			}

			updated[key] = value
		}

		c.records[i] = updated

		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) handleDelete(c *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		i, ok := c.find(mux.Vars(r)["id"])
		if !ok {
			writeJSON(w, http.StatusNotFound, detail{Detail: "Not found."})

			return
		}

		c.records = append(c.records[:i], c.records[i+1:]...)

		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeBody(r *http.Request) (interface{}, error) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var body interface{}

	err := decoder.Decode(&body)
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (r Record) contains(search string) bool {
	if search == "" {
		return true
	}

	for _, value := range r {
		text, ok := value.(string)
		if ok && strings.Contains(strings.ToLower(text), strings.ToLower(search)) {
			return true
		}
	}

	return false
}

func intParam(query url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(query.Get(key))
	if err != nil || n < 0 {
		return fallback
	}

	return n
}

func pageURL(r *http.Request, limit, offset int) string {
	query := r.URL.Query()
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	return fmt.Sprintf("http://%s%s?%s", r.Host, r.URL.Path, query.Encode())
}

func idString(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

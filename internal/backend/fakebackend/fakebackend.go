// Package fakebackend is an in-process stand-in for the institute REST API.
// It keeps collections in memory, records every request and can be told to
// fail specific calls.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stemsi/institute-console/internal/backend"
)

var collections = []string{
	backend.PathTeachers,
	backend.PathStudents,
	backend.PathPayments,
	backend.PathNotices,
	backend.PathAttendance,
	backend.PathResults,
}

// Recorded is one request the fake received.
type Recorded struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Bearer      string
	// Fields holds the decoded body: form values for multipart and urlencoded
	// bodies, top-level keys for JSON.
	Fields map[string]any
	// Files maps multipart file fields to their filenames.
	Files map[string]string
}

type failRule struct {
	method string
	path   string
	match  func(Recorded) bool
	status int
	body   string
}

// Server is the fake backend. Use New to start one.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	items     map[string][]map[string]any
	nextID    map[string]int
	requests  []Recorded
	failures  []failRule
	username  string
	password  string
	tokens    tokenState
	bearerFor []string
}

type tokenState struct {
	access  string
	refresh string
	renewed string
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		items:  make(map[string][]map[string]any),
		nextID: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SignedToken returns an HS256 JWT whose exp claim is exp.
func SignedToken(exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":        exp.Unix(),
		"token_type": "access",
	})
	signed, err := token.SignedString([]byte("fakebackend"))
	if err != nil {
		panic(err)
	}
	return signed
}

// SetCredentials configures the admin account accepted by /api/token/.
// renewedAccess is what /api/token/refresh/ hands out.
func (s *Server) SetCredentials(username, password, access, refresh, renewedAccess string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username, s.password = username, password
	s.tokens = tokenState{access: access, refresh: refresh, renewed: renewedAccess}
}

// RequireBearer rejects requests under prefix that do not carry a currently valid access token.
func (s *Server) RequireBearer(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearerFor = append(s.bearerFor, prefix)
}

// Seed appends items to a collection. Items are stored as their JSON form.
func (s *Server) Seed(collection string, items ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			panic(err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			panic(err)
		}
		if id, ok := asInt(m[idKey(collection)]); ok && id >= s.nextID[collection] {
			s.nextID[collection] = id
		}
		s.items[collection] = append(s.items[collection], m)
	}
}

// Items returns a copy of a collection.
func (s *Server) Items(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.items[collection]))
	copy(out, s.items[collection])
	return out
}

// Requests returns every recorded request, optionally only those with method.
func (s *Server) Requests(method string) []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Recorded
	for _, r := range s.requests {
		if method == "" || r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests with method hit a path starting with prefix.
func (s *Server) Count(method, prefix string) int {
	n := 0
	for _, r := range s.Requests(method) {
		if strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

// Fail makes every method request to path answer status with body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.FailWhen(method, path, nil, status, body)
}

// FailWhen is Fail restricted to requests accepted by match.
func (s *Server) FailWhen(method, path string, match func(Recorded) bool, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failRule{method: method, path: path, match: match, status: status, body: body})
}

// Heal removes every failure rule.
func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	rec, err := record(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, rec)

	for _, f := range s.failures {
		if f.method == rec.Method && f.path == rec.Path && (f.match == nil || f.match(rec)) {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
	}

	for _, prefix := range s.bearerFor {
		if strings.HasPrefix(rec.Path, prefix) && (rec.Bearer == "" || !s.validAccess(rec.Bearer)) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
			return
		}
	}

	switch rec.Path {
	case backend.PathToken:
		s.issueToken(w, rec)
		return
	case backend.PathTokenRefresh:
		s.refreshToken(w, rec)
		return
	}

	for _, coll := range collections {
		if rec.Path == coll {
			s.serveCollection(w, coll, rec)
			return
		}
		if rest, ok := strings.CutPrefix(rec.Path, coll); ok {
			id := strings.TrimSuffix(rest, "/")
			if id != "" && !strings.Contains(id, "/") {
				s.serveItem(w, coll, id, rec)
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
}

func (s *Server) validAccess(token string) bool {
	return token == s.tokens.access || (s.tokens.renewed != "" && token == s.tokens.renewed)
}

func (s *Server) issueToken(w http.ResponseWriter, rec Recorded) {
	if rec.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method not allowed."})
		return
	}
	if s.username == "" || rec.Fields["username"] != s.username || rec.Fields["password"] != s.password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access": s.tokens.access, "refresh": s.tokens.refresh})
}

func (s *Server) refreshToken(w http.ResponseWriter, rec Recorded) {
	if rec.Fields["refresh"] != s.tokens.refresh || s.tokens.refresh == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access": s.tokens.renewed})
}

func (s *Server) serveCollection(w http.ResponseWriter, coll string, rec Recorded) {
	switch rec.Method {
	case http.MethodGet:
		list := make([]map[string]any, 0, len(s.items[coll]))
		studentID := rec.Query.Get("student_id")
		for _, item := range s.items[coll] {
			if coll == backend.PathPayments && studentID != "" && !paymentFor(item, studentID) {
				continue
			}
			list = append(list, item)
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		item := s.buildItem(coll, rec, nil)
		s.nextID[coll]++
		item[idKey(coll)] = s.nextID[coll]
		s.items[coll] = append(s.items[coll], item)
		writeJSON(w, http.StatusCreated, item)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method not allowed."})
	}
}

func (s *Server) serveItem(w http.ResponseWriter, coll, id string, rec Recorded) {
	idx := -1
	for i, item := range s.items[coll] {
		if fmt.Sprint(item[idKey(coll)]) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}

	switch rec.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.items[coll][idx])
	case http.MethodPut:
		item := s.buildItem(coll, rec, nil)
		item[idKey(coll)] = s.items[coll][idx][idKey(coll)]
		s.items[coll][idx] = item
		writeJSON(w, http.StatusOK, item)
	case http.MethodPatch:
		item := s.buildItem(coll, rec, s.items[coll][idx])
		s.items[coll][idx] = item
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		s.items[coll] = append(s.items[coll][:idx:idx], s.items[coll][idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method not allowed."})
	}
}

// buildItem turns a request body into a stored record, merged over base when given.
func (s *Server) buildItem(coll string, rec Recorded, base map[string]any) map[string]any {
	item := make(map[string]any, len(base)+len(rec.Fields))
	for k, v := range base {
		item[k] = v
	}
	for k, v := range rec.Fields {
		item[k] = v
	}
	for field, name := range rec.Files {
		item[field] = "/media/" + name
	}
	if coll == backend.PathPayments {
		if sid, ok := asInt(item["student_id"]); ok {
			delete(item, "student_id")
			item["student"] = s.nestedStudent(sid)
		}
	}
	return item
}

func (s *Server) nestedStudent(id int) map[string]any {
	for _, st := range s.items[backend.PathStudents] {
		if sid, _ := asInt(st["id"]); sid == id {
			return map[string]any{
				"id":           id,
				"student_id":   st["student_id"],
				"name":         st["name"],
				"phone_number": st["Phone_number"],
				"department":   st["department"],
			}
		}
	}
	return map[string]any{"id": id}
}

func paymentFor(item map[string]any, studentID string) bool {
	st, ok := item["student"].(map[string]any)
	if !ok {
		return false
	}
	return fmt.Sprint(st["id"]) == studentID
}

func idKey(coll string) string {
	if coll == backend.PathTeachers {
		return "teacher_id"
	}
	return "id"
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

func record(r *http.Request) (Recorded, error) {
	rec := Recorded{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		ContentType: r.Header.Get("Content-Type"),
		Bearer:      strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
		Fields:      map[string]any{},
		Files:       map[string]string{},
	}
	if r.Body == nil || rec.ContentType == "" {
		return rec, nil
	}

	mediaType, _, err := mime.ParseMediaType(rec.ContentType)
	if err != nil {
		return rec, err
	}
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&rec.Fields); err != nil && err != io.EOF {
			return rec, err
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return rec, err
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				rec.Fields[k] = v[0]
			}
		}
		for k, v := range r.MultipartForm.File {
			if len(v) > 0 {
				rec.Files[k] = v[0].Filename
			}
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return rec, err
		}
		for k := range r.PostForm {
			rec.Fields[k] = r.PostForm.Get(k)
		}
	}
	return rec, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package internodetest serves canned account API responses for tests.
package internodetest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const (
	Username = "alice"
	Password = "correct-horse"

	// EligibleID is listed with the default eligible service type.
	EligibleID = 1234567
	// HostingID is listed with a type that is filtered out by default.
	HostingID = 7654321

	apiPrefix = "/api/v1.5"
)

const ListingXML = `<?xml version="1.0" encoding="UTF-8"?>
<internode>
  <api>
    <services count="2">
      <service type="Personal_ADSL" request="/api/v1.5/1234567">1234567</service>
      <service type="Hosting" request="/api/v1.5/7654321">7654321</service>
    </services>
  </api>
</internode>`

const ServiceXML = `<?xml version="1.0" encoding="UTF-8"?>
<internode>
  <api>
    <service type="Personal_ADSL" request="/api/v1.5/1234567/service">
      <id>1234567</id>
      <username>alice</username>
      <quota>150000000000</quota>
      <plan>Easy Naked 150</plan>
      <carrier>Internode</carrier>
      <speed>24 Mbits/sec</speed>
      <usage-rating>down</usage-rating>
      <rollover>2026-11-05</rollover>
      <excess-cost>0</excess-cost>
      <excess-charged>no</excess-charged>
      <excess-shaped>yes</excess-shaped>
      <excess-restrict-access>no</excess-restrict-access>
      <plan-interval>Monthly</plan-interval>
      <plan-cost>59.95</plan-cost>
      <comment></comment>
    </service>
  </api>
</internode>`

const HistoryXML = `<?xml version="1.0" encoding="UTF-8"?>
<internode>
  <api>
    <usagelist>
      <usage day="2026-10-15">
        <traffic name="total" unit="bytes">1500</traffic>
        <traffic direction="up" name="metered" unit="bytes">100</traffic>
        <traffic direction="down" name="metered" unit="bytes">1000</traffic>
        <traffic direction="up" name="unmetered" unit="bytes">150</traffic>
        <traffic direction="down" name="unmetered" unit="bytes">250</traffic>
      </usage>
      <usage day="2026-10-16">
        <traffic name="total" unit="bytes">900</traffic>
        <traffic direction="down" name="metered" unit="bytes">900</traffic>
      </usage>
      <usage day="2026-10-17">
        <traffic name="total" unit="bytes">50</traffic>
      </usage>
    </usagelist>
  </api>
</internode>`

const UsageXML = `<?xml version="1.0" encoding="UTF-8"?>
<internode>
  <api>
    <traffic name="total" plan-interval="Monthly" quota="150000000000" rollover="2026-11-05" unit="bytes">37500000000</traffic>
  </api>
</internode>`

// ErrorXML wraps msg in the API's error body.
func ErrorXML(msg string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<internode>
  <api>
    <error>
      <msg>%s</msg>
    </error>
  </api>
</internode>`, msg)
}

type Response struct {
	Status int
	Body   string
}

// Request is what the server saw for one call.
type Request struct {
	Path      string
	Query     url.Values
	UserAgent string
	Username  string
	Password  string
	BasicAuth bool
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []Request
}

// NewServer starts a server with the fixture account: one eligible service
// and one hosting service. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{responses: map[string]Response{}}
	s.Set("/", http.StatusOK, ListingXML)
	for _, id := range []int{EligibleID, HostingID} {
		s.Set(fmt.Sprintf("/%d/service", id), http.StatusOK, ServiceXML)
		s.Set(fmt.Sprintf("/%d/history", id), http.StatusOK, HistoryXML)
		s.Set(fmt.Sprintf("/%d/usage", id), http.StatusOK, UsageXML)
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the API root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + apiPrefix
}

// Set replaces the response for path, relative to the API root.
func (s *Server) Set(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[path] = Response{Status: status, Body: body}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Paths lists the request paths in call order.
func (s *Server) Paths() []string {
	requests := s.Requests()
	paths := make([]string, 0, len(requests))
	for _, r := range requests {
		paths = append(paths, r.Path)
	}
	return paths
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	if path == "" {
		path = "/"
	}

	username, password, ok := r.BasicAuth()

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Path:      path,
		Query:     r.URL.Query(),
		UserAgent: r.UserAgent(),
		Username:  username,
		Password:  password,
		BasicAuth: ok,
	})
	response, found := s.responses[path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")

	if !ok || username != Username || password != Password {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, "Authorization Required")
		return
	}

	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, ErrorXML("Unknown resource "+path))
		return
	}

	w.WriteHeader(response.Status)
	_, _ = fmt.Fprint(w, response.Body)
}

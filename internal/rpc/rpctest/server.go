// Package rpctest runs a programmable JSON-RPC endpoint for tests.
package rpctest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
)

// Request is one call the server received.
type Request struct {
	Method string
	Params gjson.Result
	Header http.Header
	Body   []byte
}

// To returns params[0].to of an eth_call.
func (r Request) To() string { return r.Params.Get("0.to").String() }

// Data returns params[0].data (or input) of an eth_call.
func (r Request) Data() string {
	if d := r.Params.Get("0.data"); d.Exists() {
		return d.String()
	}
	return r.Params.Get("0.input").String()
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Revert is the reply geth sends for a reverted eth_call.
func Revert(data string) Reply {
	return Reply{Error: &Error{Code: 3, Message: "execution reverted", Data: data}}
}

// Reply describes the response. Status and RawBody bypass the JSON-RPC
// envelope entirely.
type Reply struct {
	Result  any
	Error   *Error
	Status  int
	RawBody string
}

type HandlerFunc func(req Request) Reply

type Server struct {
	srv      *httptest.Server
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    map[string]HandlerFunc
	requests []Request
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		handlers: map[string]HandlerFunc{},
		calls:    map[string]HandlerFunc{},
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

func (s *Server) Endpoint() *url.URL {
	u, _ := url.Parse(s.srv.URL)
	return u
}

func (s *Server) Handle(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Result answers method with a fixed result.
func (s *Server) Result(method string, v any) {
	s.Handle(method, func(Request) Reply { return Reply{Result: v} })
}

// Fail answers method with a JSON-RPC error object.
func (s *Server) Fail(method string, code int, msg string) {
	s.Handle(method, func(Request) Reply { return Reply{Error: &Error{Code: code, Message: msg}} })
}

// HandleCall routes eth_call by contract and 4-byte selector ("0x0178b8bf").
// An empty contract matches any contract.
func (s *Server) HandleCall(to, selector string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[callKey(to, selector)] = h
}

// CallResult answers an eth_call with fixed hex data.
func (s *Server) CallResult(to, selector, data string) {
	s.HandleCall(to, selector, func(Request) Reply { return Reply{Result: data} })
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests used method.
func (s *Server) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func callKey(to, selector string) string {
	return strings.ToLower(to) + "/" + strings.ToLower(selector)
}

func (s *Server) lookup(req Request) (HandlerFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Method == "eth_call" {
		data := req.Data()
		if len(data) >= 10 {
			sel := data[:10]
			if h, ok := s.calls[callKey(req.To(), sel)]; ok {
				return h, true
			}
			if h, ok := s.calls[callKey("", sel)]; ok {
				return h, true
			}
		}
	}
	h, ok := s.handlers[req.Method]
	return h, ok
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method: gjson.GetBytes(body, "method").String(),
		Params: gjson.GetBytes(body, "params"),
		Header: r.Header.Clone(),
		Body:   body,
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	h, ok := s.lookup(req)
	if !ok {
		writeEnvelope(w, Reply{Error: &Error{Code: -32601, Message: "the method " + req.Method + " does not exist"}})
		return
	}
	reply := h(req)
	if reply.Status != 0 || reply.RawBody != "" {
		status := reply.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply.RawBody)
		return
	}
	writeEnvelope(w, reply)
}

func writeEnvelope(w http.ResponseWriter, reply Reply) {
	env := map[string]any{"jsonrpc": "2.0", "id": 1}
	if reply.Error != nil {
		env["error"] = reply.Error
	} else {
		env["result"] = reply.Result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(env)
}

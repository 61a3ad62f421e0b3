// Package tuyatest provides a scripted tuya.Requester for tests.
package tuyatest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/EternisAI/lockfleet/internal/tuya"
)

// Responder produces the raw envelope for one call.
type Responder func(req tuya.Request) ([]byte, error)

// Fake routes calls by "METHOD path" and records every request it sees.
type Fake struct {
	mu     sync.Mutex
	routes map[string]Responder
	calls  []tuya.Request
}

func New() *Fake {
	return &Fake{routes: make(map[string]Responder)}
}

// Handle registers a responder for method and path.
func (f *Fake) Handle(method, path string, r Responder) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = r
	return f
}

// Reply registers a fixed JSON body.
func (f *Fake) Reply(method, path, body string) *Fake {
	return f.Handle(method, path, func(tuya.Request) ([]byte, error) {
		return []byte(body), nil
	})
}

// OK registers a success envelope wrapping result.
func (f *Fake) OK(method, path string, result any) *Fake {
	return f.Handle(method, path, func(tuya.Request) ([]byte, error) {
		return json.Marshal(map[string]any{"success": true, "result": result})
	})
}

// Fail registers a vendor failure envelope.
func (f *Fake) Fail(method, path, msg string) *Fake {
	return f.Handle(method, path, func(tuya.Request) ([]byte, error) {
		return json.Marshal(map[string]any{"success": false, "msg": msg, "code": 1106})
	})
}

func (f *Fake) Do(ctx context.Context, req tuya.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	r, ok := f.routes[req.Method+" "+req.Path]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("tuyatest: no route for %s %s", req.Method, req.Path)
	}
	return r(req)
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []tuya.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tuya.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount counts recorded requests to method and path.
func (f *Fake) CallCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

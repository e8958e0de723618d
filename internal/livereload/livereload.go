// Package livereload notifies connected browsers to reload after a
// rebuild. Browsers subscribe to a server-sent event stream through a
// small script injected into every served HTML page.
package livereload

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// Endpoints served by Hub.Handler.
const (
	EventsPath = "/__livereload"
	ScriptPath = "/__livereload.js"
)

// ScriptTag is inserted before </body> of HTML responses.
const ScriptTag = `<script src="` + ScriptPath + `"></script>`

const script = `(function () {
  var source = new EventSource('` + EventsPath + `')
  source.addEventListener('reload', function (e) {
    if (/\.css$/.test(e.data)) {
      document.querySelectorAll('link[rel="stylesheet"]').forEach(function (link) {
        var url = new URL(link.href)
        url.searchParams.set('livereload', Date.now())
        link.href = url.toString()
      })
      return
    }
    window.location.reload()
  })
})()
`

// Hub fans reload events out to subscribed browsers.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	closed  bool
}

// NewHub returns a hub without subscribers.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

// Reload tells every subscriber to reload. path is the changed resource;
// a stylesheet path lets the browser swap styles in place.
func (h *Hub) Reload(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c <- path:
		default: // a reload is already queued for this client
		}
	}
}

// Clients returns the number of subscribed browsers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber so that server shutdown does not wait
// on open event streams.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c)
		delete(h.clients, c)
	}
}

func (h *Hub) subscribe() (chan string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := make(chan string, 1)
	h.clients[c] = struct{}{}
	return c, true
}

func (h *Hub) unsubscribe(c chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c)
	}
}

// ServeHTTP streams reload events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	c, ok := h.subscribe()
	if !ok {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(c)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case path, ok := <-c:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", path)
			flusher.Flush()
		}
	}
}

// Handler serves the event stream and the client script, and injects the
// script into HTML served by next.
func (h *Hub) Handler(next http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(EventsPath, h)
	mux.HandleFunc(ScriptPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write([]byte(script))
	})
	mux.Handle("/", Inject(next))
	return mux
}

// Inject inserts ScriptTag into successful HTML responses from next.
// Range and conditional request headers are dropped so that pages are
// always served whole.
func Inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		r = r.Clone(r.Context())
		for _, k := range []string{"Range", "If-Range", "If-Modified-Since", "If-None-Match"} {
			r.Header.Del(k)
		}

		rec := &recorder{header: make(http.Header), status: http.StatusOK}
		next.ServeHTTP(rec, r)

		body := rec.body.Bytes()
		if rec.status == http.StatusOK && isHTML(rec.header.Get("Content-Type")) {
			body = InjectScript(body)
			rec.header.Set("Cache-Control", "no-cache")
		}

		for k, v := range rec.header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(rec.status)
		_, _ = w.Write(body)
	})
}

// InjectScript inserts ScriptTag before the last </body>, or appends it
// when the page has no body end tag.
func InjectScript(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(append([]byte{}, page...), ScriptTag...)
	}
	out := make([]byte, 0, len(page)+len(ScriptTag))
	out = append(out, page[:i]...)
	out = append(out, ScriptTag...)
	return append(out, page[i:]...)
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "text/html")
}

type recorder struct {
	header http.Header
	status int
	wrote  bool
	body   bytes.Buffer
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(status int) {
	if r.wrote {
		return
	}
	r.wrote = true
	r.status = status
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wrote = true
	return r.body.Write(p)
}

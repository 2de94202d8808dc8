package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/embedify"
	"github.com/google/uuid"
)

// ShutdownTimeout is how long Close waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// DefaultAddr is the address the server binds when none is given.
const DefaultAddr = ":8080"

// callbackRe matches JavaScript identifiers and dotted member paths such as
// "jQuery123.cb". Anything else is refused as a JSONP callback.
var callbackRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// Server exposes a RecordService over HTTP. GET or POST / with a url
// parameter returns the page's record as JSON, or as JSONP when a valid
// callback parameter is given.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *http.ServeMux

	// Addr is the bind address. Defaults to DefaultAddr.
	Addr string

	RecordService embedify.RecordService
	Logger        *slog.Logger
}

// NewServer returns a new Server serving records from svc.
func NewServer(svc embedify.RecordService, logger *slog.Logger) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		Addr:          DefaultAddr,
		RecordService: svc,
		Logger:        logger,
	}

	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /{$}", s.handleRecord)
	s.router.HandleFunc("POST /{$}", s.handleRecord)

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the server's routes wrapped in its middleware.
func (s *Server) Handler() http.Handler {
	return s.requestIDMiddleware(s.loggingMiddleware(s.corsMiddleware(s.router)))
}

// Open binds the listener and begins serving in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("server stopped", "err", err)
		}
	}()

	s.Logger.Info("listening", "addr", s.ln.Addr().String())
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	target, err := requestURL(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.RecordService.Fetch(r.Context(), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := json.Marshal(rec)
	if err != nil {
		s.writeError(w, r, embedify.WrapError(embedify.EINTERNAL, err, "encoding record"))
		return
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	s.write(w, r, http.StatusOK, body)
}

// requestURL extracts the target page URL from the query string, a form
// body or a JSON body.
func requestURL(r *http.Request) (string, error) {
	var target string
	if r.Method == http.MethodPost && isJSON(r.Header.Get("Content-Type")) {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", embedify.WrapError(embedify.EINVALID, err, "invalid JSON body")
		}
		target = body.URL
	} else {
		target = r.FormValue("url")
	}

	if target == "" {
		return "", embedify.Errorf(embedify.EINVALID, "url parameter is required")
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", embedify.Errorf(embedify.EINVALID, "url must be an absolute http(s) URL")
	}
	return target, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// write sends body as JSON, or wrapped in the request's JSONP callback.
func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	if cb := r.FormValue("callback"); cb != "" && callbackRe.MatchString(cb) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("/**/" + cb + "("))
		_, _ = w.Write(body)
		_, _ = w.Write([]byte(");"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError logs internal errors and writes the error code and message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := embedify.ErrorCode(err), embedify.ErrorMessage(err)

	if code == embedify.EINTERNAL {
		s.Logger.Error("request failed", "url", r.URL.String(), "err", err)
	}

	body, _ := json.Marshal(struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}{code, message})
	s.write(w, r, ErrorStatusCode(code), body)
}

// ErrorStatusCode returns the HTTP status for an embedify error code.
func ErrorStatusCode(code string) int {
	switch code {
	case embedify.EINVALID:
		return http.StatusBadRequest
	case embedify.EFETCH:
		return http.StatusBadGateway
	case embedify.EREDIRECT:
		return http.StatusLoopDetected
	case embedify.EPARSE:
		return http.StatusUnprocessableEntity
	case embedify.ECANCELED:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// corsMiddleware allows any origin and answers preflight requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "ETag, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// requestIDMiddleware propagates the caller's X-Request-Id or assigns one.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the request ID stored in ctx by the server.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func(begin time.Time) {
			s.Logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"request_id", RequestID(r.Context()),
				"duration", time.Since(begin),
			)
		}(time.Now())
		next.ServeHTTP(rec, r)
	})
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/imageops/internal/imaging"
	"github.com/ironsheep/imageops/internal/logging"
	"github.com/ironsheep/imageops/internal/ops"
)

const shutdownTimeout = 10 * time.Second

// processRequest is the JSON body of every image route.
type processRequest struct {
	Base64Image string   `json:"base64Image"`
	K           *int     `json:"k"`
	Threshold1  *float64 `json:"threshold1"`
	Threshold2  *float64 `json:"threshold2"`
}

// measureRequest is the JSON body of the distance route.
type measureRequest struct {
	Points []imaging.Point `json:"points"`
}

// httpRoutes maps URL suffixes under /api/process/ to operations.
var httpRoutes = map[string]string{
	"grayscale": ops.Grayscale,
	"noise":     ops.Noise,
	"histogram": ops.Histogram,
	"otsu":      ops.Otsu,
	"kmeans":    ops.KMeans,
	"watershed": ops.Watershed,
	"canny":     ops.Canny,
}

// Handler returns the REST surface:
//
//	POST /api/process/{grayscale,noise,histogram,otsu,kmeans,watershed,canny}
//	POST /api/process/measure/distance
//	GET  /healthz
//
// Image routes answer with the result as bare base64 PNG text.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for route, op := range httpRoutes {
		mux.HandleFunc("POST /api/process/"+route, s.handleProcess(op))
	}
	mux.HandleFunc("POST /api/process/measure/distance", s.handleDistance)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	return s.withRequestLog(s.withCORS(mux))
}

// ListenAndServe serves Handler on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serveListener(ctx, ln)
}

func (s *Server) serveListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "http server listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.log.InfoContext(ctx, "http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleProcess(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body processRequest
		if !s.decodeBody(w, r, &body) {
			return
		}

		out, _, err := s.proc.ApplyBase64(r.Context(), op, body.Base64Image, ops.Params{
			K:          body.K,
			Threshold1: body.Threshold1,
			Threshold2: body.Threshold2,
		})
		if err != nil {
			s.writeOpError(w, r, op, err)
			return
		}
		writeText(w, http.StatusOK, out)
	}
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	var body measureRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	if len(body.Points) != 2 {
		writeText(w, http.StatusBadRequest, "Must supply exactly two points")
		return
	}

	d, err := s.proc.Measure(r.Context(), body.Points)
	if err != nil {
		s.writeOpError(w, r, ops.Distance, err)
		return
	}
	writeText(w, http.StatusOK, strconv.FormatFloat(d, 'f', -1, 64))
}

// decodeBody reads a size-limited JSON body into v, answering the request
// itself on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeText(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeOpError(w http.ResponseWriter, r *http.Request, op string, err error) {
	label := op
	if o, ok := s.proc.Lookup(op); ok {
		label = o.Label
	}
	msg := fmt.Sprintf("Error during %s: %v", label, err)

	if ops.Classify(err) == ops.KindClient {
		s.log.WarnContext(r.Context(), "request rejected", "operation", op, "error", err)
		writeText(w, http.StatusBadRequest, msg)
		return
	}
	s.log.ErrorContext(r.Context(), "operation failed", "operation", op, "error", err)
	writeText(w, http.StatusInternalServerError, msg)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// withCORS grants configured origins access and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags each request with an id and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := logging.AppendCtx(r.Context(),
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if rec.status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		s.log.Log(ctx, level, "http request", "status", rec.status, "duration", time.Since(start))
	})
}

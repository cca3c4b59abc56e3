// Package server exposes the evaluator over HTTP.
//
//	POST /eval    {"program": "...", "input": "..."}  → {"output": "..."}
//	POST /parse   {"program": "..."}                  → {"ast": {...}, "references_input": bool, "token_count": n}
//	GET  /stats                                        → program cache counters
//	GET  /healthz                                      → ok
//
// Programs are compiled through the evaluator, so its parser options and
// program cache apply to every request.
//
// Program failures are answered with 422 and {"error", "code", "position"}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/sandrolain/gostringed/pkg/cache"
	"github.com/sandrolain/gostringed/pkg/evaluator"
	"github.com/sandrolain/gostringed/pkg/types"
)

// Recorder receives every evaluation served.
type Recorder interface {
	Record(ctx context.Context, program, input, output string, err error) error
}

// Options configures a Server.
type Options struct {
	Evaluator *evaluator.Evaluator
	// Recorder is optional.
	Recorder     Recorder
	Logger       *slog.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxBodySize bounds request bodies, in bytes.
	MaxBodySize int
}

// Server is the HTTP evaluation service.
type Server struct {
	ev          *evaluator.Evaluator
	recorder    Recorder
	logger      *slog.Logger
	maxBodySize int
	srv         *fasthttp.Server
}

type evalRequest struct {
	Program string `json:"program"`
	Input   string `json:"input"`
}

type evalResponse struct {
	Output string `json:"output"`
}

type parseResponse struct {
	AST             *types.ASTNode `json:"ast"`
	ReferencesInput bool           `json:"references_input"`
	TokenCount      int            `json:"token_count"`
}

type statsResponse struct {
	Caching bool         `json:"caching"`
	Cache   *cache.Stats `json:"cache,omitempty"`
	HitRate float64      `json:"hit_rate"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// New creates a server.
func New(opts Options) *Server {
	s := &Server{
		ev:          opts.Evaluator,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
		maxBodySize: opts.MaxBodySize,
	}
	if s.ev == nil {
		s.ev = evaluator.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxBodySize <= 0 {
		s.maxBodySize = 1 << 20
	}

	s.srv = &fasthttp.Server{
		Handler:            s.Handle,
		Name:               "stringed",
		ReadTimeout:        opts.ReadTimeout,
		WriteTimeout:       opts.WriteTimeout,
		MaxRequestBodySize: s.maxBodySize,
	}
	return s
}

// Handle routes one request.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	defer func() {
		s.logger.Debug("request",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"duration", time.Since(start))
	}()

	switch string(ctx.Path()) {
	case "/eval":
		if s.allow(ctx, fasthttp.MethodPost) {
			s.handleEval(ctx)
		}
	case "/parse":
		if s.allow(ctx, fasthttp.MethodPost) {
			s.handleParse(ctx)
		}
	case "/stats":
		if s.allow(ctx, fasthttp.MethodGet) {
			s.handleStats(ctx)
		}
	case "/healthz":
		if s.allow(ctx, fasthttp.MethodGet) {
			ctx.Success("text/plain; charset=utf-8", []byte("ok"))
		}
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, errors.New("not found"))
	}
}

// ListenAndServe serves HTTP on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting HTTP server", "addr", addr)
	return s.srv.ListenAndServe(addr)
}

// Serve serves HTTP on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func (s *Server) allow(ctx *fasthttp.RequestCtx, method string) bool {
	if string(ctx.Method()) == method {
		return true
	}
	ctx.Response.Header.Set(fasthttp.HeaderAllow, method)
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, errors.New("method not allowed"))
	return false
}

func (s *Server) decode(ctx *fasthttp.RequestCtx, req *evalRequest) bool {
	body := ctx.PostBody()
	if len(body) > s.maxBodySize {
		s.writeError(ctx, fasthttp.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return false
	}
	if err := json.Unmarshal(body, req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, errors.New("invalid request JSON: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) handleEval(ctx *fasthttp.RequestCtx) {
	var req evalRequest
	if !s.decode(ctx, &req) {
		return
	}

	// The request context is not used: the evaluator applies its own timeout.
	evalCtx := context.Background()

	out, err := s.eval(evalCtx, req)
	if s.recorder != nil {
		if rerr := s.recorder.Record(evalCtx, req.Program, req.Input, out, err); rerr != nil {
			s.logger.Warn("history record failed", "error", rerr)
		}
	}
	if err != nil {
		s.writeProgramError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, evalResponse{Output: out})
}

func (s *Server) eval(ctx context.Context, req evalRequest) (string, error) {
	return s.ev.Run(ctx, req.Program, req.Input)
}

func (s *Server) handleParse(ctx *fasthttp.RequestCtx) {
	var req evalRequest
	if !s.decode(ctx, &req) {
		return
	}

	prog, err := s.ev.Compile(req.Program)
	if err != nil {
		s.writeProgramError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, parseResponse{
		AST:             prog.AST(),
		ReferencesInput: prog.ReferencesInput(),
		TokenCount:      prog.TokenCount(),
	})
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	c := s.ev.Cache()
	if c == nil {
		s.writeJSON(ctx, fasthttp.StatusOK, statsResponse{})
		return
	}
	st := c.Stats()
	s.writeJSON(ctx, fasthttp.StatusOK, statsResponse{Caching: true, Cache: &st, HitRate: st.HitRate()})
}

// writeProgramError answers a parse or evaluation failure.
func (s *Server) writeProgramError(ctx *fasthttp.RequestCtx, err error) {
	var serr *types.Error
	if !errors.As(err, &serr) {
		if errors.Is(err, context.DeadlineExceeded) {
			s.writeError(ctx, fasthttp.StatusServiceUnavailable, err)
			return
		}
		s.writeError(ctx, fasthttp.StatusInternalServerError, err)
		return
	}

	resp := errorResponse{Error: serr.Error(), Code: string(serr.Code)}
	if serr.Position >= 0 {
		pos := serr.Position
		resp.Position = &pos
	}
	s.writeJSON(ctx, fasthttp.StatusUnprocessableEntity, resp)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, err error) {
	s.writeJSON(ctx, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(buf)
}

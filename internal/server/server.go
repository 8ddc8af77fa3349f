// Package server exposes completion and filtering over a loaded dataset as
// a small JSON HTTP API.
package server

import (
	"errors"
	"time"

	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/oakwood-commons/kvfilter/internal/config"
	"github.com/oakwood-commons/kvfilter/internal/limiter"
	"github.com/oakwood-commons/kvfilter/internal/schema"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
	"github.com/oakwood-commons/kvfilter/pkg/logger"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// RequestIDHeader carries the request id, generated when absent.
const RequestIDHeader = "X-Request-ID"

// Server serves one dataset.
type Server struct {
	app        *fiber.App
	ds         *schema.Dataset
	root       typeinfo.Descriptor
	classifier *typeinfo.Classifier
	completion config.Completion
	log        logr.Logger
}

// New creates a server over ds.
func New(ds *schema.Dataset, cfg config.Config, log logr.Logger) *Server {
	srv := &Server{
		ds:         ds,
		root:       ds.Root(),
		classifier: &typeinfo.Classifier{},
		completion: cfg.Completion,
		log:        log.WithName("server"),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Serve.ReadTimeout,
		WriteTimeout:          cfg.Serve.WriteTimeout,
		BodyLimit:             cfg.Serve.BodyLimit,
	})
	app.Use(srv.requestLog)

	app.Get("/v1/healthz", srv.healthz)
	app.Get("/v1/members", srv.members)
	app.Post("/v1/complete", srv.complete)
	app.Post("/v1/filter", srv.filter)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", "addr", addr, "records", s.ds.Len())
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) requestLog(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	start := time.Now()
	err := c.Next()
	s.log.V(1).Info("request",
		"id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		logger.DurationKey, time.Since(start).String())
	return err
}

func (s *Server) editor() *filter.Editor {
	return filter.NewEditor(s.root,
		filter.WithLogger(s.log),
		filter.WithClassifier(s.classifier),
		filter.WithMaxResults(s.completion.MaxResults),
		filter.WithMaxComposites(s.completion.MaxComposites),
	)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": ErrorBody{Message: message},
	})
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "records": s.ds.Len()})
}

func (s *Server) members(c *fiber.Ctx) error {
	ms := s.root.Members()
	out := make([]MemberBody, 0, len(ms))
	for _, m := range ms {
		d := s.root.With(m.Type)
		out = append(out, MemberBody{
			Name:        m.Name,
			Type:        d.String(),
			Category:    s.classifier.Classify(d).String(),
			Nullable:    m.Nullable,
			Description: m.Description,
		})
	}
	return c.JSON(fiber.Map{"members": out})
}

func (s *Server) complete(c *fiber.Ctx) error {
	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	e := s.editor()
	e.Load(req.Expression)
	if req.Cursor != nil {
		if *req.Cursor < 0 || *req.Cursor > e.Len() {
			return badRequest(c, "cursor out of range")
		}
		e.SetCursor(*req.Cursor)
	}

	resp := CompleteResponse{
		Text:         e.Text(),
		Cursor:       e.Cursor(),
		Query:        e.Query(),
		CurrentToken: e.CurrentToken(),
		Candidates:   e.Candidates(),
	}
	if resp.Candidates == nil {
		resp.Candidates = []filter.Completion{}
	}
	if recs := e.Records(); resp.CurrentToken >= 0 && resp.CurrentToken < len(recs) {
		rec := recs[resp.CurrentToken]
		resp.Context = &ContextBody{
			Nearest:   rec.Nearest.String(),
			Enclosing: rec.Enclosing.String(),
			Depth:     rec.Depth,
			Frozen:    rec.Frozen,
		}
	}
	if _, err := e.Compile(); err != nil {
		resp.Error = errorBody(err)
	}
	return c.JSON(resp)
}

func (s *Server) filter(c *fiber.Ctx) error {
	var req FilterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	limits := limiter.Config{Limit: req.Limit, Offset: req.Offset, Tail: req.Tail}
	if err := limits.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	e := s.editor()
	e.Load(req.Expression)
	p, err := e.Compile()
	if err != nil {
		s.log.V(1).Info("compile failed", logger.ExpressionKey, req.Expression, "error", err.Error())
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": errorBody(err)})
	}
	matched := s.ds.Select(p)
	items := limiter.Apply(limits, matched)
	return c.JSON(FilterResponse{Total: s.ds.Len(), Matched: len(matched), Items: items})
}

func errorBody(err error) *ErrorBody {
	body := &ErrorBody{Message: err.Error()}
	var ferr *filter.Error
	if errors.As(err, &ferr) {
		body.Kind = ferr.Kind.String()
		body.Token = ferr.Token
		span := ferr.Span
		body.Span = &span
	}
	return body
}

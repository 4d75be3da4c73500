package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"GameStock/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Service *Service
	Log     *zap.Logger

	// Static serves "/" and front-end assets; nil disables them.
	Static http.Handler
	// WriteLimit wraps mutating API routes, e.g. with a rate limiter.
	WriteLimit func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Service.Ping(ctx); err != nil {
			s.log().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/games", func(rr chi.Router) {
		rr.Get("/", s.list)
		rr.Get("/{id}", s.get)
		rr.Get("/platform/{platform}", s.byPlatform)

		rr.Group(func(wr chi.Router) {
			if s.WriteLimit != nil {
				wr.Use(s.WriteLimit)
			}
			wr.Post("/", s.create)
			wr.Put("/{id}", s.update)
			wr.Delete("/{id}", s.delete)
		})
	})

	if s.Static != nil {
		r.Handle("/*", s.Static)
	}

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	games, err := s.Service.List(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "list games failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, games)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, r)
		return
	}

	g, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, "get game failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, g)
}

func (s *Server) byPlatform(w http.ResponseWriter, r *http.Request) {
	// chi hands back the path segment already decoded once.
	games, err := s.Service.ByPlatform(r.Context(), chi.URLParam(r, "platform"))
	if err != nil {
		s.writeStoreError(w, r, "filter games failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, games)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeDecodeError(w, r, err)
		return
	}

	g, err := s.Service.Create(r.Context(), ParseNewGame(body))
	if err != nil {
		s.writeStoreError(w, r, "create game failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, g)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeDecodeError(w, r, err)
		return
	}

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, r)
		return
	}

	g, err := s.Service.Update(r.Context(), id, ParsePatch(body))
	if err != nil {
		s.writeStoreError(w, r, "update game failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, g)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w, r)
		return
	}

	if err := s.Service.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, "delete game failed", err)
		return
	}
	kit.NoContent(w)
}

// writeStoreError maps service errors to responses; anything that is not a
// domain error is a storage fault and becomes a logged 500.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeNotFound(w, r)
	case errors.Is(err, ErrTitleRequired):
		kit.WriteError(w, r, http.StatusBadRequest, "title is required", nil)
	default:
		s.log().Error(msg,
			zap.Error(err),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	kit.WriteError(w, r, http.StatusNotFound, "game not found", nil)
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "body too large",
			map[string]any{"limit_bytes": tooLarge.Limit})
		return
	}
	kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
}

// parseID reads the leading base-10 integer of raw, after optional spaces and
// sign, so "12abc" names game 12. No leading digits can never name a game.
func parseID(raw string) (int64, bool) {
	s := strings.TrimLeft(raw, " \t\n\r")
	n := 0
	if n < len(s) && (s[n] == '+' || s[n] == '-') {
		n++
	}
	digits := n
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == digits {
		return 0, false
	}

	id, err := strconv.ParseInt(s[:n], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeObject reads a JSON object body. An empty body is an empty object.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if body == nil {
		return map[string]any{}, nil
	}
	return body, nil
}

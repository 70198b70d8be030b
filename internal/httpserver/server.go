// internal/httpserver/server.go
//
// HTTP presentation layer for the number guessing game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoint: "/health".
//   - Session endpoints under /session, identified by a signed session token
//     (cookie or bearer header).
//   - Logging won rounds to the round log (best effort).
//
// Notes:
//   - Every session mutation goes through store.Update so a session's
//     operations never interleave.
//   - The secret target is never serialized; handlers only return game.View.
//   - Guess submission is refused with 409 while the round is won; the
//     client must start a new round first.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/rounds"
	"github.com/robalobadob/numberguess/internal/store"
)

// Options configures a Server. Zero values fall back to development defaults.
type Options struct {
	Secret       []byte        // HS256 key for session tokens
	TTL          time.Duration // session token lifetime
	CookieName   string
	ClientOrigin string // single CORS origin allowed with credentials
	SecureCookie bool
	Timeout      time.Duration // per-request handler budget

	// NewSource supplies the random source for new sessions; nil uses game.NewSource.
	NewSource func() game.Source
}

func (o *Options) defaults() {
	if len(o.Secret) == 0 {
		o.Secret = []byte("dev_secret_change_me")
	}
	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}
	if o.CookieName == "" {
		o.CookieName = "guess_session"
	}
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.NewSource == nil {
		o.NewSource = game.NewSource
	}
}

// Server bundles router, session store and round log.
type Server struct {
	r      *chi.Mux
	store  store.Store
	rounds *rounds.Store
	opts   Options
}

// New constructs a Server, installs middleware, and registers routes.
// rl may be nil, in which case won rounds are not logged.
func New(st store.Store, rl *rounds.Store, opts Options) *Server {
	opts.defaults()
	s := &Server{r: chi.NewRouter(), store: st, rounds: rl, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.Timeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/session", func(r chi.Router) {
		r.Post("/", s.handleNewSession)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleView)
			r.Delete("/", s.handleEndSession)
			r.Post("/round", s.handleNewRound)
			r.Put("/input", s.handleInput)
			r.Post("/guess", s.handleGuess)
			r.Get("/rounds", s.handleRounds)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ SESSION ------------------------------------

type newSessionRes struct {
	Token   string    `json:"token"`
	Session game.View `json:"session"`
}

// handleNewSession creates a session, starts its first round and hands out
// a signed token (also set as cookie).
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	g := game.NewSession(s.opts.NewSource())
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save session")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.signToken(g.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeErr(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	log.Info().Str("session", g.ID()).Msg("session started")
	writeJSON(w, http.StatusOK, newSessionRes{Token: tok, Session: g.View()})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(g *game.Session) (any, error) {
		return g.View(), nil
	})
}

// handleEndSession drops the session and its round log, and clears the cookie.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeErr(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	if s.rounds != nil {
		if err := s.rounds.DeleteSession(r.Context(), id); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("delete round log")
		}
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(g *game.Session) (any, error) {
		g.StartRound()
		return g.View(), nil
	})
}

type inputReq struct {
	Input string `json:"input"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.withSession(w, r, func(g *game.Session) (any, error) {
		g.SetInput(req.Input)
		return g.View(), nil
	})
}

// guessReq carries the raw text; when Guess is absent the session's current
// input is submitted instead.
type guessReq struct {
	Guess *string `json:"guess"`
}

type guessRes struct {
	Outcome  game.Outcome `json:"outcome"`
	Feedback string       `json:"feedback"`
	Session  game.View    `json:"session"`
}

var errRoundWon = errors.New("round_won")

// handleGuess submits a guess. Invalid text is a normal 200 response with
// outcome "invalid"; only a finished round is refused.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	var won *rounds.Result
	s.withSession(w, r, func(g *game.Session) (any, error) {
		if g.Won() {
			return nil, errRoundWon
		}
		var out game.Outcome
		if req.Guess != nil {
			out = g.SubmitGuess(*req.Guess)
		} else {
			out = g.SubmitInput()
		}
		if out == game.OutcomeCorrect {
			won = &rounds.Result{SessionID: g.ID(), Round: g.Round(), Attempts: g.Attempts(), FinishedAt: time.Now()}
		}
		return guessRes{Outcome: out, Feedback: out.Message(), Session: g.View()}, nil
	})

	if won != nil && s.rounds != nil {
		// best effort: the game state is already committed
		if err := s.rounds.Record(r.Context(), *won); err != nil {
			log.Warn().Err(err).Str("session", won.SessionID).Msg("record round")
		}
	}
}

type roundsRes struct {
	Rounds []rounds.Result `json:"rounds"`
	Best   *int            `json:"best"`
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.writeStoreErr(w, err)
		return
	}
	res := roundsRes{Rounds: []rounds.Result{}}
	if s.rounds == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.rounds.List(r.Context(), id, limit)
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("list rounds")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	res.Rounds = list
	if best, ok, err := s.rounds.Best(r.Context(), id); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("best round")
	} else if ok {
		res.Best = &best
	}
	writeJSON(w, http.StatusOK, res)
}

// withSession runs fn on the request's session under the store lock and
// writes fn's result as JSON.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*game.Session) (any, error)) {
	var body any
	err := s.store.Update(r.Context(), sessionID(r.Context()), func(g *game.Session) error {
		var err error
		body, err = fn(g)
		return err
	})
	if err != nil {
		s.writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "session_not_found")
	case errors.Is(err, errRoundWon):
		writeErr(w, http.StatusConflict, errRoundWon.Error())
	default:
		log.Error().Err(err).Msg("session update")
		writeErr(w, http.StatusInternalServerError, "internal")
	}
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeErr(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

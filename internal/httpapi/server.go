package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"partsCatalog/internal/auth"
	"partsCatalog/internal/db"
	"partsCatalog/internal/observability"
	"partsCatalog/repository"
)

// PasswordHasher is the slice of auth.Hasher the handlers use.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) error
	CompareDummy(password string)
}

// Deps are the collaborators injected into the router at startup.
type Deps struct {
	Users        repository.UserRepositoryI
	PartTypes    repository.PartTypeRepositoryI
	Restrictions repository.RestrictionRepositoryI
	Lines        repository.LineRepositoryI
	Parts        repository.PartRepositoryI
	Combos       repository.ComboRepositoryI
	Ownership    repository.OwnershipRepositoryI

	Tokens  *auth.TokenService
	Hasher  PasswordHasher
	Health  *observability.HealthChecker
	Metrics *observability.Metrics
	Logger  logrus.FieldLogger
}

// NewDeps wires every repository onto d.
func NewDeps(d *db.DB, tokens *auth.TokenService, hasher PasswordHasher, logger logrus.FieldLogger) Deps {
	return Deps{
		Users:        repository.NewUserRepository(d),
		PartTypes:    repository.NewPartTypeRepository(d),
		Restrictions: repository.NewRestrictionRepository(d),
		Lines:        repository.NewLineRepository(d),
		Parts:        repository.NewPartRepository(d),
		Combos:       repository.NewComboRepository(d),
		Ownership:    repository.NewOwnershipRepository(d),
		Tokens:       tokens,
		Hasher:       hasher,
		Health:       observability.NewHealthChecker(d.DB, logger),
		Metrics:      observability.NewMetrics(),
		Logger:       logger,
	}
}

// Server is the REST API of the catalog.
type Server struct {
	deps   Deps
	rs     responder
	router *mux.Router
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = observability.Discard()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics()
	}
	if deps.Health == nil {
		deps.Health = observability.NewHealthChecker(nil, deps.Logger)
	}
	s := &Server{
		deps: deps,
		rs:   responder{log: deps.Logger, metrics: deps.Metrics},
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Router() *mux.Router { return s.router }

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.rs.writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.rs.writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.Use(requestIDMiddleware, loggingMiddleware(s.deps.Logger), s.deps.Metrics.Middleware, s.rs.recoveryMiddleware)

	// Public routes.
	r.HandleFunc("/", s.root).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.deps.Health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.deps.Health.Readiness).Methods(http.MethodGet)
	r.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)
	(&AuthHandlers{responder: s.rs, users: s.deps.Users, hasher: s.deps.Hasher, tokens: s.deps.Tokens}).RegisterRoutes(r)

	// Everything else needs a bearer token.
	gate := auth.NewGate(s.deps.Tokens, s.deps.Users)
	api := r.NewRoute().Subrouter()
	api.Use(gate.Middleware(s.rs.fail))

	(&UserHandlers{responder: s.rs, users: s.deps.Users, hasher: s.deps.Hasher}).RegisterRoutes(api)
	(&CatalogHandlers{responder: s.rs, types: s.deps.PartTypes, restrictions: s.deps.Restrictions, lines: s.deps.Lines}).RegisterRoutes(api)
	(&PartHandlers{responder: s.rs, parts: s.deps.Parts}).RegisterRoutes(api)
	(&ComboHandlers{responder: s.rs, combos: s.deps.Combos}).RegisterRoutes(api)
	(&OwnershipHandlers{responder: s.rs, ownership: s.deps.Ownership}).RegisterRoutes(api)
	return r
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	s.rs.writeJSON(w, http.StatusOK, map[string]string{"message": "Parts catalog API"})
}

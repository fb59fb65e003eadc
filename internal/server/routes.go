package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"stockroom/internal/shared"
)

// NewStore picks the backend named by STORE_BACKEND. The returned closer
// releases the SQLite handle and is a no-op for the memory store.
func NewStore(cfg *shared.Config) (Store, func() error, error) {
	switch cfg.StoreBackend {
	case shared.StoreSQLite:
		db, err := OpenDB(MemoryDSN)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteStore(db), db.Close, nil
	default:
		return NewMemoryStore(), func() error { return nil }, nil
	}
}

func NewAPI(cfg *shared.Config, store Store, log *logrus.Logger) (*API, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	doc, err := BuildOpenAPI(cfg, v)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi: %w", err)
	}

	return &API{
		Store:     store,
		Config:    cfg,
		Gate:      shared.NewGate(cfg.APIKey),
		Validator: v,
		Metrics:   NewMetrics(),
		Log:       log,
		openapi:   raw,
	}, nil
}

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.Log))
	r.Use(a.recoverer)
	r.Use(a.Metrics.Instrument)
	if origins := a.Config.AllowedOrigins(); len(origins) > 0 {
		r.Use(cors(origins))
	}
	if a.Config.RateLimitRPS > 0 {
		r.Use(a.rateLimit(NewRateLimiter(a.Config.RateLimitRPS, a.Config.RateLimitBurst)))
	}

	r.NotFound(a.NotFound)
	r.MethodNotAllowed(a.MethodNotAllowed)

	r.Get("/config", a.PublicConfig)
	r.Get("/secure-data", a.RequireAPIKey(a.SecureData))
	r.Get("/health", a.Health)

	r.Get("/items", a.ListItems)
	r.Post("/items", a.CreateItem)
	r.Get("/items/{id}", a.GetItem)
	r.Delete("/items/{id}", a.DeleteItem)

	r.Post("/math/divide", a.Divide)

	r.Get("/openapi.json", a.OpenAPI)
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	return r
}

package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"stockroom/internal/shared"
)

type API struct {
	Store     Store
	Config    *shared.Config
	Gate      *shared.Gate
	Validator *Validator
	Metrics   *Metrics
	Log       *logrus.Logger

	openapi []byte
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// RequireAPIKey lets the request through only when X-API-Key matches the
// configured secret exactly.
func (a *API) RequireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.Gate.Authorize(r.Header.Get(shared.APIKeyHeader)); err != nil {
			a.writeError(w, r, err)
			return
		}
		next(w, r)
	}
}

func (a *API) PublicConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Config.Public())
}

func (a *API) SecureData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shared.SecureDataResponse{SecretData: "approved"})
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	n, err := a.Store.Count(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shared.HealthResponse{
		Status:      "healthy",
		AppName:     a.Config.AppName,
		Environment: a.Config.Environment,
		Debug:       a.Config.Debug,
		Items:       n,
	})
}

func (a *API) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req shared.ItemCreate
	if err := a.Validator.Decode(r.Body, a.Validator.ItemCreate, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	item, err := a.Store.CreateItem(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Metrics.itemsCreated.Inc()
	a.Log.WithFields(logrus.Fields{
		"request_id": requestID(r.Context()),
		"item_id":    item.ID,
	}).Debug("item created")

	writeJSON(w, http.StatusCreated, item)
}

func (a *API) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := a.Store.ListItems(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	item, err := a.Store.GetItem(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.Store.DeleteItem(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Metrics.itemsDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) Divide(w http.ResponseWriter, r *http.Request) {
	var req shared.DivideRequest
	if err := a.Validator.Decode(r.Body, a.Validator.Divide, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	result, err := shared.Divide(req.A, req.B)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	// JSON has no encoding for an overflowed quotient.
	if math.IsInf(result, 0) {
		a.writeError(w, r, &shared.ValidationError{Violations: []shared.Violation{{
			Field:      "result",
			Location:   "body",
			Constraint: "finite",
			Message:    "quotient overflows a finite number",
		}}})
		return
	}
	writeJSON(w, http.StatusOK, shared.DivideResponse{Result: result})
}

func (a *API) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.openapi)
}

func (a *API) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, shared.StructuredError{
		ErrorType: shared.ErrorTypeNotFound,
		Message:   "Route not found",
	})
}

func (a *API) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, shared.StructuredError{
		ErrorType: shared.ErrorTypeMethodNotAllowed,
		Message:   "Method not allowed",
	})
}

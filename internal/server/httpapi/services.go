package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/portkeeper/portkeeper/internal/common"
	"github.com/portkeeper/portkeeper/internal/server/models"
)

// Catalog is the slice of the service catalog the HTTP layer needs.
type Catalog interface {
	List(ctx context.Context) ([]*models.Service, error)
	Get(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, name string, port int) (*models.Service, error)
	Update(ctx context.Context, id string, name *string, port *int) (*models.Service, error)
	Delete(ctx context.Context, id string) error
}

type ServicesHandler struct {
	catalog Catalog
}

func NewServicesHandler(catalog Catalog) *ServicesHandler {
	return &ServicesHandler{catalog: catalog}
}

type createServiceRequest struct {
	Name string `json:"name"`
	Port int    `json:"port"`
}

type updateServiceRequest struct {
	Name *string `json:"name"`
	Port *int    `json:"port"`
}

type serviceBody struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Port      int       `json:"port"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func serviceResponse(s *models.Service) serviceBody {
	return serviceBody{
		ID:        s.ID,
		Name:      s.Name,
		Port:      s.Port,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

const nameMaxLen = 100

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= nameMaxLen
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

// serviceID validates the {id} route parameter. Ids are UUIDs; anything else
// can never match a row, and letting it through would surface as a database
// type error instead of a clean 404.
func serviceID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	body := make([]serviceBody, 0, len(list))
	for _, s := range list {
		body = append(body, serviceResponse(s))
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *ServicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	s, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, serviceResponse(s))
}

func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validName(req.Name) {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 100 characters")
		return
	}
	if !validPort(req.Port) {
		writeError(w, http.StatusBadRequest, "port must be between 1 and 65535")
		return
	}

	s, err := h.catalog.Create(r.Context(), req.Name, req.Port)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, serviceResponse(s))
}

func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil && req.Port == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Name != nil && !validName(*req.Name) {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 100 characters")
		return
	}
	if req.Port != nil && !validPort(*req.Port) {
		writeError(w, http.StatusBadRequest, "port must be between 1 and 65535")
		return
	}

	id, ok := serviceID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	s, err := h.catalog.Update(r.Context(), id, req.Name, req.Port)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, serviceResponse(s))
}

func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	err := h.catalog.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package forfaits

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/middleware"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/render"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/metrics"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

const (
	msgNotFound    = "forfait not found"
	msgServerError = "server error"
	msgInvalidBody = "invalid JSON body"
	msgDeleted     = "deleted"
)

type Forfait struct {
	ID          uint       `json:"id"`
	Nom         string     `json:"nom"`
	Description string     `json:"description"`
	Prix        float64    `json:"prix"`
	Image       string     `json:"image"`
	Categorie   string     `json:"categorie"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// ForfaitRequest is the body accepted by create and update. prix may be a
// JSON number or a numeric string.
type ForfaitRequest struct {
	Nom         string          `json:"nom"`
	Description string          `json:"description"`
	Prix        decimal.Decimal `json:"prix"`
	Image       string          `json:"image"`
	Categorie   string          `json:"categorie"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type ForfaitProvider interface {
	GetAll(ctx context.Context) ([]models.Forfait, error)
	GetByID(ctx context.Context, id uint) (*models.Forfait, error)
	GetByCategorie(ctx context.Context, categorie string) ([]models.Forfait, error)
	Search(ctx context.Context, term string) ([]models.Forfait, error)
	Create(ctx context.Context, in models.ForfaitInput) (*models.Forfait, error)
	Update(ctx context.Context, id uint, in models.ForfaitInput) (*models.Forfait, error)
	Delete(ctx context.Context, id uint) error
}

// OperationRecorder counts operation outcomes.
type OperationRecorder interface {
	RecordOperation(operation, result string)
}

type ForfaitHandler struct {
	repo    ForfaitProvider
	log     *zap.Logger
	metrics OperationRecorder
}

func NewForfaitHandler(r ForfaitProvider, log *zap.Logger, m OperationRecorder) *ForfaitHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = nopRecorder{}
	}
	return &ForfaitHandler{
		repo:    r,
		log:     log,
		metrics: m,
	}
}

// HandleGetAll serves GET /api/forfaits.
func (h *ForfaitHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	h.ok(w, "list", http.StatusOK, toResponses(res))
}

// HandleGet serves GET /api/forfaits/{id}.
func (h *ForfaitHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "get")
	if !ok {
		return
	}

	forfait, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}
	h.ok(w, "get", http.StatusOK, toResponse(forfait))
}

// HandleGetByCategorie serves GET /api/forfaits/categorie/{categorie}.
func (h *ForfaitHandler) HandleGetByCategorie(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.GetByCategorie(r.Context(), r.PathValue("categorie"))
	if err != nil {
		h.fail(w, r, "by_categorie", err)
		return
	}
	h.ok(w, "by_categorie", http.StatusOK, toResponses(res))
}

// HandleSearch serves GET /api/forfaits/search/{term}. Terms the router
// cannot carry in the path ("." and "..") arrive as GET
// /api/forfaits/search?term=.
func (h *ForfaitHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	if term == "" {
		term = r.URL.Query().Get("term")
	}

	res, err := h.repo.Search(r.Context(), term)
	if err != nil {
		h.fail(w, r, "search", err)
		return
	}
	h.ok(w, "search", http.StatusOK, toResponses(res))
}

// HandleCreate serves POST /api/forfaits.
func (h *ForfaitHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeBody(w, r, "create")
	if !ok {
		return
	}

	forfait, err := h.repo.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	h.ok(w, "create", http.StatusCreated, toResponse(forfait))
}

// HandleUpdate serves PUT /api/forfaits/{id}.
func (h *ForfaitHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "update")
	if !ok {
		return
	}
	in, ok := h.decodeBody(w, r, "update")
	if !ok {
		return
	}

	forfait, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	h.ok(w, "update", http.StatusOK, toResponse(forfait))
}

// HandleDelete serves DELETE /api/forfaits/{id}.
func (h *ForfaitHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "delete")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	h.ok(w, "delete", http.StatusOK, DeleteResponse{Message: msgDeleted, ID: id})
}

func (h *ForfaitHandler) ok(w http.ResponseWriter, op string, status int, body any) {
	h.metrics.RecordOperation(op, metrics.ResultSuccess)
	render.JSON(w, status, body)
}

// fail logs err and answers 404 for a missing forfait, 500 with a generic
// message for anything else.
func (h *ForfaitHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := middleware.LoggerFrom(r.Context(), h.log)

	if errors.Is(err, models.ErrForfaitNotFound) {
		log.Warn("Forfait not found", zap.String("operation", op), zap.String("path", r.URL.Path), zap.Error(err))
		h.metrics.RecordOperation(op, metrics.ResultNotFound)
		render.Error(w, http.StatusNotFound, msgNotFound)
		return
	}

	log.Error("Forfait operation failed", zap.String("operation", op), zap.String("path", r.URL.Path), zap.Error(err))
	h.metrics.RecordOperation(op, metrics.ResultError)
	render.Error(w, http.StatusInternalServerError, msgServerError)
}

// pathID parses the {id} path value. An id that is not a positive integer
// cannot match any row and is answered as not found.
func (h *ForfaitHandler) pathID(w http.ResponseWriter, r *http.Request, op string) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		h.fail(w, r, op, models.ErrForfaitNotFound)
		return 0, false
	}
	return uint(id), true
}

func (h *ForfaitHandler) decodeBody(w http.ResponseWriter, r *http.Request, op string) (models.ForfaitInput, bool) {
	var req ForfaitRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.LoggerFrom(r.Context(), h.log).Warn("Invalid request body",
			zap.String("operation", op), zap.Error(err))
		h.metrics.RecordOperation(op, metrics.ResultInvalid)
		render.Error(w, http.StatusBadRequest, msgInvalidBody)
		return models.ForfaitInput{}, false
	}

	return models.ForfaitInput{
		Nom:         req.Nom,
		Description: req.Description,
		Prix:        req.Prix,
		Image:       req.Image,
		Categorie:   req.Categorie,
	}, true
}

func toResponse(f *models.Forfait) Forfait {
	out := Forfait{
		ID:          f.ID,
		Nom:         f.Nom,
		Description: f.Description,
		Prix:        f.Prix.InexactFloat64(),
		Image:       f.Image,
		Categorie:   f.Categorie,
	}
	if !f.CreatedAt.IsZero() {
		createdAt := f.CreatedAt
		out.CreatedAt = &createdAt
	}
	return out
}

func toResponses(res []models.Forfait) []Forfait {
	forfaits := make([]Forfait, len(res))
	for i := range res {
		forfaits[i] = toResponse(&res[i])
	}
	return forfaits
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}

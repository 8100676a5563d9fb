package categories

import (
	"context"
	"net/http"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/middleware"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/render"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/models"
	"go.uber.org/zap"
)

type CategoryResponse struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

type CategoryProvider interface {
	ListCategories(ctx context.Context) ([]models.CategorySummary, error)
}

type CategoryHandler struct {
	repo CategoryProvider
	log  *zap.Logger
}

func NewCategoryHandler(r CategoryProvider, log *zap.Logger) *CategoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryHandler{repo: r, log: log}
}

// HandleGetAll serves GET /api/categories: every category in use with the
// number of forfaits filed under it.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		middleware.LoggerFrom(r.Context(), h.log).Error("Failed to fetch categories", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "server error")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			Name:  c.Name,
			Total: c.Total,
		}
	}

	render.JSON(w, http.StatusOK, response)
}

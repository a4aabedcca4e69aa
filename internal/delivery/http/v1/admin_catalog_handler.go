package v1

import (
	"net/http"
	"strconv"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

type AdminCatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogUC: uc}
}

// ListProducts returns inactive products too.
// Query params: isActive (optional) - "true", "false", or omit for all
func (h *AdminCatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, page, limit := productFilter(r)
	if val := r.URL.Query().Get("isActive"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			filter.IsActive = &b
		}
	}

	products, total, err := h.catalogUC.GetProducts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writePage(w, products, page, limit, total)
}

func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if !decode(w, r, &product) {
		return
	}

	if err := h.catalogUC.CreateProduct(r.Context(), &product); err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("article", product.ArticleNumber).
		Msg("Product created")
	utils.WriteJSON(w, http.StatusCreated, product)
}

func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if !decode(w, r, &product) {
		return
	}
	// The path wins over the body.
	product.ArticleNumber = r.PathValue("articleNumber")

	if err := h.catalogUC.UpdateProduct(r.Context(), &product); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	article := r.PathValue("articleNumber")
	if err := h.catalogUC.DeleteProduct(r.Context(), article); err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("article", utils.NormalizeArticle(article)).
		Msg("Product deleted")
	w.WriteHeader(http.StatusNoContent)
}

// --- Categories ---

func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if !decode(w, r, &c) {
		return
	}
	c.ID = 0
	if err := h.catalogUC.CreateCategory(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var c domain.Category
	if !decode(w, r, &c) {
		return
	}
	c.ID = id
	if err := h.catalogUC.UpdateCategory(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.catalogUC.DeleteCategory(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Brands ---

func (h *AdminCatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var b domain.Brand
	if !decode(w, r, &b) {
		return
	}
	b.ID = 0
	if err := h.catalogUC.CreateBrand(r.Context(), &b); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, b)
}

func (h *AdminCatalogHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var b domain.Brand
	if !decode(w, r, &b) {
		return
	}
	b.ID = id
	if err := h.catalogUC.UpdateBrand(r.Context(), &b); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, b)
}

func (h *AdminCatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.catalogUC.DeleteBrand(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

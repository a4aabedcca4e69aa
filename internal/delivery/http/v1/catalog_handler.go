package v1

import (
	"net/http"
	"strconv"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
	reviewUC  *usecase.ReviewUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase, reviewUC *usecase.ReviewUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc, reviewUC: reviewUC}
}

func optionalInt32(v string) *int32 {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return nil
	}
	id := int32(n)
	return &id
}

func optionalDecimal(v string) *decimal.Decimal {
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}

// productFilter reads the catalog query string. Malformed numbers are ignored.
func productFilter(r *http.Request) (domain.ProductFilter, int, int) {
	query := r.URL.Query()
	page, limit := pageParams(r)
	onSale, _ := strconv.ParseBool(query.Get("on_sale"))

	return domain.ProductFilter{
		Query:      query.Get("q"),
		CategoryID: optionalInt32(query.Get("category_id")),
		BrandID:    optionalInt32(query.Get("brand_id")),
		Size:       query.Get("size"),
		Gender:     query.Get("gender"),
		MinPrice:   optionalDecimal(query.Get("min_price")),
		MaxPrice:   optionalDecimal(query.Get("max_price")),
		OnSale:     onSale,
		Sort:       query.Get("sort"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}, page, limit
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, page, limit := productFilter(r)
	active := true
	filter.IsActive = &active

	products, total, err := h.catalogUC.GetProducts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writePage(w, products, page, limit, total)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	article := utils.NormalizeArticle(r.PathValue("articleNumber"))
	if article == "" {
		utils.WriteError(w, http.StatusBadRequest, "Article number required")
		return
	}

	product, err := h.catalogUC.GetProduct(r.Context(), article)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !product.IsActive {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalogUC.GetCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	utils.WriteJSON(w, http.StatusOK, cats)
}

func (h *CatalogHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalogUC.GetBrands(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	utils.WriteJSON(w, http.StatusOK, brands)
}

func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	article := utils.NormalizeArticle(r.PathValue("articleNumber"))
	page, limit := pageParams(r)

	reviews, total, err := h.reviewUC.ListForProduct(r.Context(), article, page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writePage(w, reviews, page, limit, total)
}

func (h *CatalogHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	article := utils.NormalizeArticle(r.PathValue("articleNumber"))

	var req domain.ReviewRequest
	if !decode(w, r, &req) {
		return
	}

	review, err := h.reviewUC.Create(r.Context(), user.ID, article, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, review)
}

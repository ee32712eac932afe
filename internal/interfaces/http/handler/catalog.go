package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CatalogService is the read side of the catalog used by CatalogHandler
type CatalogService interface {
	ListCategories(ctx context.Context) ([]appcatalog.CategoryResponse, error)
	ListBrands(ctx context.Context) ([]appcatalog.BrandResponse, error)
	ListProducts(ctx context.Context, query appcatalog.ProductListQuery) (*appcatalog.ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (*appcatalog.ProductResponse, error)
}

// CatalogHandler serves categories, brands and products
type CatalogHandler struct {
	BaseHandler
	catalog CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCategories godoc
// @ID           listCategories
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200 {array}  appcatalog.CategoryResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListBrands godoc
// @ID           listBrands
// @Summary      List brands
// @Tags         catalog
// @Produce      json
// @Success      200 {array}  appcatalog.BrandResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /brands [get]
func (h *CatalogHandler) ListBrands(c *gin.Context) {
	brands, err := h.catalog.ListBrands(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

// ListProducts godoc
// @ID           listProducts
// @Summary      List active products
// @Description  Filters combine with AND. search matches name and both descriptions case-insensitively.
// @Tags         catalog
// @Produce      json
// @Param        category  query int    false "Category id"
// @Param        brand     query int    false "Brand id"
// @Param        search    query string false "Free text search"
// @Param        ordering  query string false "Sort order" Enums(price, -price, created_at, -created_at)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(10) maximum(100)
// @Success      200 {object} dto.PageResponse[appcatalog.ProductResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var details []dto.ValidationDetail
	categoryID, err := queryInt64(c, "category")
	if err != nil {
		details = append(details, dto.ValidationDetail{Field: "category", Message: "Select a valid choice."})
	}
	brandID, err := queryInt64(c, "brand")
	if err != nil {
		details = append(details, dto.ValidationDetail{Field: "brand", Message: "Select a valid choice."})
	}
	if len(details) > 0 {
		resp := dto.NewValidationErrorResponse(details)
		resp.RequestID = requestID(c)
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	page, err := queryInt(c, "page")
	if err != nil {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Invalid page.")
		return
	}
	// an unusable page_size falls back to the default
	pageSize, _ := queryInt(c, "page_size")

	result, err := h.catalog.ListProducts(c.Request.Context(), appcatalog.ProductListQuery{
		CategoryID: categoryID,
		BrandID:    brandID,
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if result.Page > 1 && result.Page > result.TotalPages {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Invalid page.")
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(
		result.Items, result.Total, result.Page, result.HasNext(), result.HasPrevious(), absoluteURL(c),
	))
}

// GetProduct godoc
// @ID           getProductBySlug
// @Summary      Get an active product by slug
// @Tags         catalog
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} appcatalog.ProductResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /products/{slug} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// absoluteURL rebuilds the request URL as the client addressed it
func absoluteURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	u := *c.Request.URL
	u.Scheme = scheme
	u.Host = c.Request.Host
	return &u
}


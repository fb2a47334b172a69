package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/services"
)

// allowed product image extensions
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ProductHandler serves the /products endpoints.
type ProductHandler struct {
	catalogService *services.CatalogService
	logger         *logrus.Entry
	uploadDir      string
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *services.CatalogService, logger *logrus.Logger, uploadDir string) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger.WithField("handler", "product"),
		uploadDir:      uploadDir,
	}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	filter := models.ProductFilter{
		Sort:     c.Query("sort"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", models.DefaultPageSize),
	}
	if raw := c.Query("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minPrice"})
			return
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxPrice"})
			return
		}
		filter.MaxPrice = &v
	}

	resp, err := h.catalogService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Featured handles GET /products/featured
func (h *ProductHandler) Featured(c *gin.Context) {
	products, err := h.catalogService.Featured(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// NewArrivals handles GET /products/new-arrivals
func (h *ProductHandler) NewArrivals(c *gin.Context) {
	products, err := h.catalogService.NewArrivals(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// BestSellers handles GET /products/best-sellers
func (h *ProductHandler) BestSellers(c *gin.Context) {
	products, err := h.catalogService.BestSellers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	product, err := h.catalogService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ByCategory handles GET /products/category/:categoryId
func (h *ProductHandler) ByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("categoryId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	resp, err := h.catalogService.ByCategory(c.Request.Context(), categoryID,
		queryInt(c, "page", 1), queryInt(c, "pageSize", models.DefaultPageSize))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search handles GET /products/search/:keyword
func (h *ProductHandler) Search(c *gin.Context) {
	resp, err := h.catalogService.Search(c.Request.Context(), c.Param("keyword"),
		queryInt(c, "page", 1), queryInt(c, "pageSize", models.DefaultPageSize))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /products (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.catalogService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update handles PUT /products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.catalogService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /products/:id (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err := h.catalogService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}

// Upload handles POST /products/:id/upload (admin). The file lands in the
// uploads dir served statically; the product's image path is updated.
func (h *ProductHandler) Upload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
		return
	}

	filename := fmt.Sprintf("%s-%s%s", id, uuid.NewString()[:8], ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	product, err := h.catalogService.SetImage(c.Request.Context(), id, "/uploads/"+filename)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

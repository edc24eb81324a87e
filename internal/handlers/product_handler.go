package handlers

import (
	"log/slog"
	"net/http"

	"sommy-store/internal/domain"
	"sommy-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductHandler struct {
	products service.ProductService
	log      *slog.Logger
}

func NewProductHandler(products service.ProductService, log *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	product, err := h.products.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

func (h *ProductHandler) productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product id"})
		return uuid.Nil, false
	}
	return id, true
}

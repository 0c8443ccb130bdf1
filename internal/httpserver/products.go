package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"simple-store/internal/domain"
)

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.logger.Printf("list products request_id=%s error=%v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products: " + publicError(err)})
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Printf("get product request_id=%s id=%d error=%v", requestID(c), id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product: " + publicError(err)})
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

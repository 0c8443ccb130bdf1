package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"simple-store/internal/domain"
)

type placeOrderRequest struct {
	UserID int64             `json:"userId" binding:"required,gt=0"`
	Cart   []cartLineRequest `json:"cart" binding:"required,min=1,dive"`
}

type cartLineRequest struct {
	ID       int64 `json:"id" binding:"required,gt=0"`
	Quantity int   `json:"quantity" binding:"required,gt=0,lte=2147483647"`
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID and cart are required."})
		return
	}
	cart := make([]domain.CartLine, 0, len(req.Cart))
	for _, line := range req.Cart {
		cart = append(cart, domain.CartLine{ProductID: line.ID, Quantity: line.Quantity})
	}

	orderID, err := h.orders.Place(c.Request.Context(), req.UserID, cart)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart),
			errors.Is(err, domain.ErrInvalidUser),
			errors.Is(err, domain.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User ID and cart are required."})
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order.", "error": err.Error()})
		default:
			h.logger.Printf("place order request_id=%s user_id=%d error=%v", requestID(c), req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order.", "error": publicError(err)})
		}
		return
	}

	h.metrics.OrdersPlaced.Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully!", "orderId": orderID})
}

func (h *handlers) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found."})
		return
	}

	receipt, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found."})
			return
		}
		h.logger.Printf("get order request_id=%s order_id=%d error=%v", requestID(c), orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching order.", "error": publicError(err)})
		return
	}
	c.JSON(http.StatusOK, toReceiptResponse(*receipt))
}

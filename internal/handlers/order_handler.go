package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sommy-store/internal/domain"
	"sommy-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders service.OrderService
	log    *slog.Logger
}

func NewOrderHandler(orders service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

type orderLineItemRequest struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price"`
	Image     string   `json:"image"`
}

type createOrderRequest struct {
	UserID          string                 `json:"userId"`
	Items           []orderLineItemRequest `json:"items"`
	Total           *float64               `json:"total"`
	ShippingAddress string                 `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

type updateOrderRequest struct {
	Status        *string `json:"status"`
	DispatchDate  *string `json:"dispatchDate"`
	DepartureDate *string `json:"departureDate"`
	DeliveryDate  *string `json:"deliveryDate"`
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.UserID == "" || len(req.Items) == 0 || req.Total == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	ownerID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	items := make([]domain.OrderLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product id"})
			return
		}
		var price float64
		if item.Price != nil {
			price = *item.Price
		}
		items = append(items, domain.OrderLineItem{
			ProductID: productID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
			Image:     item.Image,
		})
	}

	order, err := h.orders.Create(c.Request.Context(), service.CreateOrderInput{
		OwnerID:         ownerID,
		Items:           items,
		Total:           *req.Total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order created", "order": order})
}

// ListByUser handles GET /orders/user/:userId.
func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	orders, err := h.orders.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListAll handles GET /orders.
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get handles GET /orders/:orderId.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Track handles GET /orders/:orderId/track.
func (h *OrderHandler) Track(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	info, err := h.orders.Track(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Cancel handles POST /orders/:orderId/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	result, err := h.orders.Cancel(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Order cancelled",
		"cancellationFee": result.CancellationFee,
		"refundAmount":    result.RefundAmount,
		"refundStatus":    result.RefundStatus,
	})
}

// Update handles PUT /orders/:orderId. Any subset of status and shipping
// dates may be supplied.
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var in service.UpdateOrderInput
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		in.Status = &status
	}
	var err error
	if in.DispatchDate, err = parseDate(req.DispatchDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid dispatchDate"})
		return
	}
	if in.DepartureDate, err = parseDate(req.DepartureDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid departureDate"})
		return
	}
	if in.DeliveryDate, err = parseDate(req.DeliveryDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid deliveryDate"})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": order})
}

func (h *OrderHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, &time.ParseError{Layout: time.RFC3339, Value: *s}
}

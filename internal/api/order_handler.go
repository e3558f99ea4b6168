package api

import (
	"net/http"

	"shokolad-be/internal/middleware"
	"shokolad-be/internal/order"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderItemRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	User            *string            `json:"user"`
	DeliveryAddress string             `json:"deliveryAddress" binding:"required"`
	CustomerName    string             `json:"customerName" binding:"required"`
	CustomerPhone   string             `json:"customerPhone" binding:"required"`
	Items           []orderItemRequest `json:"items" binding:"required"`
}

type updateOrderDetailsRequest struct {
	DeliveryAddress *string            `json:"deliveryAddress"`
	CustomerName    *string            `json:"customerName"`
	CustomerPhone   *string            `json:"customerPhone"`
	Items           []orderItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status  string  `json:"status" binding:"required"`
	Comment *string `json:"comment"`
}

func toItemParams(items []orderItemRequest) []order.ItemParams {
	if items == nil {
		return nil
	}
	params := make([]order.ItemParams, 0, len(items))
	for _, item := range items {
		params = append(params, order.ItemParams{ProductID: item.Product, Quantity: item.Quantity})
	}
	return params
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := order.CreateParams{
		UserID:          req.User,
		DeliveryAddress: req.DeliveryAddress,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Items:           toItemParams(req.Items),
	}
	// An explicit user attaches the order to that account; otherwise it
	// belongs to the caller.
	if params.UserID == nil {
		if userID, ok := middleware.UserIDFromContext(c.Request.Context()); ok {
			params.UserID = &userID
		}
	}

	res, err := h.orders.Create(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// orderFilter reads the filter query params shared by listing and export.
func orderFilter(c *gin.Context) order.ListFilter {
	var filter order.ListFilter
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("user"); v != "" {
		filter.User = &v
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	return filter
}

func (h *OrderHandler) List(c *gin.Context) {
	filter := orderFilter(c)
	filter.Page = intQuery(c, "page")
	filter.Limit = intQuery(c, "limit")

	res, err := h.orders.FindAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) Get(c *gin.Context) {
	res, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) Update(c *gin.Context) {
	var req updateOrderDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.orders.Update(c.Request.Context(), c.Param("id"), order.UpdateParams{
		DeliveryAddress: req.DeliveryAddress,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Items:           toItemParams(req.Items),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var updatedBy *string
	if userID, ok := middleware.UserIDFromContext(c.Request.Context()); ok {
		updatedBy = &userID
	}

	res, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"),
		order.Status(req.Status), req.Comment, updatedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

func (h *OrderHandler) Export(c *gin.Context) {
	file, err := h.orders.ExportToExcel(c.Request.Context(), orderFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		respondError(c, err)
	}
}

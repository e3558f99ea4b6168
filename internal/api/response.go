package api

import (
	"errors"
	"net/http"

	"shokolad-be/internal/category"
	"shokolad-be/internal/logger"
	"shokolad-be/internal/order"
	"shokolad-be/internal/product"
	"shokolad-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError translates domain errors into HTTP statuses in one place.
// Anything unrecognised becomes a generic 500 so store details never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, category.ErrCategoryNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, category.ErrInvalidCategoryID),
		errors.Is(err, category.ErrParentCycle),
		errors.Is(err, category.ErrEmptyName),
		errors.Is(err, product.ErrInvalidProductID),
		errors.Is(err, product.ErrEmptyName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrNoWorksheet),
		errors.Is(err, order.ErrInvalidOrderID),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrUnknownProducts),
		errors.Is(err, user.ErrInvalidUserID),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrEmptyPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, user.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	default:
		logger.FromCtx(c.Request.Context()).Error("unhandled handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

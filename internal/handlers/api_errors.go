package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridham-007/test-vismobackend/internal/ledger"
	"github.com/ridham-007/test-vismobackend/internal/models"
)

func writeAPIError(c *gin.Context, err error) {
	if err == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if errors.Is(err, models.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}
	var appErr *models.ApplicationError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": appErr.Message})
		return
	}

	// Declined-class provider failures carry a message safe to show the
	// paying user; the rest stay internal.
	var ledgerErr *ledger.Error
	if errors.As(err, &ledgerErr) && ledgerErr.UserFacing() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ledgerErr.Message})
		return
	}

	log.Printf("internal error: %v", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridham-007/test-vismobackend/internal/billing"
	"github.com/ridham-007/test-vismobackend/internal/models"
)

// The setup-intent, checkout and portal endpoints always answer 200 with a
// {success, message, error} body so the client app can inspect the result
// of an in-flight payment; the remaining endpoints use status codes.

// SetupIntentHandler opens a setup intent for the user's ledger customer.
// POST /stripe/setup-intent
func SetupIntentHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SetupIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		c.JSON(http.StatusOK, svc.SetupIntentForPayment(c.Request.Context(), req))
	}
}

// CheckoutHandler creates the subscription behind a confirmed setup intent.
// POST /stripe
func CheckoutHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		c.JSON(http.StatusOK, svc.Checkout(c.Request.Context(), req))
	}
}

// UpdatePaymentIntentHandler reconciles local state after the client
// confirmed a payment or setup intent.
// POST /stripe/update-payment-intent
func UpdatePaymentIntentHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdatePaymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		resp, err := svc.UpdatePaymentIntent(c.Request.Context(), req)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ValidatePromocodeHandler checks a promo code and returns its discount.
// POST /stripe/validate-promocode
func ValidatePromocodeHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ValidatePromocodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		resp, err := svc.ValidatePromocode(c.Request.Context(), req)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// CreateCouponHandler creates a coupon plus its promotion code.
// POST /stripe/create-coupon
func CreateCouponHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		resp, err := svc.CreateCoupon(c.Request.Context(), req)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// CustomerPortalHandler opens a provider-hosted portal session.
// POST /stripe/create-portal
func CustomerPortalHandler(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CustomerPortalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		c.JSON(http.StatusOK, svc.CreateCustomerPortal(c.Request.Context(), req))
	}
}

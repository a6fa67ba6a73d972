package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridham-007/test-vismobackend/internal/billing"
	"github.com/ridham-007/test-vismobackend/internal/config"
	"github.com/ridham-007/test-vismobackend/internal/middleware"
)

// RegisterBillingRoutes wires the billing endpoints. Each synchronous
// operation is gated on its own capability scope; the webhook authenticates
// by signature instead.
func RegisterBillingRoutes(rg *gin.RouterGroup, svc *billing.Service, cfg config.Config) {
	rg.POST("/stripe/setup-intent", middleware.RequireScope(cfg, "setupIntentForPayment"), SetupIntentHandler(svc))
	rg.POST("/stripe", middleware.RequireScope(cfg, "checkout"), CheckoutHandler(svc))
	rg.POST("/stripe/update-payment-intent", middleware.RequireScope(cfg, "updatePaymentIntent"), UpdatePaymentIntentHandler(svc))
	rg.POST("/stripe/validate-promocode", middleware.RequireScope(cfg, "validatePromocode"), ValidatePromocodeHandler(svc))
	rg.POST("/stripe/create-coupon", middleware.RequireScope(cfg, "createCoupon"), CreateCouponHandler(svc))
	rg.POST("/stripe/create-portal", middleware.RequireScope(cfg, "createCustomerPortal"), CustomerPortalHandler(svc))

	rg.POST("/stripe/webhook", WebhookHandler(svc))
}

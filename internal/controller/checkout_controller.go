package controller

import (
	"course_backend/internal/service"
	"course_backend/internal/util"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type CheckoutController struct {
	CheckoutService *service.CheckoutService
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{CheckoutService: checkoutService}
}

// CreateSession godoc
// @Summary Start a checkout for the course
// @Tags checkout
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=payment.CheckoutSession}
// @Failure 409 {object} util.Response "Already purchased"
// @Failure 503 {object} util.Response "Payments not configured"
// @Router /checkout/session [post]
func (c *CheckoutController) CreateSession(ctx *gin.Context) {
	s, err := c.CheckoutService.CreateSession(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, s)
}

// Webhook godoc
// @Summary Payment processor webhook
// @Tags checkout
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Signature"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /checkout/webhook [post]
func (c *CheckoutController) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		util.Error(ctx, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := c.CheckoutService.HandleWebhook(ctx.Request.Context(), payload, ctx.GetHeader("Stripe-Signature")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"received": true})
}

// Access godoc
// @Summary Course access of the caller
// @Tags checkout
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.AccessStatus}
// @Router /checkout/access [get]
func (c *CheckoutController) Access(ctx *gin.Context) {
	status, err := c.CheckoutService.AccessStatus(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"psm/src/types"
	"psm/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payments/checkout", func(ctx *gin.Context) {
			var body types.CreateCheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			payment, err := utils.CreateCheckout(userId, &body)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": payment})
		}).
		PUT("/bookings/:id/cash-confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.ConfirmCashPayment(userId, params.ID); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

// gatewayCallbackHandlers are unauthenticated: bKash and SSLCommerz
// redirect the payer's browser here. The transaction is always re-verified
// with the gateway before anything settles.
func gatewayCallbackHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payments/callback/:method", func(ctx *gin.Context) {
			var params types.GatewayCallbackParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			trxId := ctx.Query("paymentID")
			if trxId == "" {
				trxId = ctx.PostForm("tran_id")
			}
			if trxId == "" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing transaction reference"})
				return
			}
			if err := utils.VerifyGatewayCallback(params.Method, trxId); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/payments/webhook/stripe", func(ctx *gin.Context) {
			payload, err := io.ReadAll(ctx.Request.Body)
			if err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			sig := ctx.GetHeader("Stripe-Signature")
			event, err := webhook.ConstructEvent(payload, sig, os.Getenv("STRIPE_WEBHOOK_SECRET"))
			if err != nil {
				log.Printf("[Stripe] Error verifying webhook signature: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			switch event.Type {
			case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionExpired:
				csId := gjson.GetBytes(event.Data.Raw, "id").String()
				paid := event.Type == stripe.EventTypeCheckoutSessionCompleted
				if err := utils.ApplyGatewayResult(csId, paid, types.JSONB{
					"event": string(event.Type),
				}); err != nil {
					log.Printf("[Stripe] Error applying event %s: %s\n", event.ID, err.Error())
					ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
					return
				}
			default:
				log.Printf("[Stripe] Ignoring event type: %s\n", event.Type)
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

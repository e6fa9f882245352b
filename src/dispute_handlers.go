package main

import (
	"net/http"
	"psm/src/db"
	"psm/src/middlewares"
	"psm/src/models"
	"psm/src/types"
	"psm/src/utils"

	"github.com/gin-gonic/gin"
)

func disputeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/disputes", func(ctx *gin.Context) {
			var body types.CreateDisputeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			dispute, err := utils.CreateDispute(userId, &body)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": dispute})
		}).
		GET("/disputes", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			var disputes []models.Dispute
			err := conn.
				Model(&models.Dispute{}).
				Where(&models.Dispute{RaisedByID: userId}).
				Preload("Booking").
				Order("created_at DESC").
				Limit(50).
				Find(&disputes).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": disputes, "count": len(disputes)})
		}).
		GET("/disputes/open", middlewares.RequireCapability(types.CAP_RESOLVE_DISPUTE), func(ctx *gin.Context) {
			conn := db.GetDb()
			var disputes []models.Dispute
			err := conn.
				Model(&models.Dispute{}).
				Where(&models.Dispute{Status: types.DISPUTE_OPEN}).
				Preload("Booking").
				Order("created_at ASC").
				Find(&disputes).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": disputes, "count": len(disputes)})
		}).
		PUT("/disputes/:id/resolve", middlewares.RequireCapability(types.CAP_RESOLVE_DISPUTE), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ResolveDisputeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.ResolveDispute(userId, params.ID, &body); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

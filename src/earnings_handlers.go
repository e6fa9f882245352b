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

func earningsHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/earnings", middlewares.RequireRole(types.ROLE_PROFESSIONAL), func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			var prof models.Professional
			if err := conn.Where(&models.Professional{UserID: userId}).First(&prof).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": types.ErrNotFound.Error()})
				return
			}
			earning, err := utils.GetEarnings(prof.ID)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": earning})
		}).
		POST("/earnings/withdrawals", middlewares.RequireRole(types.ROLE_PROFESSIONAL), func(ctx *gin.Context) {
			var body types.CreateWithdrawRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			request, err := utils.CreateWithdrawRequest(userId, &body)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": request})
		}).
		GET("/earnings/withdrawals", middlewares.RequireCapability(types.CAP_APPROVE_WITHDRAW), func(ctx *gin.Context) {
			conn := db.GetDb()
			var requests []models.WithdrawRequest
			err := conn.
				Model(&models.WithdrawRequest{}).
				Where(&models.WithdrawRequest{Status: types.WITHDRAW_PENDING}).
				Order("created_at ASC").
				Find(&requests).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests, "count": len(requests)})
		}).
		PUT("/earnings/withdrawals/:id/approve", middlewares.RequireCapability(types.CAP_APPROVE_WITHDRAW), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.ApproveWithdraw(userId, params.ID); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/earnings/withdrawals/:id/reject", middlewares.RequireCapability(types.CAP_APPROVE_WITHDRAW), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.RejectWithdrawRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.RejectWithdraw(userId, params.ID, body.Reason); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

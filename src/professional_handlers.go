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

func professionalHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/professionals", func(ctx *gin.Context) {
			conn := db.GetDb()
			var profs []models.Professional
			err := conn.
				Model(&models.Professional{}).
				Where(&models.Professional{Status: types.PROFESSIONAL_APPROVED}).
				Limit(100).
				Find(&profs).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": profs, "count": len(profs)})
		}).
		GET("/professionals/:id/slots", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.ListSlotsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slots, err := utils.ListOpenSlots(params.ID, query.Date)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slots, "count": len(slots)})
		}).
		POST("/professionals", func(ctx *gin.Context) {
			var body types.CreateProfessionalRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			prof, err := utils.CreateProfessionalProfile(userId, body.Title, body.HourlyRate, body.Currency)
			if err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": prof})
		}).
		PUT("/professionals/profile", middlewares.RequireRole(types.ROLE_PROFESSIONAL), func(ctx *gin.Context) {
			var body types.UpdateProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.ProposeProfileChanges(userId, &body); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusAccepted)
		}).
		PUT("/professionals/availability", middlewares.RequireRole(types.ROLE_PROFESSIONAL), func(ctx *gin.Context) {
			var body types.UpdateAvailabilityRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.UpdateAvailability(userId, &body); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/professionals/:id/verify", middlewares.RequireCapability(types.CAP_VERIFY_PROFESSIONAL), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.VerifyProfessionalRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.VerifyProfessional(userId, params.ID, body.Decision); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/professionals/:id/review", middlewares.RequireCapability(types.CAP_REVIEW_PROFILE), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.VerifyProfessionalRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			approve := body.Decision == types.DECISION_APPROVED
			if err := utils.ReviewProfileChanges(userId, params.ID, approve); err != nil {
				ctx.JSON(types.ErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

package controller

import (
	"errors"

	"lumen_quiz_backend/internal/service"
	"lumen_quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ImportController struct {
	ImportService *service.ImportService
}

func NewImportController(importService *service.ImportService) *ImportController {
	return &ImportController{ImportService: importService}
}

// Categories godoc
// @Summary Importable categories
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/admin/import/categories [get]
func (c *ImportController) Categories(ctx *gin.Context) {
	util.Success(ctx, c.ImportService.Categories())
}

// ImportRequest names the category to import
// swagger:model ImportRequest
type ImportRequest struct {
	Category string `json:"category" binding:"required"`
}

// Import godoc
// @Summary Import a trivia quiz
// @Description Fetches a question batch from the Open Trivia Database and publishes it as a quiz
// @Tags admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ImportRequest true "Category"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "Unknown category"
// @Failure 502 {object} util.Response "Trivia source unavailable"
// @Router /api/admin/import [post]
func (c *ImportController) Import(ctx *gin.Context) {
	var req ImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.ImportService.ImportCategory(req.Category)
	if err != nil {
		if errors.Is(err, util.ErrNoQuestionsFound) {
			util.Error(ctx, 502, err.Error())
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, quiz)
}

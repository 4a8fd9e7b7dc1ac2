package controller

import (
	"strconv"

	"lumen_quiz_backend/internal/service"
	"lumen_quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const maxAvatarSize = 5 << 20 // 5 MB

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// Profile godoc
// @Summary Profile page
// @Description Progression, progress toward the next level, and recent results
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ProfilePage}
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *UserController) Profile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, err := c.UserService.GetProfilePage(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// Leaderboard godoc
// @Summary Leaderboard
// @Description Top players ordered by level, then XP
// @Tags users
// @Produce  json
// @Param   limit query int false "How many entries" default(20)
// @Success 200 {object} util.Response{data=[]repository.RankedProfile}
// @Router /api/leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	ranked, err := c.UserService.Leaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, ranked)
}

// UploadAvatar godoc
// @Summary Upload an avatar
// @Tags users
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   avatar formData file true "Avatar image"
// @Success 200 {object} util.Response{data=object} "Stored URL"
// @Failure 400 {object} util.Response "Missing or oversized file"
// @Router /api/profile/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}
	if file.Size > maxAvatarSize {
		util.BadRequest(ctx, "avatar exceeds the 5MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	claims := util.GetUserFromContext(ctx)
	url, err := c.UserService.UploadAvatar(ctx.Request.Context(), claims.UserID, file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"avatar": url})
}

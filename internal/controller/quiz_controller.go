package controller

import (
	"errors"
	"strconv"
	"time"

	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/service"
	"lumen_quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
	PlayService *service.PlayService
}

func NewQuizController(quizService *service.QuizService, playService *service.PlayService) *QuizController {
	return &QuizController{QuizService: quizService, PlayService: playService}
}

// quizSummary is the catalogue entry players see.
type quizSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toSummary(q *model.Quiz) quizSummary {
	return quizSummary{
		ID:          q.ID,
		Title:       q.Title,
		Slug:        q.Slug,
		Description: q.Description,
		Category:    q.Category,
		Image:       q.Image,
		IsPublished: q.IsPublished,
		CreatedAt:   q.CreatedAt,
	}
}

// quizDetail adds the question count and the player's next multiplier. The
// questions themselves are only served during play, one at a time.
type quizDetail struct {
	quizSummary
	QuestionCount  int      `json:"questionCount"`
	NextMultiplier *float64 `json:"nextMultiplier,omitempty"`
}

// List godoc
// @Summary Quiz catalogue
// @Description Published quizzes for players; admins also see drafts
// @Tags quizzes
// @Produce  json
// @Param   page  query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	claims := util.GetUserFromContext(ctx)
	isAdmin := claims != nil && claims.Role == model.Admin

	quizzes, total, err := c.QuizService.ListQuizzes(isAdmin, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	summaries := make([]quizSummary, 0, len(quizzes))
	for i := range quizzes {
		summaries = append(summaries, toSummary(&quizzes[i]))
	}

	util.Success(ctx, util.PageResponse{List: summaries, Total: total, Page: page, Limit: limit})
}

// Detail godoc
// @Summary Quiz detail
// @Description Metadata and question count; authenticated players also get the multiplier their next attempt would earn
// @Tags quizzes
// @Produce  json
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "Not found"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Detail(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	quiz, err := c.QuizService.GetQuizDetail(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	claims := util.GetUserFromContext(ctx)
	isAdmin := claims != nil && claims.Role == model.Admin
	if !quiz.IsPublished && !isAdmin {
		util.NotFound(ctx)
		return
	}

	detail := quizDetail{
		quizSummary:   toSummary(quiz),
		QuestionCount: len(quiz.Questions),
	}
	if claims != nil {
		if mult, err := c.PlayService.NextMultiplier(claims.UserID, quiz.ID); err == nil {
			detail.NextMultiplier = &mult
		}
	}

	util.Success(ctx, detail)
}

// AdminDetail godoc
// @Summary Quiz detail for authoring
// @Description Full quiz including questions and correct-answer flags
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/quizzes/{id} [get]
func (c *QuizController) AdminDetail(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	quiz, err := c.QuizService.GetQuizDetail(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// Create godoc
// @Summary Create a quiz
// @Tags admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.QuizInput true "Quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "Invalid payload"
// @Router /api/admin/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	var input service.QuizInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	quiz, err := c.QuizService.CreateQuiz(claims.UserID, input)
	if err != nil {
		c.writeAuthoringError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// Update godoc
// @Summary Update a quiz
// @Description Replaces the quiz metadata and its whole question set
// @Tags admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id   path int               true "Quiz ID"
// @Param   body body service.QuizInput true "Quiz"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "Invalid payload"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var input service.QuizInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(uint(id), input)
	if err != nil {
		c.writeAuthoringError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// Delete godoc
// @Summary Delete a quiz
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	if err := c.QuizService.DeleteQuiz(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Publish godoc
// @Summary Publish a quiz
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Quiz has no questions"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/quizzes/{id}/publish [post]
func (c *QuizController) Publish(ctx *gin.Context) {
	c.setPublished(ctx, true)
}

// Unpublish godoc
// @Summary Unpublish a quiz
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/quizzes/{id}/unpublish [post]
func (c *QuizController) Unpublish(ctx *gin.Context) {
	c.setPublished(ctx, false)
}

func (c *QuizController) setPublished(ctx *gin.Context, published bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	if err := c.QuizService.SetPublished(uint(id), published); err != nil {
		c.writeAuthoringError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *QuizController) writeAuthoringError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrQuizNeedsQuestions), errors.Is(err, util.ErrOneCorrectAnswer):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

package controller

import (
	"errors"
	"strconv"

	"lumen_quiz_backend/internal/gamification"
	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/internal/service"
	"lumen_quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlayController struct {
	PlayService *service.PlayService
}

func NewPlayController(playService *service.PlayService) *PlayController {
	return &PlayController{PlayService: playService}
}

// answerView hides the correct flag from players.
type answerView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type questionView struct {
	ID        uint         `json:"id"`
	Text      string       `json:"text"`
	Image     string       `json:"image,omitempty"`
	TimeLimit int          `json:"timeLimit"`
	Order     int          `json:"order"`
	Total     int64        `json:"total"`
	Answers   []answerView `json:"answers"`
}

type playStep struct {
	RawScore int          `json:"rawScore"`
	Question questionView `json:"question"`
}

func toQuestionView(q *model.Question, total int64) questionView {
	view := questionView{
		ID:        q.ID,
		Text:      q.Text,
		Image:     q.Image,
		TimeLimit: q.TimeLimit,
		Order:     q.Order,
		Total:     total,
	}
	for _, a := range q.Answers {
		view.Answers = append(view.Answers, answerView{ID: a.ID, Text: a.Text})
	}
	return view
}

func toPlayStep(served *service.ServedQuestion) playStep {
	return playStep{
		RawScore: served.State.RawScore,
		Question: toQuestionView(served.Question, served.Total),
	}
}

// Start godoc
// @Summary Start or restart an attempt
// @Description Opens a fresh attempt on the quiz and serves its first question
// @Tags play
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=object} "First question"
// @Failure 404 {object} util.Response "Quiz not found"
// @Failure 422 {object} util.Response "Quiz not playable"
// @Router /api/quizzes/{id}/play [post]
func (c *PlayController) Start(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	served, err := c.PlayService.StartAttempt(ctx.Request.Context(), claims.UserID, uint(quizID), claims.Role == model.Admin)
	if err != nil {
		c.writePlayError(ctx, err)
		return
	}
	util.Success(ctx, toPlayStep(served))
}

// Question godoc
// @Summary Current question
// @Description Re-serves the question the attempt is waiting on
// @Tags play
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "No active attempt"
// @Router /api/quizzes/{id}/question [get]
func (c *PlayController) Question(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	served, err := c.PlayService.CurrentQuestion(ctx.Request.Context(), claims.UserID, uint(quizID))
	if err != nil {
		c.writePlayError(ctx, err)
		return
	}
	util.Success(ctx, toPlayStep(served))
}

// AnswerRequest carries the chosen answer
// swagger:model AnswerRequest
type AnswerRequest struct {
	AnswerID uint `json:"answerId" binding:"required"`
}

// Answer godoc
// @Summary Submit an answer
// @Description Scores the answer against the current question; completing the last question finalizes the attempt
// @Tags play
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id   path int           true "Quiz ID"
// @Param   body body AnswerRequest true "Chosen answer"
// @Success 200 {object} util.Response{data=service.AnswerOutcome}
// @Failure 400 {object} util.Response "Answer does not belong to the question"
// @Failure 404 {object} util.Response "No active attempt"
// @Router /api/quizzes/{id}/answer [post]
func (c *PlayController) Answer(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	outcome, err := c.PlayService.SubmitAnswer(ctx.Request.Context(), claims.UserID, uint(quizID), req.AnswerID)
	if err != nil {
		c.writePlayError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}

// Abandon godoc
// @Summary Abandon an attempt
// @Description Drops the live attempt without recording a result
// @Tags play
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/play [delete]
func (c *PlayController) Abandon(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.PlayService.AbandonAttempt(ctx.Request.Context(), claims.UserID, uint(quizID)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *PlayController) writePlayError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrNoActiveAttempt), errors.Is(err, util.ErrQuestionNotFound):
		util.Error(ctx, 404, err.Error())
	case errors.Is(err, util.ErrQuizNotPlayable):
		util.Error(ctx, 422, err.Error())
	case errors.Is(err, gamification.ErrAnswerNotInQuestion):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

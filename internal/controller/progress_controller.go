package controller

import (
	"errors"
	"solveit_backend/internal/model"
	"solveit_backend/internal/service"
	"solveit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=PENDING DONE REVISING"`
}

// UpdateProgress godoc
// @Summary Set the status of a question
// @Description Marking a question DONE counts today towards the daily streak
// @Tags user
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body UpdateProgressRequest true "Question and status"
// @Success 200 {object} util.Response{data=model.ProgressUpdate} "Success"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 401 {object} util.Response "Unauthorized"
// @Failure 403 {object} util.Response "Invalid token"
// @Failure 404 {object} util.Response "Question not found"
// @Failure 503 {object} util.Response "Temporarily unavailable"
// @Router /api/user/progress [post]
func (c *ProgressController) UpdateProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	update, err := c.ProgressService.UpdateStatus(ctx.Request.Context(), claims.UserID, req.QuestionID, model.ProgressStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidStatus):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx, "Question not found")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.LogRetryableError(ctx, err)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, update)
}

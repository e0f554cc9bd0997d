package v1

import (
	"net/http"

	"go-talentmatch-backend/internal/delivery/http/response"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
}

// NewInterviewHandler registers interview routes. r must already be limited to recruiters.
func NewInterviewHandler(r *gin.RouterGroup, interviewUC domain.InterviewUsecase) {
	handler := &InterviewHandler{interviewUC: interviewUC}

	r.POST("/matches/:id/interviews", handler.Schedule)
	r.GET("/matches/:id/interviews", handler.ListByMatch)
	r.PATCH("/interviews/:id", handler.UpdateStatus)
}

type UpdateInterviewStatusRequest struct {
	Status domain.InterviewStatus `json:"status" binding:"required"`
}

// ScheduleInterview godoc
// @Summary      Schedule an interview
// @Description  Moves a pending match to interview_scheduled and emails the candidate an invitation
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path      string                           true  "Match ID"
// @Param        body  body      domain.ScheduleInterviewRequest  true  "Interview"
// @Success      201   {object}  response.Response{data=domain.Interview}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /matches/{id}/interviews [post]
// @Security     BearerAuth
func (h *InterviewHandler) Schedule(c *gin.Context) {
	matchID, err := parseUUID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req domain.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	interview, err := h.interviewUC.Schedule(c.Request.Context(), matchID, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Interview scheduled", interview)
}

// ListInterviews godoc
// @Summary      List interviews of a match
// @Tags         interviews
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  response.Response{data=[]domain.Interview}
// @Failure      404  {object}  response.Response
// @Router       /matches/{id}/interviews [get]
// @Security     BearerAuth
func (h *InterviewHandler) ListByMatch(c *gin.Context) {
	matchID, err := parseUUID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	interviews, err := h.interviewUC.ListByMatch(c.Request.Context(), matchID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interviews", interviews)
}

// UpdateInterviewStatus godoc
// @Summary      Complete or cancel an interview
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "Interview ID"
// @Param        body  body      UpdateInterviewStatusRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Interview}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /interviews/{id} [patch]
// @Security     BearerAuth
func (h *InterviewHandler) UpdateStatus(c *gin.Context) {
	id, err := parseUUID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateInterviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("status is required"))
		return
	}

	interview, err := h.interviewUC.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview updated", interview)
}

package v1

import (
	"net/http"
	"strconv"

	"go-talentmatch-backend/internal/delivery/http/response"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matchUC  domain.MatchUsecase
	pageSize int
}

// NewMatchHandler registers the matching routes. r must already be limited to recruiters.
func NewMatchHandler(r *gin.RouterGroup, matchUC domain.MatchUsecase, pageSize int, evaluateLimit gin.HandlerFunc) {
	handler := &MatchHandler{matchUC: matchUC, pageSize: pageSize}

	matches := r.Group("/matches")
	{
		matches.POST("", handler.EvaluatePair)
		matches.GET("/:id", handler.Get)
		matches.PATCH("/:id/status", handler.UpdateStatus)
	}

	jobs := r.Group("/jobs/:id")
	{
		jobs.POST("/matches/evaluate", evaluateLimit, handler.EvaluateJob)
		jobs.GET("/matches", handler.ListByJob)
		jobs.GET("/matches/export", handler.Export)
		jobs.GET("/shortlist", handler.Shortlist)
	}

	r.POST("/candidates/:id/matches/evaluate", evaluateLimit, handler.EvaluateCandidate)
}

type EvaluatePairRequest struct {
	CandidateID int64 `json:"candidate_id" binding:"required,gt=0"`
	JobID       int64 `json:"job_id" binding:"required,gt=0"`
}

type UpdateMatchStatusRequest struct {
	Status domain.MatchStatus `json:"status" binding:"required"`
}

// EvaluatePair godoc
// @Summary      Score one candidate against one job
// @Description  Creates a pending match or refreshes the score of a non-terminal one
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        body  body      EvaluatePairRequest  true  "Pair"
// @Success      200   {object}  response.Response{data=domain.Match}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /matches [post]
// @Security     BearerAuth
func (h *MatchHandler) EvaluatePair(c *gin.Context) {
	var req EvaluatePairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("candidate_id and job_id are required"))
		return
	}

	match, err := h.matchUC.EvaluatePair(c.Request.Context(), req.CandidateID, req.JobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Match evaluated", match)
}

// EvaluateJob godoc
// @Summary      Evaluate a job against every candidate
// @Tags         matches
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.EvaluationSummary}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id}/matches/evaluate [post]
// @Security     BearerAuth
func (h *MatchHandler) EvaluateJob(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	summary, err := h.matchUC.EvaluateJob(c.Request.Context(), jobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job evaluated", summary)
}

// EvaluateCandidate godoc
// @Summary      Evaluate a candidate against the caller's jobs
// @Description  Recruiters score against their own postings, admins against every job
// @Tags         matches
// @Produce      json
// @Param        id   path      int  true  "Candidate profile ID"
// @Success      200  {object}  response.Response{data=domain.EvaluationSummary}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/matches/evaluate [post]
// @Security     BearerAuth
func (h *MatchHandler) EvaluateCandidate(c *gin.Context) {
	candidateID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	summary, err := h.matchUC.EvaluateCandidate(c.Request.Context(), candidateID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate evaluated", summary)
}

// ListByJob godoc
// @Summary      Ranked matches of a job
// @Description  Ordered by score desc, then creation time, then id. Pass next_cursor back as cursor for the next page.
// @Tags         matches
// @Produce      json
// @Param        id         path      int     true   "Job ID"
// @Param        status     query     string  false  "Comma separated statuses"
// @Param        min_score  query     int     false  "Minimum score"
// @Param        limit      query     int     false  "Page size"
// @Param        cursor     query     string  false  "Cursor from the previous page"
// @Success      200        {object}  response.Response{data=MatchPage}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /jobs/{id}/matches [get]
// @Security     BearerAuth
func (h *MatchHandler) ListByJob(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	filter, limit, err := parseMatchQuery(c, h.pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	seq, err := h.matchUC.ListByJob(c.Request.Context(), jobID, filter)
	if err != nil {
		c.Error(err)
		return
	}
	page, next, err := domain.TakeMatches(seq, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job matches", newMatchPage(page, next))
}

// Shortlist godoc
// @Summary      Shortlist of a job
// @Description  Non-rejected matches at or above min_score (0-100, defaults to the configured threshold)
// @Tags         matches
// @Produce      json
// @Param        id         path      int  true   "Job ID"
// @Param        min_score  query     int  false  "Minimum score"
// @Success      200        {object}  response.Response{data=[]domain.Match}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /jobs/{id}/shortlist [get]
// @Security     BearerAuth
func (h *MatchHandler) Shortlist(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var minScore *int
	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(apperror.BadRequest("min_score must be an integer"))
			return
		}
		minScore = &v
	}

	shortlist, err := h.matchUC.Shortlist(c.Request.Context(), jobID, minScore)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Shortlist", shortlist)
}

// Export godoc
// @Summary      Export matches of a job
// @Tags         matches
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        id      path      int     true   "Job ID"
// @Param        format  query     string  false  "xlsx (default) or csv"
// @Success      200     {file}    binary
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /jobs/{id}/matches/export [get]
// @Security     BearerAuth
func (h *MatchHandler) Export(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	data, filename, err := h.matchUC.ExportByJob(c.Request.Context(), jobID, format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv"
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// GetMatch godoc
// @Summary      Get a match
// @Tags         matches
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  response.Response{data=domain.Match}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /matches/{id} [get]
// @Security     BearerAuth
func (h *MatchHandler) Get(c *gin.Context) {
	id, err := parseUUID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	match, err := h.matchUC.GetMatch(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Match details", match)
}

// UpdateStatus godoc
// @Summary      Move a match through its lifecycle
// @Description  pending → interview_scheduled → accepted | rejected | hired. Terminal statuses are final.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Match ID"
// @Param        body  body      UpdateMatchStatusRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Match}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /matches/{id}/status [patch]
// @Security     BearerAuth
func (h *MatchHandler) UpdateStatus(c *gin.Context) {
	id, err := parseUUID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateMatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("status is required"))
		return
	}

	match, err := h.matchUC.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Match status updated", match)
}

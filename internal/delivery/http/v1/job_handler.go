package v1

import (
	"net/http"
	"strconv"

	"go-talentmatch-backend/internal/delivery/http/middleware"
	"go-talentmatch-backend/internal/delivery/http/response"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	jobs := protected.Group("/jobs")
	{
		jobs.GET("", handler.List)
		jobs.GET("/:id", handler.GetDetails)
		jobs.POST("", middleware.RequireRecruiter(), handler.Create)
		// Ownership is checked in the usecase
		jobs.PUT("/:id", middleware.RequireRecruiter(), handler.Update)
		jobs.DELETE("/:id", middleware.RequireRecruiter(), handler.Delete)
	}
}

type JobRequest struct {
	Title          string   `json:"title" binding:"required"`
	Company        string   `json:"company" binding:"required"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills" binding:"required"`
}

func (r JobRequest) toJob() *domain.Job {
	return &domain.Job{
		Title:          r.Title,
		Company:        r.Company,
		Description:    r.Description,
		RequiredSkills: r.RequiredSkills,
	}
}

// CreateJob godoc
// @Summary      Create a new job
// @Description  Create a job posting (recruiter only). Required skills are normalized.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	job := req.toJob()
	if err := h.jobUC.CreateJob(c.Request.Context(), job); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Job created", job)
}

// ListJobs godoc
// @Summary      List jobs
// @Description  Get a page of jobs, newest first
// @Tags         jobs
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response{data=domain.PaginatedResult[domain.Job]}
// @Router       /jobs [get]
// @Security     BearerAuth
func (h *JobHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	result, err := h.jobUC.ListJobs(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job list", result)
}

// GetJobDetails godoc
// @Summary      Get job details
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) GetDetails(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	job, err := h.jobUC.GetJob(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job details", job)
}

// UpdateJob godoc
// @Summary      Update a job
// @Description  Update a job posting (owner or admin). Changing required_skills rescores pending and interview_scheduled matches; closed matches keep their score.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      int         true  "Job ID"
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	job := req.toJob()
	job.ID = id
	if err := h.jobUC.UpdateJob(c.Request.Context(), job); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job updated successfully", job)
}

// DeleteJob godoc
// @Summary      Delete a job
// @Description  Permanently delete a job posting and its matches (owner or admin)
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.jobUC.DeleteJob(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job deleted successfully", nil)
}

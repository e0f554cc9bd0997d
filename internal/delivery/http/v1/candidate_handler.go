package v1

import (
	"net/http"

	"go-talentmatch-backend/internal/delivery/http/middleware"
	"go-talentmatch-backend/internal/delivery/http/response"
	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC    domain.CandidateUsecase
	matchUC        domain.MatchUsecase
	maxResumeBytes int64
	pageSize       int
}

func NewCandidateHandler(
	r *gin.RouterGroup,
	candidateUC domain.CandidateUsecase,
	matchUC domain.MatchUsecase,
	maxResumeBytes int64,
	pageSize int,
	uploadLimit gin.HandlerFunc,
) {
	handler := &CandidateHandler{
		candidateUC:    candidateUC,
		matchUC:        matchUC,
		maxResumeBytes: maxResumeBytes,
		pageSize:       pageSize,
	}

	me := r.Group("/candidates/me", middleware.RequireRole(domain.RoleCandidate))
	{
		me.GET("", handler.GetProfile)
		me.PUT("", handler.SaveProfile)
		me.DELETE("", handler.DeleteProfile)
		me.POST("/resume", uploadLimit, handler.UploadResume)
		me.GET("/matches", handler.ListMyMatches)
	}
}

// SaveProfileRequest is the editable part of a candidate profile.
type SaveProfileRequest struct {
	FullName       string              `json:"full_name"`
	Email          string              `json:"email"`
	Skills         []string            `json:"skills"`
	Education      []domain.Education  `json:"education"`
	Experience     []domain.Experience `json:"experience"`
	Certifications []string            `json:"certifications"`
}

// GetProfile godoc
// @Summary      Get candidate profile
// @Description  Get the profile of the currently logged-in candidate
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CandidateProfile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/me [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profile, err := h.candidateUC.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate profile", profile)
}

// SaveProfile godoc
// @Summary      Create or update candidate profile
// @Description  Skills are normalized before they are stored
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        profile  body      SaveProfileRequest  true  "Profile JSON"
// @Success      200      {object}  response.Response{data=domain.CandidateProfile}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /candidates/me [put]
// @Security     BearerAuth
func (h *CandidateHandler) SaveProfile(c *gin.Context) {
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile := &domain.CandidateProfile{
		UserID:         c.GetString(string(domain.KeyUserID)),
		FullName:       req.FullName,
		Email:          req.Email,
		Skills:         req.Skills,
		Education:      req.Education,
		Experience:     req.Experience,
		Certifications: req.Certifications,
	}

	saved, err := h.candidateUC.SaveProfile(c.Request.Context(), profile)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate profile saved", saved)
}

// DeleteProfile godoc
// @Summary      Delete candidate profile
// @Description  Deletes the profile together with all of its matches
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/me [delete]
// @Security     BearerAuth
func (h *CandidateHandler) DeleteProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.candidateUC.DeleteProfile(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate profile deleted", nil)
}

// UploadResume godoc
// @Summary      Upload résumé
// @Description  Stores a PDF or Word résumé and records its URL on the profile
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Résumé file"
// @Success      200   {object}  response.Response{data=domain.CandidateProfile}
// @Failure      400   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /candidates/me/resume [post]
// @Security     BearerAuth
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	if h.maxResumeBytes > 0 {
		// Multipart overhead on top of the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxResumeBytes+1<<20)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("A résumé file is required in the \"file\" field"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Could not read uploaded file"))
		return
	}
	defer file.Close()

	upload := domain.ResumeUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	}

	userID := c.GetString(string(domain.KeyUserID))
	profile, err := h.candidateUC.UploadResume(c.Request.Context(), userID, upload)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Résumé uploaded", profile)
}

// ListMyMatches godoc
// @Summary      List my matches
// @Description  Matches of the logged-in candidate, best score first
// @Tags         candidates
// @Produce      json
// @Param        status     query     string  false  "Comma separated statuses"
// @Param        min_score  query     int     false  "Minimum score"
// @Param        limit      query     int     false  "Page size"
// @Param        cursor     query     string  false  "Cursor from the previous page"
// @Success      200        {object}  response.Response{data=MatchPage}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /candidates/me/matches [get]
// @Security     BearerAuth
func (h *CandidateHandler) ListMyMatches(c *gin.Context) {
	ctx := c.Request.Context()

	filter, limit, err := parseMatchQuery(c, h.pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.candidateUC.GetProfile(ctx, c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	seq, err := h.matchUC.ListByCandidate(ctx, profile.ID, filter)
	if err != nil {
		c.Error(err)
		return
	}
	page, next, err := domain.TakeMatches(seq, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate matches", newMatchPage(page, next))
}

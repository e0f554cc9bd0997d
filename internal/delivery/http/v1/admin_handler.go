package v1

import (
	"net/http"

	"go-talentmatch-backend/internal/delivery/http/middleware"
	"go-talentmatch-backend/internal/delivery/http/response"
	"go-talentmatch-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	statsUC domain.StatsUsecase
}

func NewAdminHandler(r *gin.RouterGroup, statsUC domain.StatsUsecase) {
	handler := &AdminHandler{statsUC: statsUC}

	admin := r.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/stats", handler.GetStats)
	}
}

// GetStats godoc
// @Summary      Dashboard statistics
// @Description  Totals and match score distribution. Served from cache for a short TTL.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Stats}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/stats [get]
// @Security     BearerAuth
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.statsUC.GetStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Dashboard statistics", stats)
}

package v1

import (
	"strconv"
	"strings"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxMatchPageSize = 500

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid ID format")
	}
	return id, nil
}

func parseUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid ID format")
	}
	return id, nil
}

// parseMatchQuery reads status, min_score, cursor and limit for match lists.
// status accepts a comma separated list.
func parseMatchQuery(c *gin.Context, defaultLimit int) (domain.MatchFilter, int, error) {
	var filter domain.MatchFilter

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.MatchStatus(strings.TrimSpace(s)))
		}
	}
	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, 0, apperror.BadRequest("min_score must be an integer")
		}
		filter.MinScore = v
	}
	if raw := c.Query("cursor"); raw != "" {
		cursor, err := domain.DecodeMatchCursor(raw)
		if err != nil {
			return filter, 0, apperror.BadRequest("Invalid cursor")
		}
		filter.After = cursor
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return filter, 0, apperror.BadRequest("limit must be a positive integer")
		}
		limit = v
	}
	if limit > maxMatchPageSize {
		limit = maxMatchPageSize
	}
	return filter, limit, nil
}

// MatchPage is one page of a ranked match list.
type MatchPage struct {
	Matches    []domain.Match `json:"matches"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func newMatchPage(matches []domain.Match, next *domain.MatchCursor) MatchPage {
	page := MatchPage{Matches: matches}
	if next != nil {
		page.NextCursor = next.Encode()
	}
	return page
}

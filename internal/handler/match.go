package handler

import (
	"net/http"
	"strconv"

	"github.com/ChalithH/SkillForge/internal/service"
	"github.com/ChalithH/SkillForge/internal/util"

	"github.com/gin-gonic/gin"
)

// MatchHandler serves browse/recommendation queries.
type MatchHandler struct {
	Matching *service.MatchingService
}

func NewMatchHandler(matching *service.MatchingService) *MatchHandler {
	return &MatchHandler{Matching: matching}
}

// BrowseUsers lists offering users matching the query filters.
// ?category=&skill=&min_rating=&online=&page=&limit=
func (h *MatchHandler) BrowseUsers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	opts := service.BrowseOptions{
		Category:  c.Query("category"),
		SkillName: c.Query("skill"),
	}
	if s := c.Query("min_rating"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 5 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "min_rating must be between 0 and 5")
			return
		}
		opts.MinRating = &v
	}
	if s := c.Query("online"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "online must be a boolean")
			return
		}
		opts.IsOnline = &v
	}
	opts.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	opts.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	page, err := h.Matching.BrowseUsers(user.ID, opts)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"matches": page.Matches,
		"total":   page.Total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}

// GetMatchDetails returns the full match view of one user.
func (h *MatchHandler) GetMatchDetails(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	match, err := h.Matching.GetUserMatchDetails(targetID, user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"match": match,
	})
}

// GetRecommended returns users offering what the caller wants to learn.
func (h *MatchHandler) GetRecommended(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	matches, err := h.Matching.GetRecommendedMatches(user.ID, limit)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"matches": matches,
	})
}

// GetTopRated returns the highest-rated users, optionally per category.
func (h *MatchHandler) GetTopRated(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	matches, err := h.Matching.GetTopRatedUsers(c.Query("category"), limit)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"matches": matches,
	})
}

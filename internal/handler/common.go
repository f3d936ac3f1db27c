package handler

import (
	"net/http"
	"strconv"

	"github.com/ChalithH/SkillForge/internal/models"
	"github.com/ChalithH/SkillForge/internal/service"
	"github.com/ChalithH/SkillForge/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user set by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// fail maps a service error to the response envelope. Non-service errors are
// infrastructure failures and come back as 500.
func fail(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindInvalidArgument:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case service.KindNotFound:
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case service.KindInvalidOperation:
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case service.KindConflict:
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}

// formatCentToCredits renders credit-cents as a decimal credit string,
// two decimals (e.g. 250 -> "2.50").
func formatCentToCredits(amountCent int64) string {
	return strconv.FormatFloat(float64(amountCent)/100.0, 'f', 2, 64)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

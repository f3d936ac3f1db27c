package handler

import (
	"net/http"

	"github.com/ChalithH/SkillForge/internal/models"
	"github.com/ChalithH/SkillForge/internal/service"
	"github.com/ChalithH/SkillForge/internal/util"

	"github.com/gin-gonic/gin"
)

// SkillHandler serves the skill catalogue, user skills and reviews.
type SkillHandler struct {
	Skills *service.SkillService
}

func NewSkillHandler(skills *service.SkillService) *SkillHandler {
	return &SkillHandler{Skills: skills}
}

type createSkillReq struct {
	Name        string `json:"name" binding:"required,max=64"`
	Category    string `json:"category" binding:"required,max=64"`
	Description string `json:"description" binding:"max=512"`
}

func (h *SkillHandler) CreateSkill(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req createSkillReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	skill, err := h.Skills.CreateSkill(req.Name, req.Category, req.Description)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"skill": skill,
	})
}

func (h *SkillHandler) ListSkills(c *gin.Context) {
	skills, err := h.Skills.ListSkills(c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"skills": skills,
	})
}

type addUserSkillReq struct {
	SkillID     uint   `json:"skill_id" binding:"required"`
	Proficiency int    `json:"proficiency" binding:"max=5"`
	IsOffering  bool   `json:"is_offering"`
	Description string `json:"description" binding:"max=255"`
}

func userSkillPayload(us *models.UserSkill) gin.H {
	return gin.H{
		"id":          us.ID,
		"skill_id":    us.SkillID,
		"skill":       us.Skill,
		"proficiency": us.Proficiency,
		"is_offering": us.IsOffering,
		"description": us.Description,
	}
}

// AddUserSkill links a skill to the current user; repeating the same skill
// updates the link in place.
func (h *SkillHandler) AddUserSkill(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req addUserSkillReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	us, err := h.Skills.AddUserSkill(user.ID, req.SkillID, req.Proficiency, req.IsOffering, req.Description)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"user_skill": userSkillPayload(us),
	})
}

func (h *SkillHandler) ListMySkills(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.Skills.ListUserSkills(user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, userSkillPayload(&list[i]))
	}

	util.Success(c, util.Response{
		"user_skills": items,
	})
}

func (h *SkillHandler) RemoveUserSkill(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skillID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.Skills.RemoveUserSkill(user.ID, skillID); err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "removed",
	})
}

type createReviewReq struct {
	ExchangeID uint   `json:"exchange_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment" binding:"max=512"`
}

func (h *SkillHandler) CreateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	review, err := h.Skills.CreateReview(req.ExchangeID, user.ID, req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"review": review,
	})
}

func (h *SkillHandler) ListUserReviews(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.Skills.GetUserReviews(userID)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"reviews": reviews,
	})
}

package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/ChalithH/SkillForge/internal/models"

	"gorm.io/gorm"
)

// maxBrowseLimit caps page sizes on every matching query regardless of what
// the caller asks for.
const maxBrowseLimit = 50

// PresenceReader is the slice of the presence tracker the matching engine
// needs; injected so tests can fake it.
type PresenceReader interface {
	IsUserOnline(userID uint) bool
}

// MatchSkill is a user's skill as shown in match results.
type MatchSkill struct {
	SkillID     uint   `json:"skill_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency int    `json:"proficiency"`
	IsOffering  bool   `json:"is_offering"`
	Description string `json:"description,omitempty"`
}

// UserMatch is a candidate returned by browse/recommendation queries.
// AvgRating is 0.0 when the user has no reviews; since ratings are 1-5 the
// zero is unambiguous.
type UserMatch struct {
	UserID          uint         `json:"user_id"`
	Name            string       `json:"name"`
	Bio             string       `json:"bio,omitempty"`
	ProfileImageURL string       `json:"profile_image_url,omitempty"`
	AvgRating       float64      `json:"avg_rating"`
	ReviewCount     int          `json:"review_count"`
	IsOnline        bool         `json:"is_online"`
	MutualInterest  bool         `json:"mutual_interest,omitempty"`
	Skills          []MatchSkill `json:"skills"`
}

// BrowseOptions filters BrowseUsers. MinRating and IsOnline are pointers so
// "unset" is distinguishable from zero values.
type BrowseOptions struct {
	Category  string
	SkillName string
	MinRating *float64
	IsOnline  *bool
	Page      int
	Limit     int
}

// BrowsePage is one page of browse results; Total counts matches after all
// filters, before pagination.
type BrowsePage struct {
	Matches []UserMatch `json:"matches"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// MatchingService answers read-only browse, detail and recommendation
// queries over the user/skill/review graph.
type MatchingService struct {
	db       *gorm.DB
	presence PresenceReader
}

func NewMatchingService(db *gorm.DB, presence PresenceReader) *MatchingService {
	return &MatchingService{db: db, presence: presence}
}

type ratingAgg struct {
	ReviewedID uint
	Avg        float64
	Count      int
}

// ratingsFor aggregates received-review stats for a set of users in one query.
func (m *MatchingService) ratingsFor(userIDs []uint) (map[uint]ratingAgg, error) {
	out := make(map[uint]ratingAgg, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var aggs []ratingAgg
	err := m.db.Model(&models.Review{}).
		Select("reviewed_id, AVG(rating) AS avg, COUNT(*) AS count").
		Where("reviewed_id IN ?", userIDs).
		Group("reviewed_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}
	for _, a := range aggs {
		out[a.ReviewedID] = a
	}
	return out, nil
}

// skillsFor loads user skills (optionally only offered ones) for a set of
// users, keyed by user id.
func (m *MatchingService) skillsFor(userIDs []uint, offeredOnly bool) (map[uint][]MatchSkill, error) {
	out := make(map[uint][]MatchSkill, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	q := m.db.Model(&models.UserSkill{}).
		Select("user_skills.user_id, user_skills.skill_id, skills.name, skills.category, user_skills.proficiency, user_skills.is_offering, user_skills.description").
		Joins("JOIN skills ON skills.id = user_skills.skill_id").
		Where("user_skills.user_id IN ?", userIDs).
		Order("skills.name ASC")
	if offeredOnly {
		q = q.Where("user_skills.is_offering = ?", true)
	}

	var rows []struct {
		UserID      uint
		SkillID     uint
		Name        string
		Category    string
		Proficiency int
		IsOffering  bool
		Description string
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.UserID] = append(out[r.UserID], MatchSkill{
			SkillID:     r.SkillID,
			Name:        r.Name,
			Category:    r.Category,
			Proficiency: r.Proficiency,
			IsOffering:  r.IsOffering,
			Description: r.Description,
		})
	}
	return out, nil
}

func (m *MatchingService) buildMatches(users []models.User, offeredOnly bool) ([]UserMatch, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	ratings, err := m.ratingsFor(ids)
	if err != nil {
		return nil, err
	}
	skills, err := m.skillsFor(ids, offeredOnly)
	if err != nil {
		return nil, err
	}

	matches := make([]UserMatch, 0, len(users))
	for _, u := range users {
		agg := ratings[u.ID]
		matches = append(matches, UserMatch{
			UserID:          u.ID,
			Name:            u.Name,
			Bio:             u.Bio,
			ProfileImageURL: u.ProfileImageURL,
			AvgRating:       agg.Avg,
			ReviewCount:     agg.Count,
			IsOnline:        m.presence.IsUserOnline(u.ID),
			Skills:          skills[u.ID],
		})
	}
	return matches, nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxBrowseLimit {
		return maxBrowseLimit
	}
	return limit
}

// BrowseUsers lists users offering at least one skill matching the filters,
// excluding the caller. Rating and presence filters apply after aggregation;
// pagination applies last. Results are ordered by name ascending.
func (m *MatchingService) BrowseUsers(currentUserID uint, opts BrowseOptions) (*BrowsePage, error) {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := clampLimit(opts.Limit, 20)

	q := m.db.Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN user_skills ON user_skills.user_id = users.id AND user_skills.is_offering = ?", true).
		Joins("JOIN skills ON skills.id = user_skills.skill_id").
		Where("users.id <> ?", currentUserID)
	if opts.Category != "" {
		q = q.Where("skills.category = ?", opts.Category)
	}
	if opts.SkillName != "" {
		q = q.Where("LOWER(skills.name) LIKE ?", "%"+strings.ToLower(opts.SkillName)+"%")
	}

	var users []models.User
	if err := q.Order("users.name ASC, users.id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	matches, err := m.buildMatches(users, true)
	if err != nil {
		return nil, err
	}

	filtered := matches[:0]
	for _, mt := range matches {
		if opts.MinRating != nil && mt.AvgRating < *opts.MinRating {
			continue
		}
		if opts.IsOnline != nil && mt.IsOnline != *opts.IsOnline {
			continue
		}
		filtered = append(filtered, mt)
	}

	total := len(filtered)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &BrowsePage{
		Matches: filtered[start:end],
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// GetUserMatchDetails returns the full match view of one user: all skills
// (offered and wanted), rating stats, presence, and whether the target
// offers anything the caller wants to learn.
func (m *MatchingService) GetUserMatchDetails(targetUserID, currentUserID uint) (*UserMatch, error) {
	var target models.User
	if err := m.db.First(&target, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("user not found")
		}
		return nil, err
	}

	matches, err := m.buildMatches([]models.User{target}, false)
	if err != nil {
		return nil, err
	}
	match := matches[0]

	wanted, err := m.learningSkillIDs(currentUserID)
	if err != nil {
		return nil, err
	}
	for _, sk := range match.Skills {
		if sk.IsOffering && wanted[sk.SkillID] {
			match.MutualInterest = true
			break
		}
	}
	return &match, nil
}

func (m *MatchingService) learningSkillIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := m.db.Model(&models.UserSkill{}).
		Where("user_id = ? AND is_offering = ?", userID, false).
		Pluck("skill_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// GetRecommendedMatches finds users offering skills the caller wants to
// learn, best overlap first. Callers with no learning interests get the
// top-rated listing instead.
func (m *MatchingService) GetRecommendedMatches(userID uint, limit int) ([]UserMatch, error) {
	limit = clampLimit(limit, 10)

	wanted, err := m.learningSkillIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(wanted) == 0 {
		return m.GetTopRatedUsers("", limit)
	}

	wantedIDs := make([]uint, 0, len(wanted))
	for id := range wanted {
		wantedIDs = append(wantedIDs, id)
	}

	var users []models.User
	err = m.db.Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN user_skills ON user_skills.user_id = users.id AND user_skills.is_offering = ?", true).
		Where("user_skills.skill_id IN ?", wantedIDs).
		Where("users.id <> ?", userID).
		Order("users.name ASC, users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	matches, err := m.buildMatches(users, true)
	if err != nil {
		return nil, err
	}

	// overlap = how many of the caller's wanted skills each candidate offers
	overlap := make(map[uint]int, len(matches))
	for _, mt := range matches {
		for _, sk := range mt.Skills {
			if wanted[sk.SkillID] {
				overlap[mt.UserID]++
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if overlap[matches[i].UserID] != overlap[matches[j].UserID] {
			return overlap[matches[i].UserID] > overlap[matches[j].UserID]
		}
		return matches[i].AvgRating > matches[j].AvgRating
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// GetTopRatedUsers lists users with at least one received review, ordered by
// average rating descending, ties broken by review count descending.
// category restricts to users offering a skill in that category.
func (m *MatchingService) GetTopRatedUsers(category string, limit int) ([]UserMatch, error) {
	limit = clampLimit(limit, 10)

	q := m.db.Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN reviews ON reviews.reviewed_id = users.id")
	if category != "" {
		q = q.Joins("JOIN user_skills ON user_skills.user_id = users.id AND user_skills.is_offering = ?", true).
			Joins("JOIN skills ON skills.id = user_skills.skill_id AND skills.category = ?", category)
	}

	var users []models.User
	if err := q.Order("users.name ASC, users.id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	matches, err := m.buildMatches(users, true)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].AvgRating != matches[j].AvgRating {
			return matches[i].AvgRating > matches[j].AvgRating
		}
		return matches[i].ReviewCount > matches[j].ReviewCount
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

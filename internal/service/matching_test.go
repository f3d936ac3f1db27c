package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMatching(t *testing.T, online fakePresence) (*MatchingService, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewMatchingService(db, online), db
}

func TestBrowseUsers_ExcludesCallerAndFilters(t *testing.T) {
	online := fakePresence{}
	m, db := newMatching(t, online)

	caller := createUser(t, db, "Caller", 0)
	anna := createUser(t, db, "Anna", 0)
	ben := createUser(t, db, "Ben", 0)
	cara := createUser(t, db, "Cara", 0)

	python := createSkill(t, db, "Python", "programming")
	guitar := createSkill(t, db, "Guitar", "music")

	addUserSkill(t, db, caller.ID, python.ID, true, 5)
	addUserSkill(t, db, anna.ID, python.ID, true, 4)
	addUserSkill(t, db, ben.ID, guitar.ID, true, 3)
	addUserSkill(t, db, cara.ID, python.ID, false, 2) // learning, not offering

	page, err := m.BrowseUsers(caller.ID, BrowseOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	// name ascending, caller excluded even though they offer python
	require.Equal(t, anna.ID, page.Matches[0].UserID)
	require.Equal(t, ben.ID, page.Matches[1].UserID)

	page, err = m.BrowseUsers(caller.ID, BrowseOptions{Category: "music"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, ben.ID, page.Matches[0].UserID)

	page, err = m.BrowseUsers(caller.ID, BrowseOptions{SkillName: "pyth"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, anna.ID, page.Matches[0].UserID)
}

func TestBrowseUsers_LimitClampedTo50(t *testing.T) {
	m, db := newMatching(t, fakePresence{})

	caller := createUser(t, db, "Caller", 0)
	skill := createSkill(t, db, "Chess", "games")
	for i := 0; i < 60; i++ {
		u := createUser(t, db, fmt.Sprintf("User%03d", i), 0)
		addUserSkill(t, db, u.ID, skill.ID, true, 3)
	}

	page, err := m.BrowseUsers(caller.ID, BrowseOptions{Limit: 100})
	require.NoError(t, err)
	require.Equal(t, 50, page.Limit)
	require.Len(t, page.Matches, 50)
	require.Equal(t, 60, page.Total)

	second, err := m.BrowseUsers(caller.ID, BrowseOptions{Limit: 100, Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Matches, 10)
}

func TestBrowseUsers_MinRatingAppliesAfterAggregation(t *testing.T) {
	m, db := newMatching(t, fakePresence{})

	caller := createUser(t, db, "Caller", 0)
	good := createUser(t, db, "Good", 0)
	bad := createUser(t, db, "Meh", 0)
	unrated := createUser(t, db, "Newbie", 0)

	skill := createSkill(t, db, "Yoga", "fitness")
	addUserSkill(t, db, good.ID, skill.ID, true, 5)
	addUserSkill(t, db, bad.ID, skill.ID, true, 5)
	addUserSkill(t, db, unrated.ID, skill.ID, true, 5)

	addReview(t, db, 1, caller.ID, good.ID, 5)
	addReview(t, db, 2, caller.ID, good.ID, 4)
	addReview(t, db, 3, caller.ID, bad.ID, 2)

	min := 4.5
	page, err := m.BrowseUsers(caller.ID, BrowseOptions{MinRating: &min})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, good.ID, page.Matches[0].UserID)
	require.InDelta(t, 4.5, page.Matches[0].AvgRating, 0.001)
	require.Equal(t, 2, page.Matches[0].ReviewCount)

	// users without reviews read as 0.0, not filtered out without min_rating
	page, err = m.BrowseUsers(caller.ID, BrowseOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	for _, match := range page.Matches {
		if match.UserID == unrated.ID {
			require.Zero(t, match.AvgRating)
			require.Zero(t, match.ReviewCount)
		}
	}
}

func TestBrowseUsers_OnlineFilter(t *testing.T) {
	online := fakePresence{}
	m, db := newMatching(t, online)

	caller := createUser(t, db, "Caller", 0)
	here := createUser(t, db, "Here", 0)
	away := createUser(t, db, "Away", 0)

	skill := createSkill(t, db, "Sketching", "art")
	addUserSkill(t, db, here.ID, skill.ID, true, 3)
	addUserSkill(t, db, away.ID, skill.ID, true, 3)
	online[here.ID] = true

	wantOnline := true
	page, err := m.BrowseUsers(caller.ID, BrowseOptions{IsOnline: &wantOnline})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, here.ID, page.Matches[0].UserID)
	require.True(t, page.Matches[0].IsOnline)

	wantOffline := false
	page, err = m.BrowseUsers(caller.ID, BrowseOptions{IsOnline: &wantOffline})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, away.ID, page.Matches[0].UserID)
}

func TestGetUserMatchDetails(t *testing.T) {
	m, db := newMatching(t, fakePresence{})

	caller := createUser(t, db, "Caller", 0)
	target := createUser(t, db, "Target", 0)

	python := createSkill(t, db, "Python", "programming")
	guitar := createSkill(t, db, "Guitar", "music")
	addUserSkill(t, db, target.ID, python.ID, true, 5)
	addUserSkill(t, db, target.ID, guitar.ID, false, 2)
	addUserSkill(t, db, caller.ID, python.ID, false, 1) // caller wants python

	addReview(t, db, 1, caller.ID, target.ID, 4)

	match, err := m.GetUserMatchDetails(target.ID, caller.ID)
	require.NoError(t, err)
	require.Equal(t, target.ID, match.UserID)
	require.Len(t, match.Skills, 2) // all skills, not just offered
	require.InDelta(t, 4.0, match.AvgRating, 0.001)
	require.True(t, match.MutualInterest)

	_, err = m.GetUserMatchDetails(9999, caller.ID)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestGetRecommendedMatches(t *testing.T) {
	m, db := newMatching(t, fakePresence{})

	caller := createUser(t, db, "Caller", 0)
	twoHits := createUser(t, db, "TwoHits", 0)
	oneHit := createUser(t, db, "OneHit", 0)
	noHit := createUser(t, db, "NoHit", 0)

	python := createSkill(t, db, "Python", "programming")
	guitar := createSkill(t, db, "Guitar", "music")
	chess := createSkill(t, db, "Chess", "games")

	addUserSkill(t, db, caller.ID, python.ID, false, 1)
	addUserSkill(t, db, caller.ID, guitar.ID, false, 1)

	addUserSkill(t, db, twoHits.ID, python.ID, true, 4)
	addUserSkill(t, db, twoHits.ID, guitar.ID, true, 4)
	addUserSkill(t, db, oneHit.ID, python.ID, true, 5)
	addUserSkill(t, db, noHit.ID, chess.ID, true, 5)

	matches, err := m.GetRecommendedMatches(caller.ID, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	// best overlap first
	require.Equal(t, twoHits.ID, matches[0].UserID)
	require.Equal(t, oneHit.ID, matches[1].UserID)
}

// A caller with no learning interests gets the top-rated listing.
func TestGetRecommendedMatches_FallsBackToTopRated(t *testing.T) {
	m, db := newMatching(t, fakePresence{})

	caller := createUser(t, db, "Caller", 0)
	rated := createUser(t, db, "Rated", 0)
	skill := createSkill(t, db, "Chess", "games")
	addUserSkill(t, db, rated.ID, skill.ID, true, 4)
	addReview(t, db, 1, caller.ID, rated.ID, 5)

	recommended, err := m.GetRecommendedMatches(caller.ID, 10)
	require.NoError(t, err)
	topRated, err := m.GetTopRatedUsers("", 10)
	require.NoError(t, err)

	require.Equal(t, len(topRated), len(recommended))
	for i := range topRated {
		require.Equal(t, topRated[i].UserID, recommended[i].UserID)
	}
}

func TestGetTopRatedUsers(t *testing.T) {
	m, db := newMatching(t, fakePresence{})

	reviewer := createUser(t, db, "Reviewer", 0)
	high := createUser(t, db, "High", 0)
	mid := createUser(t, db, "Mid", 0)
	midMore := createUser(t, db, "MidMore", 0)
	unrated := createUser(t, db, "Unrated", 0)

	skill := createSkill(t, db, "Cooking", "food")
	for _, u := range []uint{high.ID, mid.ID, midMore.ID, unrated.ID} {
		addUserSkill(t, db, u, skill.ID, true, 3)
	}

	addReview(t, db, 1, reviewer.ID, high.ID, 5)
	addReview(t, db, 2, reviewer.ID, mid.ID, 3)
	addReview(t, db, 3, reviewer.ID, midMore.ID, 3)
	addReview(t, db, 4, reviewer.ID, midMore.ID, 3)

	matches, err := m.GetTopRatedUsers("", 10)
	require.NoError(t, err)
	require.Len(t, matches, 3) // unrated users never appear

	require.Equal(t, high.ID, matches[0].UserID)
	// equal averages: more reviews wins
	require.Equal(t, midMore.ID, matches[1].UserID)
	require.Equal(t, mid.ID, matches[2].UserID)

	limited, err := m.GetTopRatedUsers("", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	none, err := m.GetTopRatedUsers("music", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

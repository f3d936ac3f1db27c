package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ChalithH/SkillForge/internal/config"
	"github.com/ChalithH/SkillForge/internal/database"
	"github.com/ChalithH/SkillForge/internal/notify"
	"github.com/ChalithH/SkillForge/internal/presence"
	"github.com/ChalithH/SkillForge/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)
	notifier := notify.NewLogNotifier(log)

	tracker := presence.NewTracker()
	ledger := service.NewCreditLedger(db, log, notifier)
	exchanges := service.NewExchangeService(db, log, ledger, notifier)
	matching := service.NewMatchingService(db, tracker)
	skills := service.NewSkillService(db, log)

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.BcryptCost = bcrypt.MinCost

	return SetupRouter(cfg, Deps{
		DB:       db,
		Log:      log,
		Tracker:  tracker,
		Ledger:   ledger,
		Exchange: exchanges,
		Matching: matching,
		Skills:   skills,
	})
}

func httpDo(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope mirrors the unified response body.
type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func registerAndLogin(t *testing.T, r *gin.Engine, name string) (token string, userID uint) {
	t.Helper()
	email := fmt.Sprintf("%s@example.com", name)

	w := httpDo(t, r, "POST", "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httpDo(t, r, "POST", "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w).Data
	token = data["token"].(string)
	user := data["user"].(map[string]interface{})
	return token, uint(user["id"].(float64))
}

func grantCredits(t *testing.T, r *gin.Engine, token string, userID uint, amountCent int64) {
	t.Helper()
	w := httpDo(t, r, "POST", "/api/credits/add", token, gin.H{
		"user_id":     userID,
		"amount_cent": amountCent,
		"reason":      "starter grant",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func balanceCent(t *testing.T, r *gin.Engine, token string) int64 {
	t.Helper()
	w := httpDo(t, r, "GET", "/api/credits", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return int64(decode(t, w).Data["credit_cent"].(float64))
}

func TestRegisterValidation(t *testing.T) {
	r := setupServer(t)

	w := httpDo(t, r, "POST", "/api/auth/register", "", gin.H{
		"name": "NoCreds",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httpDo(t, r, "POST", "/api/auth/register", "", gin.H{
		"name":     "Weak",
		"email":    "weak@example.com",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httpDo(t, r, "POST", "/api/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// duplicate email
	w = httpDo(t, r, "POST", "/api/auth/register", "", gin.H{
		"name":     "Alice Again",
		"email":    "ALICE@example.com",
		"password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setupServer(t)

	for _, path := range []string{"/api/me", "/api/credits", "/api/exchanges", "/api/matches"} {
		w := httpDo(t, r, "GET", path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := httpDo(t, r, "GET", "/api/me", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExchangeLifecycleOverHTTP(t *testing.T) {
	r := setupServer(t)

	offererToken, offererID := registerAndLogin(t, r, "offerer")
	learnerToken, learnerID := registerAndLogin(t, r, "learner")
	grantCredits(t, r, learnerToken, learnerID, 1000)
	grantCredits(t, r, offererToken, offererID, 500)

	// offerer publishes a skill
	w := httpDo(t, r, "POST", "/api/skills", offererToken, gin.H{
		"name":     "Python",
		"category": "programming",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	skill := decode(t, w).Data["skill"].(map[string]interface{})
	skillID := uint(skill["ID"].(float64))

	w = httpDo(t, r, "POST", "/api/skills/mine", offererToken, gin.H{
		"skill_id":    skillID,
		"proficiency": 5,
		"is_offering": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// learner requests a 2 hour session
	w = httpDo(t, r, "POST", "/api/exchanges", learnerToken, gin.H{
		"offerer_id":     offererID,
		"skill_id":       skillID,
		"scheduled_at":   time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"duration_hours": 2.0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ex := decode(t, w).Data["exchange"].(map[string]interface{})
	exchangeID := uint(ex["id"].(float64))
	require.Equal(t, "pending", ex["status"].(string))

	base := fmt.Sprintf("/api/exchanges/%d", exchangeID)

	// learner cannot accept their own request
	w = httpDo(t, r, "POST", base+"/accept", learnerToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = httpDo(t, r, "POST", base+"/accept", offererToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// completing twice fails: the exchange is terminal after the first
	w = httpDo(t, r, "POST", base+"/complete", offererToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = httpDo(t, r, "POST", base+"/complete", offererToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// 2 hours at 100 cents per hour moved learner -> offerer
	require.Equal(t, int64(800), balanceCent(t, r, learnerToken))
	require.Equal(t, int64(700), balanceCent(t, r, offererToken))

	w = httpDo(t, r, "GET", base+"/history", learnerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w).Data["history"].([]interface{})
	require.Len(t, history, 3)
	first := history[0].(map[string]interface{})
	require.Nil(t, first["from_status"])
	require.Equal(t, "pending", first["to_status"].(string))
	last := history[2].(map[string]interface{})
	require.Equal(t, "completed", last["to_status"].(string))

	// learner reviews the completed session
	w = httpDo(t, r, "POST", "/api/reviews", learnerToken, gin.H{
		"exchange_id": exchangeID,
		"rating":      5,
		"comment":     "great lesson",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httpDo(t, r, "GET", fmt.Sprintf("/api/users/%d/reviews", offererID), learnerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode(t, w).Data["reviews"].([]interface{})
	require.Len(t, reviews, 1)
}

func TestCompleteWithInsufficientCreditsOverHTTP(t *testing.T) {
	r := setupServer(t)

	offererToken, offererID := registerAndLogin(t, r, "offerer")
	learnerToken, _ := registerAndLogin(t, r, "learner")

	w := httpDo(t, r, "POST", "/api/skills", offererToken, gin.H{
		"name":     "Guitar",
		"category": "music",
	})
	require.Equal(t, http.StatusOK, w.Code)
	skill := decode(t, w).Data["skill"].(map[string]interface{})

	w = httpDo(t, r, "POST", "/api/exchanges", learnerToken, gin.H{
		"offerer_id":     offererID,
		"skill_id":       uint(skill["ID"].(float64)),
		"scheduled_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"duration_hours": 1.0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	exchangeID := uint(decode(t, w).Data["exchange"].(map[string]interface{})["id"].(float64))

	base := fmt.Sprintf("/api/exchanges/%d", exchangeID)
	w = httpDo(t, r, "POST", base+"/accept", offererToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the learner has no credits, so completion is refused and the
	// exchange stays accepted
	w = httpDo(t, r, "POST", base+"/complete", offererToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = httpDo(t, r, "GET", base, offererToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ex := decode(t, w).Data["exchange"].(map[string]interface{})
	require.Equal(t, "accepted", ex["status"].(string))

	require.Equal(t, int64(0), balanceCent(t, r, offererToken))
}

func TestPresenceEndpoints(t *testing.T) {
	r := setupServer(t)

	token, userID := registerAndLogin(t, r, "someone")

	w := httpDo(t, r, "GET", "/api/presence/online", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), decode(t, w).Data["count"].(float64))

	w = httpDo(t, r, "POST", "/api/presence/connect", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	connID := decode(t, w).Data["connection_id"].(string)
	require.NotEmpty(t, connID)

	w = httpDo(t, r, "GET", "/api/presence/online", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data
	require.Equal(t, float64(1), data["count"].(float64))
	ids := data["user_ids"].([]interface{})
	require.Equal(t, float64(userID), ids[0].(float64))

	w = httpDo(t, r, "POST", "/api/presence/disconnect", token, gin.H{
		"connection_id": connID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(t, r, "GET", "/api/presence/online", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), decode(t, w).Data["count"].(float64))
}

func TestBrowseMatchesOverHTTP(t *testing.T) {
	r := setupServer(t)

	offererToken, offererID := registerAndLogin(t, r, "offerer")
	learnerToken, _ := registerAndLogin(t, r, "learner")

	w := httpDo(t, r, "POST", "/api/skills", offererToken, gin.H{
		"name":     "Chess",
		"category": "games",
	})
	require.Equal(t, http.StatusOK, w.Code)
	skill := decode(t, w).Data["skill"].(map[string]interface{})

	w = httpDo(t, r, "POST", "/api/skills/mine", offererToken, gin.H{
		"skill_id":    uint(skill["ID"].(float64)),
		"proficiency": 4,
		"is_offering": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(t, r, "GET", "/api/matches?category=games", learnerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w).Data
	require.Equal(t, float64(1), data["total"].(float64))
	matches := data["matches"].([]interface{})
	require.Equal(t, float64(offererID), matches[0].(map[string]interface{})["user_id"].(float64))

	// invalid rating filter rejected
	w = httpDo(t, r, "GET", "/api/matches?min_rating=abc", learnerToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

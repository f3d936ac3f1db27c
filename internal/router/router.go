package router

import (
	"github.com/ChalithH/SkillForge/internal/config"
	"github.com/ChalithH/SkillForge/internal/handler"
	"github.com/ChalithH/SkillForge/internal/middleware"
	"github.com/ChalithH/SkillForge/internal/presence"
	"github.com/ChalithH/SkillForge/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps carries the shared components the routes are built from.
type Deps struct {
	DB       *gorm.DB
	Log      *logrus.Logger
	Tracker  *presence.Tracker
	Ledger   *service.CreditLedger
	Exchange *service.ExchangeService
	Matching *service.MatchingService
	Skills   *service.SkillService
}

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Log), gin.Recovery())

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(deps.DB, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, deps.DB))

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(deps.DB))
	protected.POST("/profile/password", handler.ChangePassword(deps.DB, cfg.Security.BcryptCost))

	skillHandler := handler.NewSkillHandler(deps.Skills)
	protected.POST("/skills", skillHandler.CreateSkill)
	protected.GET("/skills", skillHandler.ListSkills)
	protected.POST("/skills/mine", skillHandler.AddUserSkill)
	protected.GET("/skills/mine", skillHandler.ListMySkills)
	protected.DELETE("/skills/mine/:id", skillHandler.RemoveUserSkill)
	protected.POST("/reviews", skillHandler.CreateReview)
	protected.GET("/users/:id/reviews", skillHandler.ListUserReviews)

	exchangeHandler := handler.NewExchangeHandler(deps.Exchange)
	protected.POST("/exchanges", exchangeHandler.CreateExchange)
	protected.GET("/exchanges", exchangeHandler.ListMyExchanges)
	protected.GET("/exchanges/:id", exchangeHandler.GetExchange)
	protected.GET("/exchanges/:id/history", exchangeHandler.GetStatusHistory)
	protected.POST("/exchanges/:id/accept", exchangeHandler.AcceptExchange)
	protected.POST("/exchanges/:id/reject", exchangeHandler.RejectExchange)
	protected.POST("/exchanges/:id/cancel", exchangeHandler.CancelExchange)
	protected.POST("/exchanges/:id/complete", exchangeHandler.CompleteExchange)
	protected.POST("/exchanges/:id/no-show", exchangeHandler.MarkAsNoShow)

	creditHandler := handler.NewCreditHandler(deps.Ledger)
	protected.GET("/credits", creditHandler.GetBalance)
	protected.GET("/credits/history", creditHandler.GetHistory)
	protected.POST("/credits/add", creditHandler.AddCredits)
	protected.POST("/credits/deduct", creditHandler.DeductCredits)
	protected.GET("/credits/export/csv", creditHandler.ExportCSV)
	protected.GET("/credits/export/xlsx", creditHandler.ExportXLSX)

	matchHandler := handler.NewMatchHandler(deps.Matching)
	protected.GET("/matches", matchHandler.BrowseUsers)
	protected.GET("/matches/recommended", matchHandler.GetRecommended)
	protected.GET("/matches/top-rated", matchHandler.GetTopRated)
	protected.GET("/matches/:id", matchHandler.GetMatchDetails)

	presenceHandler := handler.NewPresenceHandler(deps.Tracker)
	protected.POST("/presence/connect", presenceHandler.Connect)
	protected.POST("/presence/disconnect", presenceHandler.Disconnect)
	protected.GET("/presence/online", presenceHandler.Online)

	return r
}

package main

import (
	"embed"
	"os"

	"questboard/internal"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal().Msg("SESSION_SECRET is required")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	db := internal.MustDB(dbURL)
	defer db.Close()

	if err := internal.Migrate(migrationsFS, dbURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	store := internal.NewStore(db)

	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/auth/login", internal.Login(store, secret))
		api.POST("/auth/register", internal.Register(store))
		api.POST("/auth/logout", internal.Logout())
		api.GET("/auth/me", internal.Auth(secret), internal.Me(store))

		api.GET("/quests", internal.ListQuests(store))
		api.GET("/rewards", internal.ListRewards(store))

		api.GET("/user/:id", internal.GetUser(store))
		api.PUT("/user/:id", internal.UpdateUser(store))
		api.GET("/user/:id/quests", internal.ListUserQuests(store))
		api.POST("/user/:id/quests", internal.SelectQuest(store))
		api.DELETE("/user/:id/quests", internal.RemoveQuest(store))
		api.POST("/user/:id/quests/complete", internal.CompleteQuest(store))
		api.GET("/user/:id/rewards", internal.UserRewards(store))
		api.POST("/user/:id/rewards", internal.RedeemRewards(store))
		api.GET("/user/:id/team", internal.UserTeam(store))

		api.GET("/ranking", internal.UserRanking(store))
		api.GET("/teams/ranking", internal.TeamRanking(store))

		api.GET("/teams", internal.ListTeams(store))
		api.POST("/teams", internal.CreateTeam(store))
		api.GET("/teams/:id", internal.GetTeam(store))
		api.DELETE("/teams/:id", internal.DeleteTeam(store))
		api.POST("/teams/:id/join", internal.JoinTeam(store))
		api.POST("/teams/:id/leave", internal.LeaveTeam(store))

		admin := api.Group("/admin", internal.RequireAdmin(store))
		{
			admin.GET("/quests", internal.AdminListQuests(store))
			admin.POST("/quests", internal.AdminCreateQuest(store))
			admin.PUT("/quests/:id", internal.AdminUpdateQuest(store))
			admin.DELETE("/quests/:id", internal.AdminDeleteQuest(store))

			admin.GET("/rewards", internal.AdminListRewards(store))
			admin.POST("/rewards", internal.AdminCreateReward(store))
			admin.PUT("/rewards/:id", internal.AdminUpdateReward(store))
			admin.DELETE("/rewards/:id", internal.AdminDeleteReward(store))
		}
	}

	log.Info().Str("port", port).Msg("listening")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/techagentng/scamwatch/config"
	"github.com/techagentng/scamwatch/db"
	"github.com/techagentng/scamwatch/server"
	"github.com/techagentng/scamwatch/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gormDB := db.GetDB(conf)
	authRepo := db.NewAuthRepo(gormDB)
	incidentRepo := db.NewIncidentRepo(gormDB)
	pointsRepo := db.NewPointsRepo(gormDB)
	postRepo := db.NewPostRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)

	var cache *redis.Client
	if conf.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
	}

	authService := services.NewAuthService(authRepo, conf)
	pointsService := services.NewPointsService(pointsRepo, conf)
	leaderboardService := services.NewLeaderboardService(pointsRepo, cache, conf)
	notificationService := services.NewNotificationService(notificationRepo)
	incidentService := services.NewIncidentService(incidentRepo, authRepo, notificationService, leaderboardService, conf)
	postService := services.NewPostService(postRepo, conf)

	s := &server.Server{
		Config:              conf,
		AuthRepository:      authRepo,
		AuthService:         authService,
		IncidentRepository:  incidentRepo,
		IncidentService:     incidentService,
		PointsService:       pointsService,
		LeaderboardService:  leaderboardService,
		PostService:         postService,
		NotificationService: notificationService,
		DB:                  db.GormDB{},
	}

	s.Start()
}

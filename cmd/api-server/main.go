package main

import (
	"log"

	"reelgram-backend/internal/api"
	"reelgram-backend/internal/api/router"
	"reelgram-backend/internal/database"
	"reelgram-backend/internal/env"
	"reelgram-backend/internal/queue"
)

func main() {
	env.MustValidate()

	queueManager := queue.NewRequestQueueManager(10, 10)
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	server := api.NewAPIServer(
		":"+env.GetOrDefault(env.APIPort, "3001"),
		queueManager,
		db,
		nil,
		router.UtilsRoutes("/api/v1"),
		router.AuthRoutes("/api/v1"),
		router.ReelRoutes("/api/v1"),
		router.UserRoutes("/api/v1"),
		router.ChatRoutes("/api/v1"),
	)

	server.Run()
}

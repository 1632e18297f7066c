package main

import (
	"context"
	"log"

	"reelgram-backend/internal/api"
	"reelgram-backend/internal/api/router"
	"reelgram-backend/internal/database"
	"reelgram-backend/internal/env"
	"reelgram-backend/internal/queue"
	chatservice "reelgram-backend/internal/service/chat"
	"reelgram-backend/internal/signaling"

	"github.com/go-redis/redis/v8"
)

func main() {
	env.MustValidate()

	queueManager := queue.NewRequestQueueManager(10, 10)
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     env.Get(env.ChatRedisURL),
		Password: env.Get(env.ChatRedisPass),
		DB:       0,
	})

	registry := signaling.NewRegistry(signaling.PolicyFromName(env.Get(env.RoomJoinPolicy)))
	bridge := signaling.NewBridge(redisClient)
	handler := signaling.NewHandler(registry, chatservice.New(db), bridge)
	fallback := signaling.SelectFallback(context.Background(), redisClient)

	server := api.NewAPIServer(
		":"+env.GetOrDefault(env.WSPort, "3002"),
		queueManager,
		db,
		handler,
		router.UtilsRoutes("/api/ws/v1"),
		router.SignalingRoutes("/api/ws/v1", fallback),
	)

	server.Run()
}

package main

import (
	"context"
	"fmt"
	"reviewpilot/internal/config"
	"reviewpilot/internal/logger"
	"reviewpilot/internal/model"
	"reviewpilot/internal/service"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// seed inserts a demo business with one location and prints an owner token for it
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	now := time.Now()

	business := model.Business{
		ID:             primitive.NewObjectID(),
		Name:           "Blue Door Cafe",
		ReviewStrategy: "Friendly and casual. Mention the espresso, the fresh pastries and how quickly orders come out. Keep it under two sentences.",
		CreatedAt:      now,
	}
	location := model.Location{
		ID:             primitive.NewObjectID(),
		BusinessID:     business.ID,
		Name:           "Blue Door Cafe - Riverside",
		ReviewStrategy: "Warm and relaxed. Mention the riverside patio, the view at sunset and that dogs are welcome.",
		CreatedAt:      now,
	}

	if _, err := db.Collection("businesses").InsertOne(ctx, business); err != nil {
		log.Fatal("Failed to insert business", "error", err)
	}
	if _, err := db.Collection("locations").InsertOne(ctx, location); err != nil {
		log.Fatal("Failed to insert location", "error", err)
	}

	token, err := service.NewAuthService(cfg.JWTSecret).IssueOwnerToken(business.ID.Hex())
	if err != nil {
		log.Fatal("Failed to issue owner token", "error", err)
	}

	log.Info("Seeded demo business",
		"businessId", business.ID.Hex(),
		"locationId", location.ID.Hex(),
	)
	fmt.Printf("BUSINESS_ID=%s\n", business.ID.Hex())
	fmt.Printf("LOCATION_ID=%s\n", location.ID.Hex())
	fmt.Printf("OWNER_TOKEN=%s\n", token)
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"location-service/config"
	"location-service/internal/auth"
	"location-service/internal/family"
	"location-service/internal/geocode"
	"location-service/internal/location"
	"location-service/internal/store"
	"location-service/internal/tracking"
	"location-service/pkg/consul"
	"location-service/pkg/firebase"
	"location-service/pkg/zap"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.LoadConfig()

	logger, err := zap.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	consulConn := consul.NewConsulConn(logger, cfg)
	consulConn.Connect()
	defer consulConn.Deregister()

	mongoClient, err := connectToMongoDB(cfg.MongoURI)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Fatal(err)
		}
	}()

	_, dbClient, err := firebase.SetUpFireBase(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize Firebase: %v", err)
	}

	storeClient := store.NewClient(store.NewFirebaseBackend(dbClient), cfg.StorePollInterval, logger)

	familyService := family.NewFamilyService(storeClient, logger)
	familyService.Start()
	defer familyService.Stop()
	familyHandler := family.NewFamilyHandler(familyService)

	cache := geocode.NewCache(cfg.GeocodeCacheSize)
	resolver := geocode.NewResolver(cfg.NominatimBaseURL, cfg.GeocodeTimeout, logger)
	geocodeService := geocode.NewGeocodeService(cache, resolver)
	geocodeHandler := geocode.NewGeocodeHandler(geocodeService)

	historyStore := location.NewHistoryStore(storeClient, logger)
	aggregator := location.NewAggregator(storeClient, logger)
	aggregator.Start()
	defer aggregator.Stop()
	locationService := location.NewLocationService(historyStore, aggregator, logger)

	hub := location.NewHub(aggregator, logger)
	go hub.Run()
	defer hub.Stop()
	locationHandler := location.NewLocationHandler(locationService, hub)

	trackingManager := tracking.NewManager(storeClient, tracking.PollInterval, logger)
	defer trackingManager.Stop()
	trackingHandler := tracking.NewTrackingHandler(trackingManager)

	sessionCollection := mongoClient.Database(cfg.MongoDB).Collection("sessions")
	sessionRepository := auth.NewSessionRepository(sessionCollection)
	authService := auth.NewAuthService(storeClient, sessionRepository, cfg.JWTSecret, cfg.SessionTTL, logger)
	authHandler := auth.NewAuthHandler(authService)

	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	auth.RegisterRoutes(router, authHandler, cfg.JWTSecret)
	family.RegisterRoutes(router, familyHandler, cfg.JWTSecret)
	geocode.RegisterRoutes(router, geocodeHandler, cfg.JWTSecret)
	location.RegisterRoutes(router, locationHandler, cfg.JWTSecret)
	tracking.RegisterRoutes(router, trackingHandler, cfg.JWTSecret)

	c := cron.New(cron.WithSeconds())
	_, err = c.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := authService.SweepExpired(ctx); err != nil {
			logger.Errorf("Expired session sweep failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("AddFunc error: %v", err)
	}
	c.Start()
	defer c.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Error shutting down server: %v", err)
	}
	logger.Info("Server stopped")
}

func connectToMongoDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Println("Failed to connect to MongoDB")
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Println("Failed to ping MongoDB")
		return nil, err
	}

	log.Println("Successfully connected to MongoDB")
	return client, nil
}

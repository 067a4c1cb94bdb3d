package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoaphan/careerframe/adapters/event"
	"github.com/khoaphan/careerframe/adapters/persistence"
	profileUC "github.com/khoaphan/careerframe/internal/application/usecase/profile"
	"github.com/khoaphan/careerframe/internal/config"
	"github.com/khoaphan/careerframe/pkg/logger"
)

// The worker keeps the Redis public-profile cache fresh: every committed
// section mutation publishes to section.events, and the worker rebuilds the
// affected profile's view.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting CareerFrame Worker...")

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	sectionRepo := persistence.NewPostgresSectionRepo(dbPool, appLogger)
	profileCache := persistence.NewRedisProfileCache(redisClient, cfg.Cache.PublicProfileTTL)

	// removal state lives in the API process; the worker only sees commits
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, sectionRepo, profileCache, nil, appLogger)

	sectionConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicSectionEvents,
		GroupID:  "profile-cache-refresher",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer sectionConsumer.Close()

	appLogger.Info("Worker listening on topic '" + event.TopicSectionEvents + "'...")

	ctx := context.Background()
	for {
		msg, err := sectionConsumer.FetchMessage(ctx)
		if err != nil {
			appLogger.Error("failed to read message from Kafka", err)
			continue
		}

		var payload event.SectionEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Error("failed to unmarshal section event, skipping", err)
			commitMessage(sectionConsumer, msg, appLogger)
			continue
		}

		appLogger.Info("processing section event",
			zap.String("event_type", string(payload.EventType)),
			zap.String("profile_slug", payload.ProfileSlug))

		if payload.ProfileSlug == "" {
			// removal commits carry no slug, resolve it from the profile id
			p, err := profileRepo.FindByID(ctx, payload.ProfileID)
			if err != nil {
				appLogger.Error("cannot resolve profile for event", err,
					zap.String("profile_id", payload.ProfileID.String()))
				commitMessage(sectionConsumer, msg, appLogger)
				continue
			}
			payload.ProfileSlug = p.Slug
		}

		if err := profileUseCase.ExecuteRefreshPublicProfile(ctx, payload.ProfileSlug); err != nil {
			// unpublished profiles have no public view to rebuild
			appLogger.Warn("could not refresh public profile view",
				zap.String("profile_slug", payload.ProfileSlug), zap.Error(err))
		}

		commitMessage(sectionConsumer, msg, appLogger)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("failed to commit message", err)
	}
}

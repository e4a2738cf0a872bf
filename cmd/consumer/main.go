package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/internal/model"
	"github.com/thep200/github-harvester/pkg/db"
	"github.com/thep200/github-harvester/pkg/kafka"
	"github.com/thep200/github-harvester/pkg/log"
)

func main() {
	// Parse command line arguments
	consumerType := flag.String("type", "", "Type of consumer to run (follower, contributor)")
	flag.Parse()

	if *consumerType == "" {
		fmt.Println("Please specify a consumer type: -type=[follower|contributor]")
		os.Exit(1)
	}

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, _ := log.NewCslLogger()

	// Setup database
	mysql, err := db.NewMysql(config)
	if err != nil {
		logger.Error(context.Background(), "Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create models
	followerModel, _ := model.NewFollower(config, logger, mysql)
	contributorModel, _ := model.NewContributor(config, logger, mysql)
	if err := mysql.Migrate(followerModel, contributorModel); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start the appropriate consumer based on type
	switch *consumerType {
	case "follower":
		startFollowerConsumer(ctx, config, logger, followerModel)
	case "contributor":
		startContributorConsumer(ctx, config, logger, contributorModel)
	default:
		logger.Error(ctx, "Unknown consumer type: %s", *consumerType)
		os.Exit(1)
	}

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startFollowerConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, followerModel *model.Follower) {
	groupID := config.Kafka.Consumer.GroupID
	if groupID == "" {
		groupID = "follower-consumer-group"
	}
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicFollower, groupID)

	// Follower messages arrive one per detail lookup, batch them before writing
	batchSize := 100
	batchTimeout := 5 * time.Second
	messages := make(chan model.FollowerMessage, batchSize*2)

	// Batch processor
	go processBatchedFollowers(ctx, messages, batchSize, batchTimeout, logger, followerModel)

	// Register handler for follower messages
	consumer.RegisterHandler("follower", func(data []byte) error {
		var msg model.FollowerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal follower message: %w", err)
		}

		select {
		case messages <- msg:
			// Message added to batch
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Follower consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Follower consumer started successfully")
}

func processBatchedFollowers(ctx context.Context, messages <-chan model.FollowerMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, followerModel *model.Follower) {

	var batch []model.FollowerMessage
	timer := time.NewTimer(batchTimeout)

	for {
		select {
		case <-ctx.Done():
			// Process remaining messages before exiting
			if len(batch) > 0 {
				saveFollowerBatch(ctx, batch, logger, followerModel)
			}
			return

		case msg := <-messages:
			batch = append(batch, msg)

			if len(batch) >= batchSize {
				saveFollowerBatch(ctx, batch, logger, followerModel)
				batch = nil
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				saveFollowerBatch(ctx, batch, logger, followerModel)
				batch = nil
			}
			timer.Reset(batchTimeout)
		}
	}
}

func saveFollowerBatch(ctx context.Context, batch []model.FollowerMessage, logger log.Logger, followerModel *model.Follower) {
	if len(batch) == 0 {
		return
	}

	logger.Info(ctx, "Processing batch of %d followers", len(batch))
	if err := followerModel.CreateBatch(batch); err != nil {
		logger.Error(ctx, "Failed to save batch of followers: %v", err)
	} else {
		logger.Info(ctx, "Successfully saved batch of %d followers", len(batch))
	}
}

func startContributorConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, contributorModel *model.Contributor) {
	groupID := config.Kafka.Consumer.GroupID
	if groupID == "" {
		groupID = "contributor-consumer-group"
	}
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicContributor, groupID)

	batchSize := 100
	batchTimeout := 5 * time.Second
	messages := make(chan model.ContributorMessage, batchSize*2)

	go processBatchedContributors(ctx, messages, batchSize, batchTimeout, logger, contributorModel)

	// Register handler for contributor messages
	consumer.RegisterHandler("contributor", func(data []byte) error {
		var msg model.ContributorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal contributor message: %w", err)
		}

		select {
		case messages <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Contributor consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Contributor consumer started successfully")
}

func processBatchedContributors(ctx context.Context, messages <-chan model.ContributorMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, contributorModel *model.Contributor) {

	var batch []model.ContributorMessage
	timer := time.NewTimer(batchTimeout)

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				saveContributorBatch(ctx, batch, logger, contributorModel)
			}
			return

		case msg := <-messages:
			batch = append(batch, msg)

			if len(batch) >= batchSize {
				saveContributorBatch(ctx, batch, logger, contributorModel)
				batch = nil
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				saveContributorBatch(ctx, batch, logger, contributorModel)
				batch = nil
			}
			timer.Reset(batchTimeout)
		}
	}
}

func saveContributorBatch(ctx context.Context, batch []model.ContributorMessage, logger log.Logger, contributorModel *model.Contributor) {
	if len(batch) == 0 {
		return
	}

	logger.Info(ctx, "Processing batch of %d contributors", len(batch))
	if err := contributorModel.CreateBatch(batch); err != nil {
		logger.Error(ctx, "Failed to save batch of contributors: %v", err)
	} else {
		logger.Info(ctx, "Successfully saved batch of %d contributors", len(batch))
	}
}

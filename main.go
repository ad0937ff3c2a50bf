package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/myaicommunity/agenthub/api"
	"github.com/myaicommunity/agenthub/config"
	"github.com/myaicommunity/agenthub/database"
	"github.com/myaicommunity/agenthub/storage"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()

	// Secrets may live in SSM instead of the environment.
	if prefix := config.GetString(c, "SSM_PREFIX", ""); prefix != "" {
		if err := config.OverlayFromSSM(context.Background(), c, prefix); err != nil {
			fmt.Printf("Error loading SSM parameters: %v\n", err)
			os.Exit(1)
		}
		for key, value := range c {
			os.Setenv(key, value)
		}
	}

	connStr := config.GetString(c, "DATABASE_URL", "")
	if connStr == "" {
		fmt.Println("DATABASE_URL is not set. Exiting...")
		os.Exit(1)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// Route reads to a replica when one is configured.
	if replicaDSN := config.GetString(c, "DATABASE_REPLICA_URL", ""); replicaDSN != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(replicaDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			fmt.Printf("Error registering database replica: %v\n", err)
			os.Exit(1)
		}
	}

	if err := database.Migrate(db); err != nil {
		fmt.Printf("Error migrating database: %v\n", err)
		os.Exit(1)
	}

	currentDB := database.New(db)

	files, uploadsDir, err := newFileStore(c)
	if err != nil {
		fmt.Printf("Error initializing file storage: %v\n", err)
		os.Exit(1)
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, files, uploadsDir)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// newFileStore builds the upload backend. Local disk is the default; an
// S3-compatible bucket is used when UPLOAD_BACKEND=s3. The returned dir is
// empty for remote backends, which disables the static /uploads route.
func newFileStore(c map[string]string) (storage.FileStore, string, error) {
	if config.GetString(c, "UPLOAD_BACKEND", "local") == "s3" {
		loadOpts := []func(*awsconfig.LoadOptions) error{}
		if accessKey := config.GetString(c, "UPLOAD_ACCESS_KEY_ID", ""); accessKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(accessKey, config.GetString(c, "UPLOAD_SECRET_ACCESS_KEY", ""), ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, "", err
		}
		client := s3.NewFromConfig(awsCfg)
		bucket := config.GetString(c, "UPLOAD_BUCKET", "")
		if bucket == "" {
			return nil, "", fmt.Errorf("UPLOAD_BUCKET is not set")
		}
		publicURL := config.GetString(c, "UPLOAD_PUBLIC_URL", "")
		return storage.NewS3Store(client, bucket, publicURL), "", nil
	}

	uploadsDir := config.GetString(c, "UPLOAD_DIR", "uploads")
	local, err := storage.NewLocalStore(uploadsDir, "/uploads")
	if err != nil {
		return nil, "", err
	}
	return local, uploadsDir, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

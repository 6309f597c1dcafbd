package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
	"github.com/Mohamadaloreibi/matchai-talent-finder/logger"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

func main() {
	baseCtx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Logs.JSON, cfg.Logs.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	app.SetLogger(zlog)

	app.MustInitDB()
	app.MustInitAssistant()

	queueURL := os.Getenv("QUEUE_URL")
	if queueURL == "" {
		log.Fatal("QUEUE_URL environment variable is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(baseCtx)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}
	sqsClient := sqs.NewFromConfig(awsCfg)

	log.Printf("Worker started, listening on SQS queue: %s", queueURL)

	for {
		// Long-poll SQS
		recvCtx, cancel := context.WithTimeout(baseCtx, 30*time.Second)
		resp, err := sqsClient.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
			QueueUrl:            &queueURL,
			MaxNumberOfMessages: 5,
			WaitTimeSeconds:     20,  // enable long polling
			VisibilityTimeout:   300, // must exceed the worst-case chunk processing time
		})
		cancel()

		if err != nil {
			log.Printf("ReceiveMessage error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		if len(resp.Messages) == 0 {
			time.Sleep(2 * time.Second)
			continue
		}

		for _, m := range resp.Messages {
			if m.Body == nil {
				log.Printf("received message with empty body, skipping: %#v", m)
				continue
			}

			var msg models.BatchMessage
			if err := json.Unmarshal([]byte(*m.Body), &msg); err != nil {
				log.Printf("failed to unmarshal batch message: %v, body=%s", err, *m.Body)
				// Delete poison pills to avoid infinite retries.
				deleteMessage(sqsClient, queueURL, m)
				continue
			}

			log.Printf("Received chunk: job_id=%s user=%s chunk=%d candidates=%d",
				msg.JobID, msg.UserID, msg.ChunkIndex, len(msg.Candidates))

			chunkCtx, chunkCancel := context.WithTimeout(baseCtx, 4*time.Minute)
			err := app.ProcessBatchMessage(chunkCtx, cfg, msg)
			chunkCancel()

			if err != nil {
				// Leave the message in place so SQS redelivers after the
				// visibility timeout. Scoring failures for individual CVs are
				// absorbed inside ProcessBatchMessage; an error here means the
				// database was unreachable.
				log.Printf("error processing chunk job_id=%s chunk=%d: %v",
					msg.JobID, msg.ChunkIndex, err)
				continue
			}

			deleteMessage(sqsClient, queueURL, m)
		}
	}
}

func deleteMessage(sqsClient *sqs.Client, queueURL string, m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := sqsClient.DeleteMessage(context.Background(), &sqs.DeleteMessageInput{
		QueueUrl:      &queueURL,
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		log.Printf("failed to delete SQS message: %v", err)
	}
}

package main

// Sample consumer wiring. Point QUEUE_URL at a queue you own and run
// with regular AWS credentials in the environment.

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	consumer "github.com/ram-sa/go-sqs-consumer"
)

func main() {
	ctx := context.Background()

	c, err := consumer.New(ctx, consumer.Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		Handler: consumer.HandlerFunc(func(ctx context.Context, msg consumer.Message) error {
			switch msg.Body {
			case "fail":
				return errors.New("some transient error")
			case "slow":
				time.Sleep(45 * time.Second)
				return nil
			default:
				log.Printf("processed message %v", msg.ID)
				return nil
			}
		}),
		Callbacks: consumer.Callbacks{
			OnProcessingError: func(msg consumer.Message, err error) {
				log.Printf("giving up on message %v: %v", msg.ID, err)
			},
			OnConfigurationError: func(err error) {
				log.Printf("fatal: %v", err)
			},
		},
	})
	if err != nil {
		log.Fatalf("unable to build consumer: %v", err)
	}

	c.Start(ctx)

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGTERM, syscall.SIGINT)
	<-sigC

	stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		log.Printf("drain incomplete: %v", err)
	}
}

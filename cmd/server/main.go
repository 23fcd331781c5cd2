package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/lioia/pagerank/pkg/api"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/queue"
	"github.com/lioia/pagerank/pkg/utils"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	// Read environment variables
	env, err := utils.ReadEnvVars()
	utils.FailOnError("Failed to read environment variables", err)
	utils.InitLog(env.NodeLog, env.ServerLog)

	defaults := pagerank.Config{
		DampingFactor: env.Damping,
		Samples:       env.Samples,
		Tolerance:     env.Tolerance,
	}
	err = defaults.Validate()
	utils.FailOnError("Invalid estimator configuration", err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Health service for the whole process
	var health *api.HealthServer
	if env.GrpcPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", env.GrpcPort))
		utils.FailOnError("Failed to listen for health server", err)
		health = api.NewHealthServer()
		go func() {
			err := health.Serve(lis)
			utils.FailOnError("Failed to serve health", err)
		}()
		defer health.Stop()
	}

	// Queue worker, only when RabbitMQ is configured
	if url := env.RabbitURL(); url != "" {
		queueConn, err := amqp.Dial(url)
		utils.FailOnError("Could not connect to RabbitMQ", err)
		defer queueConn.Close()
		ch, err := queueConn.Channel()
		utils.FailOnError("Failed to open a channel to RabbitMQ", err)
		defer ch.Close()

		worker, err := queue.NewWorker(ch, env.WorkQueue, env.ResultQueue, env.Prefetch, defaults)
		utils.FailOnError("Failed to create worker", err)
		go func() {
			if err := worker.Run(ctx); err != nil {
				utils.WarnLog("worker", "Worker stopped: %v", err)
				if health != nil {
					health.SetServing("worker", false)
				}
				stop()
			}
		}()
		if health != nil {
			health.SetServing("worker", true)
		}
	}

	server := api.NewApiServer(defaults)
	go func() {
		err := server.Start(fmt.Sprintf(":%d", env.ApiPort))
		utils.FailOnError("Failed to serve api", err)
	}()
	if health != nil {
		health.SetServing("", true)
	}

	<-ctx.Done()
	utils.ServerLog("Shutting down")
	if health != nil {
		health.SetServing("", false)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.WarnLog("server", "Shutdown failed: %v", err)
	}
}

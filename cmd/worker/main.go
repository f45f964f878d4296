package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"schoolattend/internal/attendance"
	"schoolattend/internal/config"
	"schoolattend/internal/queue"
	"schoolattend/internal/recon"
	"schoolattend/internal/store"
)

// Worker consumes queued reconciliation requests and runs the batch job
// under a single-instance run lock.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	repo := attendance.NewRepository(db.Client)
	lock := store.NewRunLock(redisClient.Client, "", cfg.LockTTL)
	job := recon.NewJob(repo, lock, recon.JobConfig{
		OffsetMinutes:   cfg.LocalOffsetMin,
		DeleteBatchSize: cfg.DeleteBatchSize,
		PageSize:        cfg.ListPageSize,
	})

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for reconcile requests...")
	for msg := range messages {
		if msg.Type != queue.TypeReconcile {
			continue
		}

		var req recon.Request
		if err := json.Unmarshal(msg.Body, &req); err != nil {
			log.Printf("bad reconcile request: %v", err)
			continue
		}
		if req.Mode == "" {
			req.Mode = attendance.OffsetMode(cfg.OffsetMode)
		}
		mode, err := attendance.ParseOffsetMode(string(req.Mode))
		if err != nil {
			log.Printf("bad reconcile request: %v", err)
			continue
		}

		log.Printf("reconcile started, mode=%s offset=%dmin", mode, cfg.LocalOffsetMin)
		res, err := job.Run(ctx, mode)
		switch {
		case errors.Is(err, recon.ErrJobRunning):
			log.Println("reconcile skipped: another run holds the lock")
		case err != nil:
			log.Printf("reconcile failed after kept=%d deleted=%d normalized=%d: %v",
				res.Kept, res.Deleted, res.Normalized, err)
		default:
			log.Printf("reconcile done: kept=%d deleted=%d normalized=%d",
				res.Kept, res.Deleted, res.Normalized)
		}
	}

	log.Println("worker stopped")
}

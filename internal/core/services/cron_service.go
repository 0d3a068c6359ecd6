package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron         *cron.Cron
	inventorySvc *InventoryService
	authSvc      *AuthService
}

// NewCronService creates a new cron service
func NewCronService(inventorySvc *InventoryService, authSvc *AuthService) *CronService {
	return &CronService{
		cron:         cron.New(),
		inventorySvc: inventorySvc,
		authSvc:      authSvc,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	// Reset daily received/dispensed counters at midnight
	if _, err := s.cron.AddFunc("0 0 * * *", s.resetDailyCounters); err != nil {
		return err
	}

	// Purge expired refresh tokens nightly
	if _, err := s.cron.AddFunc("30 3 * * *", s.cleanupTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron jobs scheduled")
	return nil
}

// Stop halts the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron jobs stopped")
}

func (s *CronService) resetDailyCounters() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.inventorySvc.ResetAllDailyCounters(ctx); err != nil {
		log.Printf("❌ Daily counter reset failed: %v", err)
		return
	}
	log.Println("✅ Daily inventory counters reset")
}

func (s *CronService) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.authSvc.CleanupExpiredTokens(ctx); err != nil {
		log.Printf("❌ Expired token cleanup failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/senyabanana/banner-auction/internal/services"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// Scheduler запускает обход льготного срока и закрытие периода по расписанию.
// Оба сервиса идемпотентны, поэтому совпадение с ручным HTTP-вызовом безопасно.
type Scheduler struct {
	cron   *cron.Cron
	logger *log.Logger
}

// New создает планировщик с заданиями по cron-выражениям из конфигурации.
// Пустое выражение отключает соответствующее задание.
func New(sweeper *services.SweepService, closer *services.CloserService, sweepSpec, closeSpec string, logger *log.Logger) (*Scheduler, error) {
	c := cron.New()

	if sweepSpec != "" {
		if _, err := c.AddFunc(sweepSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			result, err := sweeper.Sweep(ctx)
			if err != nil {
				logger.Printf("scheduled sweep failed: %v", err)
				return
			}
			logger.Printf("scheduled sweep: %s", result.Message)
		}); err != nil {
			return nil, fmt.Errorf("invalid sweep cron spec %q: %w", sweepSpec, err)
		}
	}

	if closeSpec != "" {
		if _, err := c.AddFunc(closeSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			result, err := closer.CloseIfDue(ctx)
			if err != nil {
				logger.Printf("scheduled close failed: %v", err)
				return
			}
			logger.Printf("scheduled close: %s", result.Message)
		}); err != nil {
			return nil, fmt.Errorf("invalid close cron spec %q: %w", closeSpec, err)
		}
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start запускает задания в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждёт завершения текущего задания.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

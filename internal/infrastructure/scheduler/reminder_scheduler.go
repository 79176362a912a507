// Package scheduler runs periodic background jobs for the billing backend.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// ReminderMailer delivers a single reminder message
type ReminderMailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ReminderSchedulerConfig holds configuration for the overdue reminder loop
type ReminderSchedulerConfig struct {
	// Enabled indicates if the reminder loop should run
	Enabled bool
	// Interval between overdue scans
	Interval time.Duration
	// JobTimeout bounds a single scan
	JobTimeout time.Duration
}

// DefaultReminderSchedulerConfig returns defaults: one scan per day,
// each bounded to five minutes.
func DefaultReminderSchedulerConfig() ReminderSchedulerConfig {
	return ReminderSchedulerConfig{
		Enabled:    true,
		Interval:   24 * time.Hour,
		JobTimeout: 5 * time.Minute,
	}
}

// ReminderScheduler periodically scans for invoices past their due
// date and mails a payment reminder to the invoice's customer.
type ReminderScheduler struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo billing.CustomerRepository
	mailer       ReminderMailer
	config       ReminderSchedulerConfig
	logger       *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewReminderScheduler creates a new ReminderScheduler
func NewReminderScheduler(
	invoiceRepo billing.InvoiceRepository,
	customerRepo billing.CustomerRepository,
	mailer ReminderMailer,
	config ReminderSchedulerConfig,
	logger *zap.Logger,
) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultReminderSchedulerConfig().Interval
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultReminderSchedulerConfig().JobTimeout
	}
	return &ReminderScheduler{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		mailer:       mailer,
		config:       config,
		logger:       logger,
	}
}

// Start launches the background loop. It is a no-op when the scheduler
// is disabled or already running.
func (s *ReminderScheduler) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info("Reminder scheduler disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(loopCtx)

	s.logger.Info("Reminder scheduler started",
		zap.Duration("interval", s.config.Interval))
}

// Stop terminates the loop and waits for the current scan to finish
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("Reminder scheduler stopped")
}

func (s *ReminderScheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// First scan runs immediately on start
	s.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *ReminderScheduler) scan(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	sent, failed, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Overdue reminder scan failed", zap.Error(err))
		return
	}

	if sent > 0 || failed > 0 {
		s.logger.Info("Overdue reminder scan finished",
			zap.Int("sent", sent),
			zap.Int("failed", failed))
	}
}

// RunOnce performs a single scan and returns how many reminders were
// sent and how many deliveries failed. Invoices whose customer has no
// email address are skipped.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (sent, failed int, err error) {
	invoices, err := s.invoiceRepo.FindDueForReminder(ctx, time.Now())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load overdue invoices: %w", err)
	}

	for i := range invoices {
		invoice := &invoices[i]

		customer, err := s.customerRepo.FindByIDForTenant(ctx, invoice.TenantID, invoice.CustomerID)
		if err != nil {
			s.logger.Warn("Skipping reminder, customer lookup failed",
				zap.String("invoice_number", invoice.Number),
				zap.Error(err))
			failed++
			continue
		}
		if customer.Email == "" {
			continue
		}

		subject, body := buildReminder(invoice, customer)
		if err := s.mailer.Send(ctx, customer.Email, subject, body); err != nil {
			s.logger.Warn("Failed to send payment reminder",
				zap.String("invoice_number", invoice.Number),
				zap.String("to", customer.Email),
				zap.Error(err))
			failed++
			continue
		}
		sent++
	}

	return sent, failed, nil
}

func buildReminder(invoice *billing.Invoice, customer *billing.Customer) (subject, body string) {
	subject = fmt.Sprintf("Payment reminder for invoice %s", invoice.Number)

	dueDate := ""
	if invoice.DueDate != nil {
		dueDate = invoice.DueDate.Format("2006-01-02")
	}

	body = fmt.Sprintf(
		"Dear %s,\n\n"+
			"Invoice %s was due on %s and has an outstanding balance of %s.\n"+
			"Please arrange payment at your earliest convenience.\n\n"+
			"If you have already paid, you can disregard this message.\n",
		customer.Name, invoice.Number, dueDate, invoice.RemainingAmount().StringFixed(2))
	return subject, body
}

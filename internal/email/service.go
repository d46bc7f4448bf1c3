// Package email queues receipt mails in Redis and delivers them over SMTP
// from a background worker.
package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"novelhub/internal/logger"
	"novelhub/internal/metrics"
)

const (
	QueueKey  = "novelhub:emails"
	FailedKey = "novelhub:emails:failed"

	maxTries = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// Sender delivers one message. The default talks SMTP.
type Sender interface {
	Send(job Job) error
}

type Service struct {
	redis   *redis.Client
	sender  Sender
	cfg     Config
	pollFor time.Duration
}

// New uses rdb for the queue; the caller owns the client.
func New(rdb *redis.Client, cfg Config) *Service {
	return &Service{
		redis:   rdb,
		sender:  smtpSender{cfg: cfg},
		cfg:     cfg,
		pollFor: 2 * time.Second,
	}
}

// WithSender swaps the delivery backend.
func (s *Service) WithSender(sender Sender) *Service {
	s.sender = sender
	return s
}

func (s *Service) Enqueue(ctx context.Context, to, name, subject, body string) error {
	job := Job{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now().UTC(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode email job: %w", err)
	}

	if err := s.redis.LPush(ctx, QueueKey, data).Err(); err != nil {
		metrics.RecordEmail("queue_error")
		return fmt.Errorf("queue email: %w", err)
	}

	metrics.RecordEmail("queued")
	logger.Debug("email queued", "to", to, "subject", subject)
	return nil
}

func (s *Service) SendPurchaseReceipt(ctx context.Context, to, name, chapterTitle string, amount, balance int64) error {
	subject := "Chapter unlocked - " + chapterTitle
	body := fmt.Sprintf(`Hi %s,

You unlocked "%s" for %d coins.
Your balance is now %d coins.

Happy reading!

- NovelHub`, name, chapterTitle, amount, balance)

	return s.Enqueue(ctx, to, name, subject, body)
}

func (s *Service) SendDepositReceipt(ctx context.Context, to, name string, amount, balance int64) error {
	subject := "Coins added to your wallet"
	body := fmt.Sprintf(`Hi %s,

%d coins were added to your wallet.
Your balance is now %d coins.

- NovelHub`, name, amount, balance)

	return s.Enqueue(ctx, to, name, subject, body)
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			if err := s.processNext(ctx); err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				logger.WithError(err).Warn("email queue read failed")
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Service) processNext(ctx context.Context) error {
	result, err := s.redis.BRPop(ctx, s.pollFor, QueueKey).Result()
	if err != nil {
		return err
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.WithError(err).Error("dropping malformed email job")
		metrics.RecordEmail("malformed")
		return nil
	}

	job.Tries++
	if err := s.sender.Send(job); err != nil {
		if job.Tries < maxTries {
			metrics.RecordEmail("retry")
			logger.WithError(err).WithField("to", job.To).Warnf("email attempt %d failed", job.Tries)
			return s.requeue(ctx, job)
		}
		metrics.RecordEmail("failed")
		logger.WithError(err).WithField("to", job.To).Error("email failed permanently")
		return s.saveFailed(ctx, job, err)
	}

	metrics.RecordEmail("sent")
	logger.Info("email sent", "to", job.To, "subject", job.Subject)
	s.refreshQueueGauge(ctx)
	return nil
}

func (s *Service) requeue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.LPush(ctx, QueueKey, data).Err()
}

func (s *Service) saveFailed(ctx context.Context, job Job, cause error) error {
	data, err := json.Marshal(map[string]interface{}{
		"job":   job,
		"error": cause.Error(),
		"time":  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.redis.LPush(ctx, FailedKey, data).Err()
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	n, err := s.redis.LLen(ctx, QueueKey).Result()
	if err != nil {
		return 0
	}
	return n
}

func (s *Service) refreshQueueGauge(ctx context.Context) {
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))
}

type smtpSender struct {
	cfg Config
}

func (m smtpSender) Send(job Job) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.FromName, m.cfg.From, job.To, job.Subject, job.Body)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" && m.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	return smtp.SendMail(m.cfg.SMTPHost+":"+m.cfg.SMTPPort, auth, m.cfg.From, []string{job.To}, []byte(msg))
}

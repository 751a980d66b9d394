// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
	"github.com/tomtom215/siriustracker/internal/models"
)

// Subject is the fixed subject line of every notification.
const Subject = "New First Play Detected"

// Notification results recorded in notifications_total.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// EmailNotifier sends one plain-text email per first play. Delivery is
// best effort: failures are logged and counted, never returned.
type EmailNotifier struct {
	cfg      config.SMTPConfig
	skipOnce sync.Once
}

// NewEmailNotifier creates a notifier from the SMTP config.
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &EmailNotifier{cfg: cfg}
}

// Enabled reports whether enough SMTP settings are present to send.
func (n *EmailNotifier) Enabled() bool {
	return n.cfg.Configured()
}

// Notify sends the alert synchronously and never fails the caller.
func (n *EmailNotifier) Notify(ctx context.Context, fp models.FirstPlay) {
	if !n.Enabled() {
		n.skipOnce.Do(func() {
			logging.Debug().Msg("SMTP not configured, skipping first-play email")
		})
		metrics.RecordNotification(ResultSkipped)
		return
	}

	start := time.Now()
	msg := n.buildMessage(fp)
	if err := n.sendSMTP(ctx, msg); err != nil {
		code := classifyEmailError(err)
		logging.Error().
			Err(err).
			Str("artist", fp.Artist).
			Str("title", fp.Title).
			Str("error_code", code).
			Bool("transient", isTransientEmailError(code)).
			Msg("Failed to send first-play email")
		metrics.RecordNotification(ResultFailed)
		return
	}

	metrics.RecordNotification(ResultSent)
	logging.Info().
		Str("artist", fp.Artist).
		Str("title", fp.Title).
		Str("recipient", n.cfg.Recipient).
		Dur("duration", time.Since(start)).
		Msg("First-play email sent")
}

func (n *EmailNotifier) sender() string {
	if n.cfg.From != "" {
		return n.cfg.From
	}
	return n.cfg.Username
}

// buildMessage constructs the RFC 5322 message with headers.
func (n *EmailNotifier) buildMessage(fp models.FirstPlay) string {
	var msg strings.Builder

	fmt.Fprintf(&msg, "From: %s\r\n", n.sender())
	fmt.Fprintf(&msg, "To: %s\r\n", n.cfg.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", Subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "Track '%s' by %s was played for the first time on %s.\r\n", fp.Title, fp.Artist, fp.Channel)
	fmt.Fprintf(&msg, "Aired at %s.\r\n", fp.Timestamp.UTC().Format(time.RFC3339))
	if n.cfg.ReportURL != "" {
		msg.WriteString("\r\n")
		fmt.Fprintf(&msg, "View the report: %s\r\n", n.cfg.ReportURL)
	}

	return msg.String()
}

// sendSMTP delivers msg. The context deadline, or the configured timeout,
// bounds the whole conversation.
func (n *EmailNotifier) sendSMTP(ctx context.Context, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	dialer := &net.Dialer{Timeout: n.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok && n.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: n.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(n.sender()); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(n.cfg.Recipient); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA closes; a failed QUIT does not undo it.
	_ = client.Quit()
	return nil
}

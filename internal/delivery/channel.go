// Package delivery sends composed drafts over SMTP and keeps an outcome log.
package delivery

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// Responses recorded on successful outcomes.
const (
	ResponseSent     = "Email sent successfully"
	ResponseTestMode = "TEST MODE - Email not actually sent"
)

const (
	defaultTimeout = 30 * time.Second
	authFailedCode = 535
)

// Channel delivers messages through one SMTP account.
type Channel struct {
	cfg     config.SMTPConfig
	timeout time.Duration
	delay   time.Duration
	rootCAs *x509.CertPool

	mu  sync.Mutex
	log []model.DeliveryOutcome
}

// New creates a Channel for cfg. A zero timeout means 30s.
func New(cfg config.SMTPConfig) *Channel {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Channel{
		cfg:     cfg,
		timeout: timeout,
		delay:   time.Duration(cfg.DelaySecs * float64(time.Second)),
	}
}

// connectError marks failures to reach the server at all.
type connectError struct{ err error }

func (e *connectError) Error() string { return e.err.Error() }
func (e *connectError) Unwrap() error { return e.err }

func (c *Channel) addr() string {
	return net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
}

// session dials, greets, upgrades, authenticates, runs fn and quits.
func (c *Channel) session(ctx context.Context, fn func(*smtp.Client) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return &connectError{err: eris.Wrapf(err, "delivery: dial %s", c.addr())}
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsCfg := &tls.Config{ServerName: c.cfg.Host, MinVersion: tls.VersionTLS12, RootCAs: c.rootCAs}
	client, err := c.newClient(conn, tlsCfg)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Auth(sasl.NewPlainClient("", c.cfg.Address, c.cfg.Password)); err != nil {
		return eris.Wrap(err, "delivery: auth")
	}

	if fn != nil {
		if err := fn(client); err != nil {
			return err
		}
	}

	if err := client.Quit(); err != nil {
		zap.L().Warn("delivery: quit failed", zap.Error(err))
	}
	return nil
}

// newClient greets the server, upgrading with STARTTLS when configured.
// Implicit TLS wraps the connection before the greeting.
func (c *Channel) newClient(conn net.Conn, tlsCfg *tls.Config) (*smtp.Client, error) {
	if c.cfg.UseTLS && !c.cfg.UseSSL {
		client, err := smtp.NewClientStartTLS(conn, tlsCfg)
		if err != nil {
			return nil, eris.Wrap(err, "delivery: starttls")
		}
		client.CommandTimeout = c.timeout
		return client, nil
	}

	if c.cfg.UseSSL {
		conn = tls.Client(conn, tlsCfg)
	}
	client := smtp.NewClient(conn)
	client.CommandTimeout = c.timeout
	if err := client.Hello(localName()); err != nil {
		_ = client.Close()
		return nil, eris.Wrap(err, "delivery: hello")
	}
	return client, nil
}

func localName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	return host
}

// Send delivers m in a fresh session. Failures are reported in the outcome,
// never as an error. Every outcome is appended to the log.
func (c *Channel) Send(ctx context.Context, m Message) model.DeliveryOutcome {
	start := time.Now()
	log := zap.L().With(zap.String("recipient", m.To))
	log.Info("delivery: sending")

	err := c.send(ctx, m, start)
	out := model.DeliveryOutcome{
		Timestamp:      time.Now(),
		RecipientEmail: m.To,
		Subject:        m.Subject,
		DeliveryTimeMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		out.ErrorMessage = err.Error()
		log.Error("delivery: send failed", zap.Error(err))
	} else {
		out.Success = true
		out.SMTPResponse = ResponseSent
		log.Info("delivery: sent", zap.Int64("delivery_time_ms", out.DeliveryTimeMS))
	}
	c.record(out)
	return out
}

func (c *Channel) send(ctx context.Context, m Message, now time.Time) error {
	raw, err := build(m, c.cfg.Address, now)
	if err != nil {
		return err
	}
	return c.session(ctx, func(client *smtp.Client) error {
		if err := client.Mail(c.cfg.Address, nil); err != nil {
			return eris.Wrap(err, "delivery: mail from")
		}
		if err := client.Rcpt(m.To, nil); err != nil {
			return eris.Wrap(err, "delivery: rcpt to")
		}
		wc, err := client.Data()
		if err != nil {
			return eris.Wrap(err, "delivery: data")
		}
		if _, err := wc.Write(raw); err != nil {
			_ = wc.Close()
			return eris.Wrap(err, "delivery: write data")
		}
		return eris.Wrap(wc.Close(), "delivery: close data")
	})
}

// SendBatch sends msgs in order, sleeping the configured delay between
// items. In dry-run mode nothing touches the network and each item is
// recorded as a simulated success. Cancellation stops the batch and returns
// the outcomes gathered so far.
func (c *Channel) SendBatch(ctx context.Context, msgs []Message, dryRun bool) []model.DeliveryOutcome {
	zap.L().Info("delivery: batch starting", zap.Int("count", len(msgs)), zap.Bool("dry_run", dryRun))

	out := make([]model.DeliveryOutcome, 0, len(msgs))
	for i, m := range msgs {
		if ctx.Err() != nil {
			break
		}
		if dryRun {
			o := model.DeliveryOutcome{
				Timestamp:      time.Now(),
				RecipientEmail: m.To,
				Subject:        m.Subject,
				Success:        true,
				SMTPResponse:   ResponseTestMode,
			}
			zap.L().Info("delivery: test mode, not sent", zap.String("recipient", m.To))
			c.record(o)
			out = append(out, o)
		} else {
			out = append(out, c.Send(ctx, m))
		}

		if i < len(msgs)-1 && c.delay > 0 {
			if err := resilience.Sleep(ctx, c.delay); err != nil {
				break
			}
		}
	}

	zap.L().Info("delivery: batch complete",
		zap.Int("sent", len(out)),
		zap.Float64("success_rate", successRate(out)),
	)
	return out
}

// TestConnection authenticates against the server without sending mail.
func (c *Channel) TestConnection(ctx context.Context) (bool, string) {
	zap.L().Info("delivery: testing connection", zap.String("addr", c.addr()))

	err := c.session(ctx, nil)
	if err == nil {
		msg := "SMTP connection successful"
		zap.L().Info(msg)
		return true, msg
	}

	var msg string
	var smtpErr *smtp.SMTPError
	var connErr *connectError
	switch {
	case errors.As(err, &connErr):
		msg = fmt.Sprintf("Failed to connect to SMTP server %s:%d", c.cfg.Host, c.cfg.Port)
	case errors.As(err, &smtpErr) && smtpErr.Code == authFailedCode:
		msg = "SMTP authentication failed. Check email and password."
	default:
		msg = fmt.Sprintf("SMTP connection test failed: %v", err)
	}
	zap.L().Error("delivery: connection test failed", zap.String("message", msg), zap.Error(err))
	return false, msg
}

func (c *Channel) record(o model.DeliveryOutcome) {
	c.mu.Lock()
	c.log = append(c.log, o)
	c.mu.Unlock()
}

func successRate(out []model.DeliveryOutcome) float64 {
	if len(out) == 0 {
		return 0
	}
	ok := 0
	for _, o := range out {
		if o.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(out)) * 100
}

package delivery

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/config"
)

const (
	testUser     = "sender@example.test"
	testPassword = "app-password"
)

type received struct {
	From string
	To   []string
	Data []byte
}

// fakeServer is an in-process SMTP server accepting one PLAIN account.
type fakeServer struct {
	mu       sync.Mutex
	messages []received
	rejectTo string
	host     string
	port     int
}

func (f *fakeServer) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &fakeSession{srv: f}, nil
}

func (f *fakeServer) Messages() []received {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]received(nil), f.messages...)
}

type fakeSession struct {
	srv    *fakeServer
	authed bool
	msg    received
}

func (s *fakeSession) AuthMechanisms() []string { return []string{sasl.Plain} }

func (s *fakeSession) Auth(_ string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != testUser || password != testPassword {
			return smtp.ErrAuthFailed
		}
		s.authed = true
		return nil
	}), nil
}

func (s *fakeSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.authed {
		return smtp.ErrAuthRequired
	}
	s.msg.From = from
	return nil
}

func (s *fakeSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if s.srv.rejectTo != "" && to == s.srv.rejectTo {
		return &smtp.SMTPError{Code: 550, EnhancedCode: smtp.EnhancedCode{5, 1, 1}, Message: "mailbox unavailable"}
	}
	s.msg.To = append(s.msg.To, to)
	return nil
}

func (s *fakeSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.msg.Data = b
	s.srv.mu.Lock()
	s.srv.messages = append(s.srv.messages, s.msg)
	s.srv.mu.Unlock()
	return nil
}

func (s *fakeSession) Reset()        { s.msg = received{} }
func (s *fakeSession) Logout() error { return nil }

func startServer(t *testing.T) *fakeServer {
	t.Helper()
	return serve(t, nil)
}

// startTLSServer serves STARTTLS with a self-signed certificate for
// 127.0.0.1 and returns a pool trusting it.
func startTLSServer(t *testing.T) (*fakeServer, *x509.CertPool) {
	t.Helper()
	ts := httptest.NewUnstartedServer(http.NotFoundHandler())
	ts.StartTLS()
	t.Cleanup(ts.Close)

	pool := x509.NewCertPool()
	pool.AddCert(ts.Certificate())
	tlsCfg := &tls.Config{Certificates: ts.TLS.Certificates, MinVersion: tls.VersionTLS12}
	return serve(t, tlsCfg), pool
}

func serve(t *testing.T, tlsCfg *tls.Config) *fakeServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	backend := &fakeServer{}
	srv := smtp.NewServer(backend)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true
	srv.ReadTimeout = 5 * time.Second
	srv.WriteTimeout = 5 * time.Second
	srv.TLSConfig = tlsCfg

	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	host, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	backend.host = host
	backend.port, err = strconv.Atoi(port)
	require.NoError(t, err)
	return backend
}

func (f *fakeServer) config() config.SMTPConfig {
	return config.SMTPConfig{
		Host:        f.host,
		Port:        f.port,
		Address:     testUser,
		Password:    testPassword,
		SenderName:  "Dana Reyes",
		TimeoutSecs: 5,
	}
}

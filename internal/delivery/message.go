package delivery

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Mailer is the X-Mailer header value stamped on every message.
const Mailer = "Personalized Email Automation Tool"

const base64LineLen = 76

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	Body        string
	SenderName  string
	HTMLBody    string
	Attachments []string
}

// build renders m as an RFC 5322 message from the from address. Attachment
// paths that cannot be read are skipped with a warning.
func build(m Message, from string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	fromHeader := from
	if m.SenderName != "" {
		fromHeader = (&mail.Address{Name: m.SenderName, Address: from}).String()
	}

	top := multipart.NewWriter(&buf)
	topType := "multipart/alternative"
	attachments := readable(m.Attachments)
	if len(attachments) > 0 {
		topType = "multipart/mixed"
	}

	headers := [][2]string{
		{"From", fromHeader},
		{"To", m.To},
		{"Subject", mime.QEncoding.Encode("utf-8", m.Subject)},
		{"Message-ID", messageID(from)},
		{"Date", now.Format(time.RFC1123Z)},
		{"X-Mailer", Mailer},
		{"MIME-Version", "1.0"},
		{"Content-Type", fmt.Sprintf("%s; boundary=%q", topType, top.Boundary())},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
	}
	buf.WriteString("\r\n")

	if len(attachments) > 0 {
		var inner bytes.Buffer
		alt := multipart.NewWriter(&inner)
		if err := writeAlternatives(alt, m); err != nil {
			return nil, err
		}
		if err := alt.Close(); err != nil {
			return nil, eris.Wrap(err, "delivery: close alternative part")
		}
		part, err := top.CreatePart(textproto.MIMEHeader{
			"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
		})
		if err != nil {
			return nil, eris.Wrap(err, "delivery: create alternative part")
		}
		if _, err := part.Write(inner.Bytes()); err != nil {
			return nil, eris.Wrap(err, "delivery: write alternative part")
		}
		for _, path := range attachments {
			if err := writeAttachment(top, path); err != nil {
				zap.L().Warn("delivery: attachment skipped", zap.String("path", path), zap.Error(err))
			}
		}
	} else if err := writeAlternatives(top, m); err != nil {
		return nil, err
	}

	if err := top.Close(); err != nil {
		return nil, eris.Wrap(err, "delivery: close message")
	}
	return buf.Bytes(), nil
}

// writeAlternatives writes the plain part and the optional HTML part.
func writeAlternatives(w *multipart.Writer, m Message) error {
	if err := writeText(w, "text/plain", m.Body); err != nil {
		return err
	}
	if m.HTMLBody != "" {
		if err := writeText(w, "text/html", m.HTMLBody); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType + `; charset="utf-8"`},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return eris.Wrapf(err, "delivery: create %s part", contentType)
	}
	return writeBase64(part, []byte(body))
}

func writeAttachment(w *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "delivery: read attachment %s", path)
	}
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(path)})},
	})
	if err != nil {
		return eris.Wrapf(err, "delivery: create attachment part %s", path)
	}
	if err := writeBase64(part, data); err != nil {
		return err
	}
	zap.L().Debug("delivery: attachment added", zap.String("path", path))
	return nil
}

// writeBase64 writes data base64-encoded in CRLF-separated lines.
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 0 {
		n := min(base64LineLen, len(enc))
		if _, err := io.WriteString(w, enc[:n]+"\r\n"); err != nil {
			return eris.Wrap(err, "delivery: write base64")
		}
		enc = enc[n:]
	}
	return nil
}

// readable keeps the attachment paths that exist.
func readable(paths []string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			zap.L().Warn("delivery: attachment not found", zap.String("path", p))
			continue
		}
		out = append(out, p)
	}
	return out
}

func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
)

// SMTPIngest is an SMTP front-end that tags inbound mail with the triage
// verdict and relays it upstream, in the style of a Postfix content filter
type SMTPIngest struct {
	service          *core.TriageService
	logger           *zap.Logger
	listenAddr       string
	server           *smtp.Server
	intentHeader     string
	priorityHeader   string
	sourceHeader     string
	confidenceHeader string
	relayAddr        string
	relayPort        int
	relayEnabled     bool
	subjectPrefix    string
	modifySubject    bool
}

// NewSMTPIngest creates a new SMTP ingestion front-end
func NewSMTPIngest(
	service *core.TriageService,
	logger *zap.Logger,
	listenAddr string,
	intentHeader string,
	priorityHeader string,
	sourceHeader string,
	confidenceHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *SMTPIngest {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[URGENT] "
	}

	return &SMTPIngest{
		service:          service,
		logger:           logger,
		listenAddr:       listenAddr,
		intentHeader:     intentHeader,
		priorityHeader:   priorityHeader,
		sourceHeader:     sourceHeader,
		confidenceHeader: confidenceHeader,
		relayAddr:        relayAddr,
		relayPort:        relayPort,
		relayEnabled:     relayEnabled,
		subjectPrefix:    subjectPrefix,
		modifySubject:    modifySubject,
	}
}

// Start starts the SMTP server
func (f *SMTPIngest) Start() error {
	f.server = smtp.NewServer(&smtpBackend{ingest: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP ingest starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (f *SMTPIngest) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// Process classifies an email directly, bypassing the SMTP transport.
// Used for testing and direct submissions.
func (f *SMTPIngest) Process(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	return f.service.Classify(ctx, email)
}

// relayMessage hands the tagged message to the upstream SMTP listener
func (f *SMTPIngest) relayMessage(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *SMTPIngest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingest:     b.ingest,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest     *SMTPIngest
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the tagger)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message, injects the triage headers and relays the
// tagged message upstream. Classification failures never block delivery.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.ingest.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.ingest.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	email := &core.Email{
		Headers:    make(map[string][]string),
		Body:       textContent,
		From:       s.sender,
		To:         s.recipients,
		ReceivedAt: time.Now(),
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
		if strings.EqualFold(key, "Subject") && len(values) > 0 {
			email.Subject = decodeEncodedHeader(values[0])
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var modifiedEmail bytes.Buffer

	result, classifyErr := s.ingest.service.Classify(ctx, email)
	if classifyErr != nil {
		// Input validation failure: tag the message with the error and
		// let it pass untouched otherwise
		if !errors.Is(classifyErr, core.ErrInvalidEmail) {
			s.ingest.logger.Error("Unexpected classification error",
				zap.Error(classifyErr),
				zap.String("sender", email.From))
		}
		fmt.Fprintf(&modifiedEmail, "X-Mailsift-Error: %s\r\n", classifyErr.Error())
	} else {
		verdict := result.Verdict
		fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.ingest.intentHeader, verdict.Intent)
		fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.ingest.priorityHeader, verdict.Priority)
		fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.ingest.sourceHeader, verdict.Source)
		fmt.Fprintf(&modifiedEmail, "%s: %.4f\r\n", s.ingest.confidenceHeader, verdict.Confidence)
	}

	s.writeHeaders(&modifiedEmail, msg, result)
	fmt.Fprintf(&modifiedEmail, "\r\n")
	writeOriginalBody(&modifiedEmail, rawData, msg)

	if s.ingest.relayEnabled {
		if err := s.ingest.relayMessage(s.sender, s.recipients, modifiedEmail.Bytes()); err != nil {
			s.ingest.logger.Error("Failed to relay tagged email",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	}

	if result != nil {
		s.ingest.logger.Info("Tagged email",
			zap.String("from", email.From),
			zap.String("intent", string(result.Verdict.Intent)),
			zap.String("priority", string(result.Verdict.Priority)),
			zap.String("source", string(result.Verdict.Source)))
	}

	return nil
}

// writeHeaders copies the original headers, prefixing the subject of
// urgent mail when subject modification is enabled
func (s *smtpSession) writeHeaders(buf *bytes.Buffer, msg *mail.Message, result *core.ClassificationResult) {
	prefixSubject := s.ingest.modifySubject &&
		s.ingest.subjectPrefix != "" &&
		result != nil &&
		result.Verdict.Priority == core.PriorityUrgent

	for key, values := range msg.Header {
		if prefixSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(buf, "%s: %s\r\n", key, value)
		}
	}

	if prefixSubject {
		subject := decodeEncodedHeader(msg.Header.Get("Subject"))
		if !strings.HasPrefix(subject, s.ingest.subjectPrefix) {
			subject = s.ingest.subjectPrefix + subject
		}
		fmt.Fprintf(buf, "Subject: %s\r\n", subject)
	}
}

// writeOriginalBody appends the raw body, preserving MIME parts and
// attachments
func writeOriginalBody(buf *bytes.Buffer, rawData []byte, msg *mail.Message) {
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		buf.Write(rawData[idx+4:])
		return
	}
	if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		buf.Write(rawData[idx+2:])
		return
	}
	if body, err := io.ReadAll(msg.Body); err == nil {
		buf.Write(body)
	}
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

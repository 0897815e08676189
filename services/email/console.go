package emailsvc

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/escondite/core"
)

// consoleService writes MIME messages to out instead of delivering them.
type consoleService struct {
	appName          string
	defaultFromEmail mail.Address
	subjPrefix       string
	out              io.Writer
	mu               sync.Mutex // guards out
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config, out io.Writer) core.EmailService {
	return newConsoleService(conf, out)
}

func newConsoleService(conf *core.Config, out io.Writer) *consoleService {
	return &consoleService{
		appName:          conf.AppName,
		defaultFromEmail: conf.Email.DefaultFrom,
		subjPrefix:       "[" + conf.AppName + "] ",
		out:              out,
	}
}

func (svc *consoleService) SendMessages(ctx context.Context, messages ...*core.EmailMessage) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, msg := range messages {
		msg := msg
		g.Go(func() error {
			_, err := svc.sendMessage(ctx, msg)
			return err
		})
	}
	return g.Wait()
}

// sendMessage reports whether msg had anything worth sending.
func (svc *consoleService) sendMessage(ctx context.Context, msg *core.EmailMessage) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := msg.Render(svc.appName); err != nil {
		return false, errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !(msg.HasContent() || msg.HasAttachments()) {
		return false, nil
	}
	body, err := svc.build(*msg)
	if err != nil {
		return false, err
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	_, err = io.WriteString(svc.out, body+"\r\n")
	return true, errors.Wrap(err, "writing email")
}

func (svc *consoleService) build(msg core.EmailMessage) (string, error) {
	body := new(strings.Builder)

	// Write mail header
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail.String())
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		_, _ = fmt.Fprintf(body, "CC: %s\r\n", joinAddresses(msg.Cc))
	}
	if len(msg.Bcc) > 0 {
		_, _ = fmt.Fprintf(body, "BCC: %s\r\n", joinAddresses(msg.Bcc))
	}

	var mixedW *multipart.Writer
	altW := multipart.NewWriter(body)

	if msg.HasAttachments() {
		mixedW = multipart.NewWriter(body)
		_, _ = fmt.Fprintf(body, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mixedW.Boundary())
		if _, err := mixedW.CreatePart(textproto.MIMEHeader{"Content-Type": {"multipart/alternative; boundary=" + altW.Boundary()}}); err != nil {
			return "", errors.Wrap(err, "creating multipart/alternative part")
		}
	} else {
		_, _ = fmt.Fprintf(body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", altW.Boundary())
	}

	w, err := altW.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
	if err != nil {
		return "", errors.Wrap(err, "creating text/plain part")
	}
	_, _ = fmt.Fprintf(w, "%s\r\n", msg.TextContent)

	if msg.HTMLContent != "" {
		w, err = altW.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=utf-8"}})
		if err != nil {
			return "", errors.Wrap(err, "creating text/html part")
		}
		_, _ = fmt.Fprintf(w, "%s\r\n", msg.HTMLContent)
	}
	if err = altW.Close(); err != nil {
		return "", err
	}

	if mixedW != nil {
		for _, at := range msg.Attachments {
			w, err = mixedW.CreatePart(textproto.MIMEHeader{
				"Content-Type":              {at.ContentType},
				"Content-Transfer-Encoding": {"base64"},
				"Content-Disposition":       {"attachment; filename=" + at.Filename}})
			if err != nil {
				return "", errors.Wrap(err, "creating "+at.ContentType+" part")
			}
			_, _ = fmt.Fprintf(w, "%s\r\n", at.Content.String())
		}
		if err = mixedW.Close(); err != nil {
			return "", err
		}
	}
	return body.String(), nil
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}

// ConsoleServiceMock renders messages without printing them and keeps those it would have sent.
type ConsoleServiceMock struct {
	svc          *consoleService
	mu           sync.Mutex
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*ConsoleServiceMock)(nil)

func NewConsoleServiceMock(conf *core.Config) *ConsoleServiceMock {
	return &ConsoleServiceMock{svc: newConsoleService(conf, io.Discard)}
}

func (m *ConsoleServiceMock) SendMessages(ctx context.Context, messages ...*core.EmailMessage) error {
	for _, msg := range messages {
		// run synchronously
		sent, err := m.svc.sendMessage(ctx, msg)
		if err != nil {
			return err
		}
		if sent {
			m.mu.Lock()
			m.SentMessages = append(m.SentMessages, *msg)
			m.mu.Unlock()
		}
	}
	return nil
}

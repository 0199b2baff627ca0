// Package notify sends a one-line summary of each lifecycle operation to
// the configured shoutrrr services.
package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// DefaultTitle is used when no title is configured.
const DefaultTitle = "composectl"

// LocalLog is the logger for delivery problems.
var LocalLog = logrus.WithField("notify", "no")

type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// Notifier delivers messages to every configured service.
// The zero value and a nil *Notifier discard messages.
type Notifier struct {
	urls   []string
	router router
	params *shoutrrrTypes.Params
}

// New creates a Notifier for urls. With no urls it returns a Notifier
// that sends nothing.
func New(urls []string, title string) (*Notifier, error) {
	urls = compact(urls)
	if len(urls) == 0 {
		return &Notifier{}, nil
	}

	logger := log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)
	r, err := shoutrrr.NewSender(logger, urls...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notifications: %w", err)
	}

	if title == "" {
		title = DefaultTitle
	}
	params := &shoutrrrTypes.Params{}
	params.SetTitle(title)

	return &Notifier{urls: urls, router: r, params: params}, nil
}

// Enabled reports whether any service is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.router != nil
}

// Send delivers message. Failures are logged and never returned.
func (n *Notifier) Send(message string) {
	if !n.Enabled() {
		return
	}
	for i, err := range n.router.Send(message, n.params) {
		if err != nil {
			LocalLog.WithFields(logrus.Fields{
				"service": Scheme(n.urls[i]),
				"index":   i,
			}).WithError(err).Error("Failed to send notification")
		}
	}
}

// Success sends the summary of a completed operation.
func (n *Notifier) Success(project, operation, summary string) {
	n.Send(Message(project, operation, summary, nil))
}

// Failure sends the error that aborted an operation.
func (n *Notifier) Failure(project, operation string, err error) {
	n.Send(Message(project, operation, "", err))
}

// Message formats a notification line.
func Message(project, operation, summary string, err error) string {
	if err != nil {
		return fmt.Sprintf("[%s] %s failed: %v", project, operation, err)
	}
	return fmt.Sprintf("[%s] %s: %s", project, operation, summary)
}

// Scheme returns the service scheme of a shoutrrr URL, or "invalid".
func Scheme(url string) string {
	end := strings.Index(url, ":")
	if end <= 0 {
		return "invalid"
	}
	return url[:end]
}

func compact(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

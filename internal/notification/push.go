package notification

import (
	"context"
	"io"
	"log"
	"log/slog"
	"slices"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/soundguard/soundguard-go/internal/analysis"
	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/logging"
)

// PushPublisher forwards danger events to external push services via
// shoutrrr. One sender covers all configured URLs; delivery is best-effort
// and a failed URL never blocks the others.
type PushPublisher struct {
	sender *router.ServiceRouter
	urls   []string
	logger *slog.Logger
}

// NewPushPublisher creates a push publisher for the configured URLs. It
// returns nil when no URLs are configured; callers treat a nil publisher as
// push disabled.
func NewPushPublisher(settings *conf.Settings) (*PushPublisher, error) {
	urls := settings.Notification.PushURLs
	if len(urls) == 0 {
		return nil, nil
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, errors.New(err).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Context("operation", "create_push_sender").
			Build()
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	logger := logging.ForService("notification")
	if logger == nil {
		logger = slog.Default().With("service", "notification")
	}

	return &PushPublisher{
		sender: sender,
		urls:   slices.Clone(urls),
		logger: logger,
	}, nil
}

// Publish sends the danger event to every configured push URL.
func (p *PushPublisher) Publish(_ context.Context, event analysis.EventRecord) error {
	params := stypes.Params{}
	params.SetTitle("⚠️ 위험 소리 감지")

	body := event.Zone + " " + event.Area + ": " + event.Message

	var firstErr error
	for _, err := range p.sender.Send(body, &params) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return errors.New(firstErr).
			Component("notification").
			Category(errors.CategoryPush).
			Context("operation", "push_send").
			Build()
	}
	return nil
}

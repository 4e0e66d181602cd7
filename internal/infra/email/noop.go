package email

import (
	"context"

	"github.com/rs/zerolog"

	"docstudio/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer logs instead of sending; used when no email region is
// configured (local development).
type NoopMailer struct {
	log *zerolog.Logger
}

func NewNoopMailer(logger *zerolog.Logger) *NoopMailer {
	return &NoopMailer{log: logger}
}

func (m *NoopMailer) SendDownloadLink(_ context.Context, msg adapter.DownloadEmail) error {
	m.log.Info().Str("to", msg.To).Str("document", msg.DocumentName).
		Str("url", msg.DownloadURL).Msg("email delivery disabled, skipping download link")
	return nil
}

package adapter

import "context"

// DownloadEmail is the message sent after a successful render for a
// completed purchase.
type DownloadEmail struct {
	To           string
	Name         string
	DocumentName string
	DownloadURL  string
}

// Mailer delivers outbound email. Delivery failures are logged by the
// caller and never fail the pipeline that triggered them.
type Mailer interface {
	SendDownloadLink(ctx context.Context, msg DownloadEmail) error
}

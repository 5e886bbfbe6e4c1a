// Package connectors fetches supplier price emails from mail
// providers and lands them as raw .eml files plus an emails row.
package connectors

import "github.com/jdlax00/jenkins-oil-pricing-db/internal"

type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}

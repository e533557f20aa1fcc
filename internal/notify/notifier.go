// Package notify sends change alerts by mail: one message per batch
// run summarizing every source that gained rows, with the new entries
// attached as CSV.
package notify

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tablewarden/tablewarden/internal/config"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
	"github.com/tablewarden/tablewarden/pkg/tables"
)

// Report is one source's contribution to a change notification.
type Report struct {
	Source     string
	TotalRows  int
	NewRows    int
	NewEntries *tables.Table
}

// Notifier formats and sends change notifications over SMTP.
type Notifier struct {
	smtp       config.SMTP
	senderName string
	recipients []string
	titler     cases.Caser
}

// New returns a notifier. It is inert (Enabled() == false) until SMTP
// credentials and at least one recipient are configured.
func New(smtp config.SMTP, senderName string, recipients []string) *Notifier {
	if senderName == "" {
		senderName = "Tablewarden Alerts"
	}
	return &Notifier{
		smtp:       smtp,
		senderName: senderName,
		recipients: recipients,
		titler:     cases.Title(language.English),
	}
}

// Enabled reports whether the notifier has enough configuration to send.
func (n *Notifier) Enabled() bool {
	return n.smtp.Username != "" && n.smtp.Password != "" && len(n.recipients) > 0
}

// SendChanges mails a summary of the run's changed sources. Disabled
// notifiers return ErrDisabled so callers can log and move on.
func (n *Notifier) SendChanges(ctx context.Context, runID string, reports []Report) error {
	if !n.Enabled() {
		logging.Ctx(ctx).Info().Msg("mail notifications disabled, skipping")
		return errors.ErrDisabled
	}
	if len(reports) == 0 {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(n.senderName, n.smtp.Sender); err != nil {
		return &errors.ConfigError{Component: "notify", Message: "invalid sender address", Err: err}
	}
	if err := msg.To(n.recipients...); err != nil {
		return &errors.ConfigError{Component: "notify", Message: "invalid recipient address", Err: err}
	}

	msg.Subject(n.subject(reports))
	msg.SetBodyString(mail.TypeTextPlain, n.textBody(runID, reports))
	msg.AddAlternativeString(mail.TypeTextHTML, n.htmlBody(runID, reports))

	for _, report := range reports {
		if report.NewEntries.Len() == 0 {
			continue
		}
		name := fmt.Sprintf("%s_new_entries_%s.csv", report.Source, time.Now().Format("20060102"))
		if err := msg.AttachReader(name, bytes.NewReader(encodeCSV(report.NewEntries))); err != nil {
			return fmt.Errorf("attaching %s: %w", name, err)
		}
	}

	client, err := mail.NewClient(n.smtp.Host,
		mail.WithPort(n.smtp.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.smtp.Username),
		mail.WithPassword(n.smtp.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return &errors.ConfigError{Component: "notify", Message: "cannot build mail client", Err: err}
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending change notification: %w", err)
	}

	logging.Ctx(ctx).Info().
		Int("sources", len(reports)).
		Int("recipients", len(n.recipients)).
		Msg("change notification sent")
	return nil
}

// DisplayName renders a source name for human-facing output.
func (n *Notifier) DisplayName(source string) string {
	return n.titler.String(strings.ReplaceAll(source, "_", " "))
}

func (n *Notifier) subject(reports []Report) string {
	total := 0
	for _, r := range reports {
		total += r.NewRows
	}
	if len(reports) == 1 {
		return fmt.Sprintf("%s: %d new entries", n.DisplayName(reports[0].Source), total)
	}
	return fmt.Sprintf("Data update: %d new entries across %d sources", total, len(reports))
}

func (n *Notifier) textBody(runID string, reports []Report) string {
	var sb strings.Builder
	sb.WriteString("New entries were detected during the latest data run.\n\n")
	for _, r := range reports {
		fmt.Fprintf(&sb, "- %s: %d new of %d total rows\n", n.DisplayName(r.Source), r.NewRows, r.TotalRows)
	}
	fmt.Fprintf(&sb, "\nRun %s at %s\n", runID, time.Now().Format(time.RFC3339))
	sb.WriteString("New entries are attached as CSV.\n")
	return sb.String()
}

func (n *Notifier) htmlBody(runID string, reports []Report) string {
	var sb strings.Builder
	sb.WriteString("<h2>Data update</h2><ul>")
	for _, r := range reports {
		fmt.Fprintf(&sb, "<li><strong>%s</strong>: %d new of %d total rows</li>",
			n.DisplayName(r.Source), r.NewRows, r.TotalRows)
	}
	sb.WriteString("</ul>")
	fmt.Fprintf(&sb, "<p><small>Run %s</small></p>", runID)
	return sb.String()
}

// encodeCSV renders a table for attachment.
func encodeCSV(t *tables.Table) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(t.Columns)
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = row.Get(col)
		}
		_ = w.Write(cells)
	}
	w.Flush()
	return buf.Bytes()
}

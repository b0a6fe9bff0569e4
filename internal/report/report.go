// Package report emails the run summary to the configured recipients.
package report

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"spupload/internal/runlog"
	"spupload/pkg/graph"
	"spupload/pkg/logger"
	"spupload/pkg/problems"
)

const (
	subjectNormal = "SharePoint Upload Report - "
	subjectFatal  = "FATAL ERROR - SharePoint Upload - "
	introNormal   = "SharePoint file upload process finished."
	introFatal    = "A fatal error occurred during the SharePoint file upload process."

	// dd-mm-yyyy HH:MM:SS
	dateLayout = "02-01-2006 15:04:05"
)

// Mailer delivers one message from sender's mailbox.
type Mailer interface {
	SendMail(ctx context.Context, token, sender string, msg graph.MailMessage) error
}

type Reporter struct {
	mailer     Mailer
	sender     string
	recipients []string
	now        func() time.Time
	log        *zap.SugaredLogger
}

type Option func(*Reporter)

func WithClock(now func() time.Time) Option { return func(r *Reporter) { r.now = now } }

func WithLogger(log *zap.SugaredLogger) Option { return func(r *Reporter) { r.log = log } }

func New(m Mailer, sender string, recipients []string, opts ...Option) *Reporter {
	r := &Reporter{mailer: m, sender: strings.TrimSpace(sender), recipients: recipients, now: time.Now, log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Configured reports whether a sender and at least one recipient are set.
func (r *Reporter) Configured() bool {
	return r.sender != "" && len(r.recipients) > 0
}

// Subject is the mail subject for a report composed at t.
func Subject(isError bool, t time.Time) string {
	if isError {
		return subjectFatal + t.Format(dateLayout)
	}
	return subjectNormal + t.Format(dateLayout)
}

// Body is the intro, a blank line and the execution summary.
func Body(isError bool, lines []string) string {
	intro := introNormal
	if isError {
		intro = introFatal
	}
	return intro + "\n\nExecution summary:\n" + strings.Join(lines, "\n")
}

// Send mails the lines collected so far in rl. Delivery problems are
// appended to rl and returned as a ReportFailure; the caller decides
// whether to care. An unconfigured reporter appends a notice and returns nil.
func (r *Reporter) Send(ctx context.Context, token string, rl *runlog.Log, isError bool) error {
	if !r.Configured() {
		rl.Info("-> Email settings not configured. Skipping report.")
		return nil
	}
	msg := graph.NewMailMessage(Subject(isError, r.now()), Body(isError, rl.Lines()), false, r.recipients)
	if err := r.mailer.SendMail(ctx, token, r.sender, msg); err != nil {
		rl.Errorf("[REPORT ERROR] %v", err)
		return problems.New(problems.ReportFailure, "send report", err)
	}
	r.log.Debugw("report delivered", "sender", logger.RedactEmail(r.sender), "to", logger.RedactEmails(r.recipients), "fatal", isError)
	if isError {
		rl.Info("-> Error email sent.")
	} else {
		rl.Info("-> Report email sent.")
	}
	return nil
}

package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"spupload/internal/routing"
	"spupload/internal/runlog"
	"spupload/pkg/graph"
	"spupload/pkg/metrics"
	"spupload/pkg/problems"
	"spupload/pkg/tracing"
)

// Putter uploads one file's content to a drive path.
type Putter interface {
	PutContent(ctx context.Context, token, siteID, driveID, destPath string, content io.Reader) (graph.DriveItem, error)
}

// Target is the resolved destination of a run.
type Target struct {
	Token   string
	SiteID  string
	DriveID string
}

type Outcome string

const (
	OK      Outcome = "ok"
	Ignored Outcome = "ignored"
	Failed  Outcome = "error"
)

// Record is the result of one file. Message is the run log line.
type Record struct {
	Filename  string
	Subfolder string
	Outcome   Outcome
	Message   string
	Err       error
}

// Result keeps successes and failures (errors and ignored files) in the
// order files were processed.
type Result struct {
	Successes []Record
	Failures  []Record
}

type Uploader struct {
	client  Putter
	rules   routing.Rules
	metrics *metrics.Recorder
	now     func() time.Time
}

type Option func(*Uploader)

// WithClock overrides the clock that decides what "today" is.
func WithClock(now func() time.Time) Option { return func(u *Uploader) { u.now = now } }

func WithMetrics(m *metrics.Recorder) Option { return func(u *Uploader) { u.metrics = m } }

func New(client Putter, rules routing.Rules, opts ...Option) *Uploader {
	u := &Uploader{client: client, rules: rules, now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Run uploads every regular file in folder modified today (local calendar
// date). Routing misses and failed uploads are recorded and the pass goes on;
// only an unreadable folder stops it. Files are visited in filename order.
func (u *Uploader) Run(ctx context.Context, folder string, target Target, rl *runlog.Log) (Result, error) {
	var res Result
	if folder == "" {
		return res, problems.Errorf(problems.SourceFailure, "list source", "SOURCE_FOLDER is not set")
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		return res, problems.New(problems.SourceFailure, "list source", err)
	}
	today := u.now()

	for _, e := range entries {
		full := filepath.Join(folder, e.Name())
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !sameDay(info.ModTime(), today) {
			continue
		}

		rec := u.one(ctx, full, info, target)
		switch rec.Outcome {
		case OK:
			rl.Info(rec.Message)
			res.Successes = append(res.Successes, rec)
			u.metrics.File(metrics.OutcomeUploaded, info.Size())
		case Ignored:
			rl.Warn(rec.Message)
			res.Failures = append(res.Failures, rec)
			u.metrics.File(metrics.OutcomeIgnored, 0)
		default:
			rl.Error(rec.Message)
			res.Failures = append(res.Failures, rec)
			u.metrics.File(metrics.OutcomeFailed, 0)
		}
	}
	return res, nil
}

func (u *Uploader) one(ctx context.Context, full string, info os.FileInfo, target Target) Record {
	name := info.Name()
	sub, ok := u.rules.Route(name)
	if !ok {
		return Record{
			Filename: name,
			Outcome:  Ignored,
			Message:  fmt.Sprintf("[WARN] %s: no mapping rule found. File ignored.", name),
			Err:      problems.Errorf(problems.RoutingMiss, "route", "no rule for %s", name),
		}
	}

	dest := sub + "/" + name
	ctx, span := tracing.Tracer().Start(ctx, "upload.file")
	span.SetAttributes(attribute.String("file.name", name), attribute.String("file.destination", dest), attribute.Int64("file.size", info.Size()))
	defer span.End()

	if err := u.put(ctx, full, dest, target); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Record{
			Filename:  name,
			Subfolder: sub,
			Outcome:   Failed,
			Message:   fmt.Sprintf("[ERROR] %s: %v", name, err),
			Err:       problems.New(problems.UploadFailure, "upload "+dest, err),
		}
	}
	return Record{
		Filename:  name,
		Subfolder: sub,
		Outcome:   OK,
		Message:   fmt.Sprintf("[OK] %s → %s", name, sub),
	}
}

// put streams one file and closes it before returning.
func (u *Uploader) put(ctx context.Context, full, dest string, target Target) error {
	f, err := os.Open(full)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = u.client.PutContent(ctx, target.Token, target.SiteID, target.DriveID, dest, f)
	return err
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Package orchestrator drives one upload run: token, site and drive
// resolution, the upload pass, the report, and the run log file.
package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"spupload/internal/runlog"
	"spupload/internal/upload"
	"spupload/pkg/graph"
	"spupload/pkg/metrics"
	"spupload/pkg/problems"
	"spupload/pkg/tracing"
)

type State string

const (
	Init          State = "init"
	Authenticated State = "authenticated"
	Resolved      State = "resolved"
	Uploaded      State = "uploaded"
	Reported      State = "reported"
	Done          State = "done"
	Fatal         State = "fatal"
)

// Collaborators. The graph and upload packages satisfy these.
type (
	TokenSource interface {
		Token(ctx context.Context, cred graph.Credential) (string, error)
	}
	Resolver interface {
		SiteID(ctx context.Context, token, domain, siteName string) (string, error)
		DriveID(ctx context.Context, token, siteID, driveName string) (string, error)
	}
	FileUploader interface {
		Run(ctx context.Context, folder string, target upload.Target, rl *runlog.Log) (upload.Result, error)
	}
	Reporter interface {
		Send(ctx context.Context, token string, rl *runlog.Log, isError bool) error
	}
)

// Settings are the per-run inputs taken from configuration.
type Settings struct {
	Credential   graph.Credential
	Domain       string
	SiteName     string
	DriveName    string
	SourceFolder string
}

type Step struct {
	State State     `json:"state"`
	At    time.Time `json:"at"`
}

// RunResult summarizes a run. Status is Done or Fatal.
type RunResult struct {
	RunID    string             `json:"run_id"`
	Status   State              `json:"status"`
	Steps    []Step             `json:"steps"`
	Problems []problems.Problem `json:"problems,omitempty"`
	Uploaded int                `json:"uploaded"`
	Failed   int                `json:"failed"`
	LogPath  string             `json:"log_path"`
}

type Service struct {
	Tokens   TokenSource
	Resolver Resolver
	Uploader FileUploader
	Reporter Reporter
	Settings Settings

	// Preflight, when set, fails the run at Init. Setup errors found before
	// the run (an invalid rules file) go through the same fatal path.
	Preflight error

	// LogPath names the run log file for a run started at the given time.
	LogPath func(start time.Time) string

	Log     *zap.SugaredLogger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

type run struct {
	res   RunResult
	rl    *runlog.Log
	token string
	state State
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *zap.SugaredLogger {
	if s.Log == nil {
		return zap.NewNop().Sugar()
	}
	return s.Log
}

// Run performs one run. It never returns an error: failures end in the Fatal
// state, are listed in Problems, and the log file is written regardless.
func (s *Service) Run(ctx context.Context) RunResult {
	start := s.now()
	log := s.logger()
	r := &run{res: RunResult{RunID: uuid.NewString()}}
	log = log.With("run_id", r.res.RunID)
	r.rl = runlog.New(log)
	r.enter(Init, start)

	ctx, span := tracing.Tracer().Start(ctx, "spupload.run")
	span.SetAttributes(attribute.String("run.id", r.res.RunID), attribute.String("sharepoint.site", s.Settings.SiteName))
	defer span.End()

	if err := s.guarded(ctx, r, log); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.rl.Errorf("[FATAL] %v", err)
		r.res.Problems = append(r.res.Problems, problems.From(err, string(r.state)))
		if rerr := s.Reporter.Send(ctx, r.token, r.rl, true); rerr != nil {
			r.res.Problems = append(r.res.Problems, problems.From(rerr, string(Fatal)))
		}
		r.enter(Fatal, s.now())
	}
	r.res.Status = r.state

	if s.LogPath != nil {
		r.res.LogPath = s.LogPath(start)
		if err := r.rl.WriteFile(r.res.LogPath); err != nil {
			log.Errorw("write run log", "path", r.res.LogPath, "err", err)
		}
	}

	end := s.now()
	s.Metrics.Run(string(r.res.Status), end.Sub(start), end)
	span.SetAttributes(attribute.String("run.status", string(r.res.Status)), attribute.Int("run.uploaded", r.res.Uploaded))
	log.Infow("run finished", "status", r.res.Status, "uploaded", r.res.Uploaded, "failed", r.res.Failed, "log", r.res.LogPath, "duration", end.Sub(start))
	return r.res
}

// guarded runs the steps and turns a panic into an Internal error.
func (s *Service) guarded(ctx context.Context, r *run, log *zap.SugaredLogger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorw("panic", "err", rec, "stack", string(debug.Stack()))
			err = problems.Errorf(problems.Internal, string(r.state), "panic: %v", rec)
		}
	}()
	return s.steps(ctx, r, log)
}

func (s *Service) steps(ctx context.Context, r *run, log *zap.SugaredLogger) error {
	if s.Preflight != nil {
		return s.Preflight
	}
	token, err := s.Tokens.Token(ctx, s.Settings.Credential)
	if err != nil {
		return err
	}
	r.token = token
	r.enter(Authenticated, s.now())
	inspect(token, log)

	siteID, err := s.Resolver.SiteID(ctx, token, s.Settings.Domain, s.Settings.SiteName)
	if err != nil {
		return err
	}
	driveID, err := s.Resolver.DriveID(ctx, token, siteID, s.Settings.DriveName)
	if err != nil {
		return err
	}
	r.enter(Resolved, s.now())
	log.Debugw("destination resolved", "site_id", siteID, "drive_id", driveID)

	r.rl.Infof("Processing files modified today... %s", s.now().Format("02-01-2006 15:04:05"))
	res, err := s.Uploader.Run(ctx, s.Settings.SourceFolder, upload.Target{Token: token, SiteID: siteID, DriveID: driveID}, r.rl)
	if err != nil {
		return err
	}
	r.res.Uploaded, r.res.Failed = len(res.Successes), len(res.Failures)
	for _, f := range res.Failures {
		if f.Err != nil {
			r.res.Problems = append(r.res.Problems, problems.From(f.Err, string(Uploaded)))
		}
	}
	r.rl.Infof("Total uploaded successfully: %d", r.res.Uploaded)
	r.rl.Infof("Total ignored or failed: %d", r.res.Failed)
	r.enter(Uploaded, s.now())

	if err := s.Reporter.Send(ctx, token, r.rl, false); err != nil {
		r.res.Problems = append(r.res.Problems, problems.From(err, string(Reported)))
	}
	r.enter(Reported, s.now())
	r.enter(Done, s.now())
	return nil
}

func (r *run) enter(st State, at time.Time) {
	r.state = st
	r.res.Steps = append(r.res.Steps, Step{State: st, At: at})
}

// inspect logs token diagnostics. Tokens that are not JWTs are left alone.
func inspect(token string, log *zap.SugaredLogger) {
	info, err := graph.InspectToken(token)
	if err != nil {
		return
	}
	log.Debugw("access token", "app_id", info.AppID, "tenant_id", info.TenantID, "expires_at", info.ExpiresAt, "roles", info.Roles)
	if missing := info.MissingRoles(); len(missing) > 0 {
		log.Warnw("access token lacks application roles", "missing", missing)
	}
}

// String renders the step trail, e.g. "init > authenticated > fatal".
func (r RunResult) String() string {
	out := ""
	for i, st := range r.Steps {
		if i > 0 {
			out += " > "
		}
		out += string(st.State)
	}
	return fmt.Sprintf("%s [%s]", r.Status, out)
}

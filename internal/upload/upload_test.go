package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spupload/internal/routing"
	"spupload/internal/runlog"
	"spupload/pkg/graph"
	"spupload/pkg/metrics"
	"spupload/pkg/problems"
)

type putCall struct {
	token, siteID, driveID, dest, content string
}

type fakePutter struct {
	calls []putCall
	fail  map[string]error
}

func (f *fakePutter) PutContent(_ context.Context, token, siteID, driveID, destPath string, content io.Reader) (graph.DriveItem, error) {
	b, _ := io.ReadAll(content)
	f.calls = append(f.calls, putCall{token, siteID, driveID, destPath, string(b)})
	if err, ok := f.fail[destPath]; ok {
		return graph.DriveItem{}, err
	}
	return graph.DriveItem{ID: "item", Name: filepath.Base(destPath)}, nil
}

var (
	now       = time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)
	earlier   = time.Date(2024, 1, 15, 0, 5, 0, 0, time.Local)
	yesterday = time.Date(2024, 1, 14, 23, 59, 0, 0, time.Local)
	target    = Target{Token: "tok", SiteID: "site-1", DriveID: "drv-1"}
	testRules = routing.Rules{
		Prefixes: []routing.Rule{{Pattern: "rca_", Subfolder: "EQUIPE"}},
		Keywords: []routing.Rule{{Pattern: "cortes", Subfolder: "CORTE"}},
	}
)

func writeFile(t *testing.T, dir, name, content string, mod time.Time) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	require.NoError(t, os.Chtimes(p, mod, mod))
}

func newUploader(p Putter, opts ...Option) *Uploader {
	return New(p, testRules, append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
}

func TestOnlyTodaysFilesAreUploaded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rca_202401.csv", "a;b\n", earlier)
	writeFile(t, dir, "old_report.csv", "old\n", yesterday)

	p := &fakePutter{}
	rl := runlog.New(nil)
	res, err := newUploader(p).Run(context.Background(), dir, target, rl)
	require.NoError(t, err)

	require.Len(t, p.calls, 1)
	assert.Equal(t, putCall{"tok", "site-1", "drv-1", "EQUIPE/rca_202401.csv", "a;b\n"}, p.calls[0])
	require.Len(t, res.Successes, 1)
	assert.Equal(t, "[OK] rca_202401.csv → EQUIPE", res.Successes[0].Message)
	// old_report.csv is skipped before routing, so it is not even recorded as ignored.
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{"[OK] rca_202401.csv → EQUIPE"}, rl.Lines())
}

func TestKeywordRouting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cortes_lote1.csv", "x", earlier)

	p := &fakePutter{}
	res, err := newUploader(p).Run(context.Background(), dir, target, runlog.New(nil))
	require.NoError(t, err)
	require.Len(t, p.calls, 1)
	assert.Equal(t, "CORTE/cortes_lote1.csv", p.calls[0].dest)
	assert.Equal(t, "CORTE", res.Successes[0].Subfolder)
}

func TestUnmappedFileIsIgnoredWithoutNetworkCall(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "inventario.csv", "x", earlier)

	p := &fakePutter{}
	rl := runlog.New(nil)
	res, err := newUploader(p).Run(context.Background(), dir, target, rl)
	require.NoError(t, err)

	assert.Empty(t, p.calls)
	assert.Empty(t, res.Successes)
	require.Len(t, res.Failures, 1)
	rec := res.Failures[0]
	assert.Equal(t, Ignored, rec.Outcome)
	assert.True(t, problems.Is(rec.Err, problems.RoutingMiss))
	assert.Equal(t, "[WARN] inventario.csv: no mapping rule found. File ignored.", rec.Message)
	assert.Equal(t, []string{rec.Message}, rl.Lines())
}

func TestFailedUploadDoesNotStopThePass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cortes_a.csv", "a", earlier)
	writeFile(t, dir, "rca_b.csv", "b", earlier)

	p := &fakePutter{fail: map[string]error{"CORTE/cortes_a.csv": errors.New("Graph API error 503")}}
	m := metrics.New()
	res, err := newUploader(p, WithMetrics(m)).Run(context.Background(), dir, target, runlog.New(nil))
	require.NoError(t, err)

	require.Len(t, p.calls, 2)
	require.Len(t, res.Failures, 1)
	require.Len(t, res.Successes, 1)
	assert.Equal(t, Failed, res.Failures[0].Outcome)
	assert.Equal(t, "[ERROR] cortes_a.csv: Graph API error 503", res.Failures[0].Message)
	assert.True(t, problems.Is(res.Failures[0].Err, problems.UploadFailure))
	assert.Equal(t, "rca_b.csv", res.Successes[0].Filename)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Counter(metrics.OutcomeUploaded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Counter(metrics.OutcomeFailed)))
}

func TestFilesProcessedInNameOrder(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"rca_c.csv", "rca_a.csv", "zz.csv", "rca_b.csv"} {
		writeFile(t, dir, n, n, earlier)
	}
	p := &fakePutter{}
	rl := runlog.New(nil)
	_, err := newUploader(p).Run(context.Background(), dir, target, rl)
	require.NoError(t, err)

	var dests []string
	for _, c := range p.calls {
		dests = append(dests, c.dest)
	}
	assert.Equal(t, []string{"EQUIPE/rca_a.csv", "EQUIPE/rca_b.csv", "EQUIPE/rca_c.csv"}, dests)
	assert.True(t, strings.HasPrefix(rl.Lines()[3], "[WARN] zz.csv"))
}

func TestDirectoriesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "rca_folder")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.Chtimes(sub, earlier, earlier))

	p := &fakePutter{}
	res, err := newUploader(p).Run(context.Background(), dir, target, runlog.New(nil))
	require.NoError(t, err)
	assert.Empty(t, p.calls)
	assert.Empty(t, res.Failures)
}

func TestUnreadableFolderIsFatal(t *testing.T) {
	_, err := newUploader(&fakePutter{}).Run(context.Background(), filepath.Join(t.TempDir(), "missing"), target, runlog.New(nil))
	require.Error(t, err)
	assert.True(t, problems.Is(err, problems.SourceFailure))

	_, err = newUploader(&fakePutter{}).Run(context.Background(), "", target, runlog.New(nil))
	assert.True(t, problems.Is(err, problems.SourceFailure))
}

func TestSameDayUsesLocalCalendar(t *testing.T) {
	assert.True(t, sameDay(earlier, now))
	assert.False(t, sameDay(yesterday, now))
	assert.True(t, sameDay(now.UTC(), now))
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/fleetdesk/fleetdesk/internal/jobs"
	"github.com/fleetdesk/fleetdesk/internal/ledger"
)

// StatementRenderer produces statement PDFs.
type StatementRenderer interface {
	StatementPDF(ctx context.Context, owner string, from, to time.Time) ([]byte, error)
}

// StatementJob renders owner statements into a directory.
type StatementJob struct {
	Renderer StatementRenderer
	Dir      string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewStatementJob constructs the job handler.
func NewStatementJob(renderer StatementRenderer, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatementJob {
	return &StatementJob{Renderer: renderer, Dir: dir, Logger: logger, Metrics: metrics}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *StatementJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Renderer == nil {
		return errors.New("statement: handler not configured")
	}
	var payload StatementPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	from, to, err := payload.Period()
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	_, err = j.Render(ctx, payload.Owner, from, to)
	return err
}

// Render writes the statement PDF and returns its path.
func (j *StatementJob) Render(ctx context.Context, owner string, from, to time.Time) (path string, err error) {
	tracker := j.Metrics.Track(TaskStatementRender)
	defer func() {
		err = tracker.End(err)
	}()
	pdf, err := j.Renderer.StatementPDF(ctx, owner, from, to)
	if err != nil {
		return "", err
	}
	path, err = j.store(statementFilename(owner, from, to), pdf)
	if err != nil {
		return "", err
	}
	j.logger().Info("statement rendered", slog.String("owner", owner), slog.String("path", path), slog.Int("bytes", len(pdf)))
	return path, nil
}

func (j *StatementJob) store(name string, pdf []byte) (string, error) {
	dir := j.Dir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "statements")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (j *StatementJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func statementFilename(owner string, from, to time.Time) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, ledger.ParseSelector(owner).String())
	day := func(t time.Time) string {
		if t.IsZero() {
			return "open"
		}
		return t.Format("20060102")
	}
	return fmt.Sprintf("statement-%s-%s-%s.pdf", slug, day(from), day(to))
}

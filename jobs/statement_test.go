package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type stubStatementRenderer struct {
	owner    string
	from, to time.Time
	err      error
}

func (s *stubStatementRenderer) StatementPDF(_ context.Context, owner string, from, to time.Time) ([]byte, error) {
	s.owner, s.from, s.to = owner, from, to
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF"), nil
}

func TestStatementJobHandleWritesFile(t *testing.T) {
	dir := t.TempDir()
	renderer := &stubStatementRenderer{}
	job := NewStatementJob(renderer, dir, nil, nil)

	task, err := NewStatementTask(StatementPayload{Owner: " Alice Smith ", From: "2024-01-01", To: "2024-01-31"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Equal(t, "Alice Smith", renderer.owner)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), renderer.from)
	data, err := os.ReadFile(filepath.Join(dir, "statement-alice-smith-20240101-20240131.pdf"))
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(data))
}

func TestStatementJobAllOwnersOpenPeriod(t *testing.T) {
	dir := t.TempDir()
	path, err := NewStatementJob(&stubStatementRenderer{}, dir, nil, nil).Render(context.Background(), "", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "statement-all-open-open.pdf"), path)
}

func TestStatementJobRejectsBadPayload(t *testing.T) {
	job := NewStatementJob(&stubStatementRenderer{}, t.TempDir(), nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskStatementRender, []byte(`{"owner":"A","from":"2024-02-01","to":"2024-01-01"}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)

	_, err = NewStatementTask(StatementPayload{Owner: "A", From: "01/02/2024"})
	require.Error(t, err)
}

func TestStatementJobPropagatesRenderError(t *testing.T) {
	boom := errors.New("gotenberg down")
	_, err := NewStatementJob(&stubStatementRenderer{err: boom}, t.TempDir(), nil, nil).Render(context.Background(), "A", time.Time{}, time.Time{})
	require.ErrorIs(t, err, boom)
}

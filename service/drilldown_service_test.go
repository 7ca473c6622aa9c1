package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/ludo-technologies/ccgate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool returns canned lizard output per file
type fakeTool struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	delay   time.Duration
	calls   []string

	running    atomic.Int32
	maxRunning atomic.Int32
}

func (f *fakeTool) Run(ctx context.Context, file string) (string, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		prev := f.maxRunning.Load()
		if n <= prev || f.maxRunning.CompareAndSwap(prev, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, file)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err := f.errs[file]; err != nil {
		return "", err
	}
	return f.outputs[file], nil
}

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestDrilldownService_SequentialContinuesAfterFailure(t *testing.T) {
	disableColor(t)
	tool := &fakeTool{
		outputs: map[string]string{
			"b.cs": "  20  14  100  1  25 B::Slow@3-28@b.cs\n   4   2   20  0   4 B::Fast@30-34@b.cs\n",
		},
		errs: map[string]error{"a.cs": errors.New("lizard: command not found")},
	}

	var warnings bytes.Buffer
	svc := NewDrilldownService(tool, 10, 1).WithWarnings(&warnings)
	result := svc.Drilldown(context.Background(), []string{"a.cs", "b.cs"})

	assert.Equal(t, []string{"a.cs", "b.cs"}, tool.calls)
	require.Len(t, result.Files, 2)

	assert.Error(t, result.Files[0].Err)
	assert.Empty(t, result.Files[0].Methods)

	assert.NoError(t, result.Files[1].Err)
	assert.Len(t, result.Files[1].Methods, 2)

	violations := result.Violations()
	require.Len(t, violations, 1)
	assert.Equal(t, "B::Slow", violations[0].Name)
	assert.Equal(t, 14, violations[0].Complexity)

	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "a.cs: lizard: command not found", DrilldownError(failures[0]))
	assert.Contains(t, warnings.String(), "Warning: could not analyze a.cs: lizard: command not found")
}

func TestDrilldownService_ParallelKeepsOrder(t *testing.T) {
	files := []string{"1.cs", "2.cs", "3.cs", "4.cs", "5.cs", "6.cs"}
	tool := &fakeTool{outputs: map[string]string{}, delay: 20 * time.Millisecond}
	for _, f := range files {
		tool.outputs[f] = " 1 12 3 4 5 " + f + "::Run@1-9\n"
	}

	result := NewDrilldownService(tool, 10, 3).Drilldown(context.Background(), files)

	require.Len(t, result.Files, len(files))
	for i, f := range files {
		assert.Equal(t, f, result.Files[i].File)
		require.Len(t, result.Files[i].Violations, 1)
		assert.Equal(t, f+"::Run", result.Files[i].Violations[0].Name)
	}
	assert.LessOrEqual(t, tool.maxRunning.Load(), int32(3))
	assert.Greater(t, tool.maxRunning.Load(), int32(1))
}

func TestDrilldownService_NoFiles(t *testing.T) {
	tool := &fakeTool{}
	result := NewDrilldownService(tool, 10, 0).Drilldown(context.Background(), nil)
	assert.Empty(t, result.Files)
	assert.Empty(t, tool.calls)
}

func TestDrilldownService_UnparseableOutputIsNotAFailure(t *testing.T) {
	tool := &fakeTool{outputs: map[string]string{"a.cs": "Error: unsupported language\n"}}
	result := NewDrilldownService(tool, 10, 1).Drilldown(context.Background(), []string{"a.cs"})

	require.Len(t, result.Files, 1)
	assert.NoError(t, result.Files[0].Err)
	assert.Empty(t, result.Files[0].Methods)
	assert.Empty(t, result.Violations())
}

func TestDrilldownService_CancelledContext(t *testing.T) {
	disableColor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tool := &fakeTool{}
	result := NewDrilldownService(tool, 10, 1).Drilldown(ctx, []string{"a.cs"})

	require.Len(t, result.Files, 1)
	assert.ErrorIs(t, result.Files[0].Err, context.Canceled)
	assert.Empty(t, tool.calls)
}

func TestDrilldownService_ReportsProgress(t *testing.T) {
	pm := &recordingProgress{}
	tool := &fakeTool{outputs: map[string]string{}}
	NewDrilldownService(tool, 10, 1).WithProgress(pm).Drilldown(context.Background(), []string{"a.cs", "b.cs"})

	assert.Equal(t, 2, pm.total)
	assert.Equal(t, 2, pm.task.count)
	assert.True(t, pm.task.done)
}

type recordingProgress struct {
	total int
	task  *recordingTask
}

func (p *recordingProgress) StartTask(_ string, total int) domain.TaskProgress {
	p.total = total
	p.task = &recordingTask{}
	return p.task
}

func (p *recordingProgress) IsInteractive() bool { return true }

func (p *recordingProgress) Close() {}

type recordingTask struct {
	mu    sync.Mutex
	count int
	done  bool
}

func (t *recordingTask) Increment(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

func (t *recordingTask) Describe(string) {}

func (t *recordingTask) Complete() { t.done = true }

func TestDrilldownService_UnreadableOutputIsAFailure(t *testing.T) {
	disableColor(t)
	tool := &fakeTool{
		outputs: map[string]string{
			"a.cs": " 1 12 3 4 5 " + strings.Repeat("x", 2*1024*1024) + "@1-2@a.cs\n",
			"b.cs": " 1 12 3 4 5 B::Run@1-9@b.cs\n",
		},
	}

	var warnings bytes.Buffer
	result := NewDrilldownService(tool, 10, 1).WithWarnings(&warnings).
		Drilldown(context.Background(), []string{"a.cs", "b.cs"})

	require.Len(t, result.Failures(), 1)
	assert.Equal(t, "a.cs", result.Failures()[0].File)
	assert.Contains(t, warnings.String(), "Warning: could not analyze a.cs")

	require.Len(t, result.Violations(), 1)
	assert.Equal(t, "B::Run", result.Violations()[0].Name)
}

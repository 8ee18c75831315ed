package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/hockey-projections/internal/domain/projection"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type mockStatsWriter struct {
	mock.Mock
}

func (m *mockStatsWriter) WriteDay(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *mockStatsWriter) WriteRange(ctx context.Context, start, end time.Time) (RangeReport, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(RangeReport), args.Error(1)
}

func (m *mockStatsWriter) WriteCombined(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

type mockFeatureWriter struct {
	mock.Mock
}

func (m *mockFeatureWriter) WriteDay(ctx context.Context, day time.Time, training bool) (int, error) {
	args := m.Called(ctx, day, training)
	return args.Int(0), args.Error(1)
}

func (m *mockFeatureWriter) WriteRange(ctx context.Context, start, end time.Time, training bool) (RangeReport, error) {
	args := m.Called(ctx, start, end, training)
	return args.Get(0).(RangeReport), args.Error(1)
}

func (m *mockFeatureWriter) WriteCombined(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) Export(ctx context.Context, day time.Time) (projection.Result, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(projection.Result), args.Error(1)
}

func TestDailyService_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	p := newPipeline(1, 5)
	seedStats(t, p, 1, 4)
	ctx := context.Background()
	if _, err := p.featureSvc.WriteRange(ctx, marchDay(1), marchDay(4), true); err != nil {
		t.Fatalf("seed training features: %v", err)
	}

	report, err := p.daily.Run(ctx, marchDay(6))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Date != "2021-03-06" || report.Projected != len(fixtureSkaters) {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(report.Steps))
	}
	for _, step := range report.Steps {
		if step.Status != StepWritten {
			t.Fatalf("step %s not written: %+v", step.Step, step)
		}
	}

	// yesterday's stats and training features were backfilled
	if _, err := p.stats.ReadDay(ctx, marchDay(5)); err != nil {
		t.Fatalf("stats for previous day missing: %v", err)
	}
	training, err := p.features.ReadCombined(ctx)
	if err != nil {
		t.Fatalf("read training file: %v", err)
	}
	var sawPrev bool
	for _, row := range training {
		if row.Date > "21_03_05" {
			t.Fatalf("training file includes %s", row.Date)
		}
		sawPrev = sawPrev || row.Date == "21_03_05"
	}
	if !sawPrev {
		t.Fatalf("training file missing previous day rows")
	}
	if _, err := p.projections.ReadDay(ctx, marchDay(6)); err != nil {
		t.Fatalf("projection file missing: %v", err)
	}
}

func TestDailyService_Run_MissedDayKeepsInferenceRowsOutOfTraining(t *testing.T) {
	t.Parallel()

	p := newPipeline(1, 7)
	seedTraining(t, p, 4)
	ctx := context.Background()

	if _, err := p.daily.Run(ctx, marchDay(5)); err != nil {
		t.Fatalf("run day 5: %v", err)
	}
	// no run on day 6, so day 5 keeps its prediction-input snapshot
	if _, err := p.daily.Run(ctx, marchDay(7)); err != nil {
		t.Fatalf("run day 7: %v", err)
	}

	stale, err := p.features.ReadDay(ctx, marchDay(5))
	if err != nil {
		t.Fatalf("read day 5 snapshot: %v", err)
	}
	if len(stale) == 0 || stale[0].Training {
		t.Fatalf("expected day 5 to hold prediction-input rows")
	}

	training, err := p.features.ReadCombined(ctx)
	if err != nil {
		t.Fatalf("read training file: %v", err)
	}
	var sawPrev bool
	for _, row := range training {
		if row.Date == "21_03_05" {
			t.Fatalf("prediction-input row for %s used as training data", row.Name)
		}
		if !row.Training || row.TOI <= 0 {
			t.Fatalf("training row without outcome: %+v", row)
		}
		sawPrev = sawPrev || row.Date == "21_03_06"
	}
	if !sawPrev {
		t.Fatalf("training file missing day 6 backfill")
	}
}

func TestDailyService_Run_BackfillIsBestEffort(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	day := marchDay(6)
	prev := marchDay(5)

	stats := &mockStatsWriter{}
	features := &mockFeatureWriter{}
	exporter := &mockExporter{}
	stats.On("WriteDay", mock.Anything, prev).Return(0, errors.New("no ev export")).Once()
	stats.On("WriteCombined", mock.Anything, time.Time{}).Return(120, nil).Once()
	features.On("WriteDay", mock.Anything, prev, true).Return(0, errors.New("no pool")).Once()
	features.On("WriteCombined", mock.Anything, prev).Return(80, nil).Once()
	features.On("WriteDay", mock.Anything, day, false).Return(12, nil).Once()
	exporter.On("Export", mock.Anything, day).Return(projection.Result{Rows: make([]projection.Row, 11)}, nil).Once()

	svc := NewDailyService(stats, features, exporter, logging.NewNop())
	report, err := svc.Run(ctx, day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Projected != 11 {
		t.Fatalf("unexpected projected count: %d", report.Projected)
	}
	if report.Steps[0].Status != StepSkipped || report.Steps[2].Status != StepSkipped {
		t.Fatalf("backfill failures should be skipped outcomes: %+v", report.Steps)
	}
	if report.Steps[0].Reason == "" {
		t.Fatalf("skipped step should carry a reason")
	}

	stats.AssertExpectations(t)
	features.AssertExpectations(t)
	exporter.AssertExpectations(t)
}

func TestDailyService_Run_ProjectionFailurePropagates(t *testing.T) {
	t.Parallel()

	day := marchDay(6)
	prev := marchDay(5)
	stats := &mockStatsWriter{}
	features := &mockFeatureWriter{}
	exporter := &mockExporter{}
	stats.On("WriteDay", mock.Anything, prev).Return(40, nil).Once()
	stats.On("WriteCombined", mock.Anything, time.Time{}).Return(120, nil).Once()
	features.On("WriteDay", mock.Anything, prev, true).Return(30, nil).Once()
	features.On("WriteCombined", mock.Anything, prev).Return(80, nil).Once()
	features.On("WriteDay", mock.Anything, day, false).Return(12, nil).Once()
	exportErr := errors.New("fit forward model: insufficient data")
	exporter.On("Export", mock.Anything, day).Return(projection.Result{}, exportErr).Once()

	svc := NewDailyService(stats, features, exporter, logging.NewNop())
	report, err := svc.Run(context.Background(), day)
	if !errors.Is(err, exportErr) {
		t.Fatalf("expected export error, got %v", err)
	}
	last := report.Steps[len(report.Steps)-1]
	if last.Step != stepProjections || last.Status != StepFailed {
		t.Fatalf("unexpected last step: %+v", last)
	}
}

func TestDailyService_Run_TodayFeatureFailureStopsRun(t *testing.T) {
	t.Parallel()

	day := marchDay(6)
	prev := marchDay(5)
	stats := &mockStatsWriter{}
	features := &mockFeatureWriter{}
	exporter := &mockExporter{}
	stats.On("WriteDay", mock.Anything, prev).Return(40, nil).Once()
	stats.On("WriteCombined", mock.Anything, time.Time{}).Return(120, nil).Once()
	features.On("WriteDay", mock.Anything, prev, true).Return(30, nil).Once()
	features.On("WriteCombined", mock.Anything, prev).Return(80, nil).Once()
	features.On("WriteDay", mock.Anything, day, false).Return(0, errors.New("no pool for today")).Once()

	svc := NewDailyService(stats, features, exporter, logging.NewNop())
	if _, err := svc.Run(context.Background(), day); err == nil {
		t.Fatalf("expected error when today's features fail")
	}
	exporter.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}

func TestDailyService_Run_RejectsOverlap(t *testing.T) {
	t.Parallel()

	day := marchDay(6)
	entered := make(chan struct{})
	release := make(chan struct{})

	stats := &mockStatsWriter{}
	stats.On("WriteDay", mock.Anything, marchDay(5)).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(0, errors.New("stop")).
		Once()
	stats.On("WriteCombined", mock.Anything, time.Time{}).Return(0, errors.New("stop")).Once()

	svc := NewDailyService(stats, &mockFeatureWriter{}, &mockExporter{}, logging.NewNop())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), day)
		done <- err
	}()

	<-entered
	if _, err := svc.Run(context.Background(), day); !errors.Is(err, ErrJobInProgress) {
		t.Fatalf("expected ErrJobInProgress, got %v", err)
	}
	if _, err := svc.Rebuild(context.Background(), marchDay(1), marchDay(2)); !errors.Is(err, ErrJobInProgress) {
		t.Fatalf("expected ErrJobInProgress for rebuild, got %v", err)
	}
	close(release)
	if err := <-done; err == nil {
		t.Fatalf("first run should fail on combined stats")
	}
}

func TestDailyService_Rebuild(t *testing.T) {
	t.Parallel()

	p := newPipeline(1, 5, 3)
	report, err := p.daily.Rebuild(context.Background(), marchDay(1), marchDay(5))
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if report.Stats.WrittenCount != 4 || report.Stats.SkippedCount != 1 {
		t.Fatalf("unexpected stats report: %+v", report.Stats)
	}
	// day 3 still has a pool so its training snapshot is written, just empty
	if report.Features.WrittenCount != 5 {
		t.Fatalf("unexpected feature report: %+v", report.Features)
	}
	if report.StatsRows == 0 || report.TrainingRows == 0 {
		t.Fatalf("combined files should not be empty: %+v", report)
	}
	if report.CombinedThrough != "2021-03-05" {
		t.Fatalf("unexpected combined cutoff: %s", report.CombinedThrough)
	}
}

func TestDailyService_Rebuild_InvalidRange(t *testing.T) {
	t.Parallel()

	svc := NewDailyService(&mockStatsWriter{}, &mockFeatureWriter{}, &mockExporter{}, nil)
	if _, err := svc.Rebuild(context.Background(), marchDay(5), marchDay(1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

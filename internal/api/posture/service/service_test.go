package postureService

import (
	"PostureIQ/internal/api/posture"
	postureRepository "PostureIQ/internal/api/posture/repository"
	"PostureIQ/internal/entity"
	"PostureIQ/pkg/analyzer"
	"PostureIQ/pkg/ratelimit"
	"PostureIQ/pkg/utils"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeRecords struct {
	mu      sync.Mutex
	records map[string]entity.PostureRecord
	failAdd error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: map[string]entity.PostureRecord{}}
}

func (f *fakeRecords) CreateRecord(_ context.Context, r entity.PostureRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd != nil {
		return f.failAdd
	}
	f.records[r.ID] = r
	return nil
}

func (f *fakeRecords) GetByIDForUser(_ context.Context, id, userID string) (entity.PostureRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.UserID != userID {
		return entity.PostureRecord{}, posture.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeRecords) ListByUser(_ context.Context, userID string, limit int) ([]entity.PostureRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.PostureRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecords) StatsByUser(ctx context.Context, userID string) (postureRepository.RecordStats, error) {
	all, _ := f.ListByUser(ctx, userID, 1<<30)
	stats := postureRepository.RecordStats{Total: len(all)}
	if len(all) == 0 {
		return stats, nil
	}
	var sum int
	for _, r := range all {
		sum += r.PostureScore
	}
	stats.AvgScore = float64(sum) / float64(len(all))
	stats.FirstScore = all[len(all)-1].PostureScore
	return stats, nil
}

func (f *fakeRecords) SetSnapshotKey(_ context.Context, id, userID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.UserID != userID {
		return posture.ErrRecordNotFound
	}
	r.SnapshotKey = key
	f.records[id] = r
	return nil
}

func (f *fakeRecords) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeRepo struct {
	records *fakeRecords
}

func (r fakeRepo) NewClient(bool) (postureRepository.Client, error) {
	return postureRepository.Client{
		Records:  r.records,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeAnalyzer struct {
	result analyzer.PostureResult
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(context.Context, []byte) (analyzer.Analysis, error) {
	f.calls++
	if f.err != nil {
		return analyzer.Analysis{}, f.err
	}
	return analyzer.Analysis{Result: f.result, Frame: analyzer.Frame{Data: []byte("jpeg"), Width: 640, Height: 480}}, nil
}

type fakeS3 struct {
	uploaded  map[string][]byte
	uploadErr error
}

func (f *fakeS3) UploadObject(_ context.Context, key string, body []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploaded[key] = body
	return nil
}
func (f *fakeS3) PresignUrl(key string) (string, error) {
	if _, ok := f.uploaded[key]; !ok {
		return "", errors.New("file does not exist")
	}
	return "https://bucket.example/" + key + "?sig=1", nil
}
func (f *fakeS3) DeleteFile(string) error                     { return nil }
func (f *fakeS3) DeleteFiles(context.Context, []string) error { return nil }

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var goodResult = analyzer.PostureResult{
	ShoulderAngle: 2.5, NeckAngle: 12.1, HeadTilt: 1, SpineAngle: 3,
	Confidence: 91.2, PostureScore: 85, PostureStatus: analyzer.StatusExcellent,
	Feedback: []string{"Mild forward head posture. Try to keep your ears aligned over your shoulders."},
}

type harness struct {
	svc      PostureService
	records  *fakeRecords
	analyzer *fakeAnalyzer
	clock    *fixedClock
	store    *fakeS3
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		records:  newFakeRecords(),
		analyzer: &fakeAnalyzer{result: goodResult},
		clock:    &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		store:    &fakeS3{uploaded: map[string][]byte{}},
	}
	limiter := ratelimit.NewMemory(10, time.Minute, h.clock.Now)
	opts = append([]Option{WithClock(h.clock.Now)}, opts...)
	h.svc = NewPostureService(logger, fakeRepo{records: h.records}, h.analyzer, limiter, utils.New(), opts...)
	return h
}

func encoded() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("frame"))
}

func TestDetectPersistsRecord(t *testing.T) {
	h := newHarness(t)

	result, err := h.svc.DetectBase64(context.Background(), "U1", encoded())
	if err != nil {
		t.Fatalf("DetectBase64: %v", err)
	}
	if result.PostureScore != 85 {
		t.Errorf("score = %d", result.PostureScore)
	}

	list, _ := h.records.ListByUser(context.Background(), "U1", 10)
	if len(list) != 1 {
		t.Fatalf("records = %d, want 1", len(list))
	}
	rec := list[0]
	if rec.Source != entity.SourceDetection || rec.NeckAngle == nil || *rec.NeckAngle != 12.1 || rec.Confidence != 91.2 {
		t.Errorf("record = %+v", rec)
	}
	if rec.SnapshotKey != "" {
		t.Error("snapshots are disabled by default")
	}
}

func TestDetectErrors(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		anaErr  error
		wantErr error
	}{
		{"missing image", "", nil, posture.ErrNoImage},
		{"bad base64", "data:image/png;base64,!!!", nil, posture.ErrImageDecode},
		{"decode failure", encoded(), analyzer.ErrDecodeImage, posture.ErrImageDecode},
		{"nobody in frame", encoded(), analyzer.ErrNoPersonDetected, posture.ErrNoPersonDetected},
		{"pipeline failure", encoded(), &analyzer.AnalysisError{Err: errors.New("socket closed")}, posture.ErrAnalysis},
		{"sidecar past deadline", encoded(), &analyzer.AnalysisError{Err: fmt.Errorf("error reading pose response: %w", context.DeadlineExceeded)}, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.analyzer.err = tt.anaErr

			_, err := h.svc.DetectBase64(context.Background(), "U1", tt.image)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if h.records.count() != 0 {
				t.Error("failed detections must not be persisted")
			}
		})
	}
}

func TestDetectRateLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := h.svc.DetectBase64(ctx, "U1", encoded()); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		h.clock.Advance(time.Second)
	}

	if _, err := h.svc.DetectBase64(ctx, "U1", encoded()); !errors.Is(err, posture.ErrRateLimitExceeded) {
		t.Fatalf("11th request error = %v, want ErrRateLimitExceeded", err)
	}
	if h.analyzer.calls != 10 || h.records.count() != 10 {
		t.Errorf("throttled request reached analyzer (%d calls) or store (%d)", h.analyzer.calls, h.records.count())
	}

	if _, err := h.svc.DetectBase64(ctx, "U2", encoded()); err != nil {
		t.Errorf("other users are not throttled: %v", err)
	}

	h.clock.Advance(time.Minute)
	if _, err := h.svc.DetectBase64(ctx, "U1", encoded()); err != nil {
		t.Errorf("request after the window: %v", err)
	}
}

func TestAnalyzeFrameDoesNotPersist(t *testing.T) {
	h := newHarness(t)

	if _, err := h.svc.AnalyzeFrame(context.Background(), "U1", []byte("frame")); err != nil {
		t.Fatal(err)
	}
	if h.records.count() != 0 {
		t.Error("stream frames must not be stored")
	}
}

func TestDetectStoresSnapshot(t *testing.T) {
	h := newHarness(t)
	h.svc = NewPostureService(silentLogger(), fakeRepo{records: h.records}, h.analyzer,
		ratelimit.NewMemory(10, time.Minute, h.clock.Now), utils.New(), WithClock(h.clock.Now), WithSnapshots(h.store))

	if _, err := h.svc.DetectImage(context.Background(), "U1", []byte("frame")); err != nil {
		t.Fatal(err)
	}

	list, _ := h.records.ListByUser(context.Background(), "U1", 1)
	key := list[0].SnapshotKey
	if !strings.HasPrefix(key, "snapshots/U1/") || string(h.store.uploaded[key]) != "jpeg" {
		t.Fatalf("snapshot key %q, uploaded %v", key, h.store.uploaded)
	}

	snap, err := h.svc.SnapshotURL(context.Background(), "U1", list[0].ID)
	if err != nil || !strings.Contains(snap.URL, key) || snap.ExpiresInMinutes != 15 {
		t.Errorf("SnapshotURL = %+v, %v", snap, err)
	}
	if _, err := h.svc.SnapshotURL(context.Background(), "U2", list[0].ID); !errors.Is(err, posture.ErrRecordNotFound) {
		t.Errorf("foreign snapshot: %v", err)
	}
}

func TestSnapshotUploadFailureKeepsDetection(t *testing.T) {
	h := newHarness(t)
	h.store.uploadErr = errors.New("s3 unavailable")
	h.svc = NewPostureService(silentLogger(), fakeRepo{records: h.records}, h.analyzer,
		ratelimit.NewMemory(10, time.Minute, h.clock.Now), utils.New(), WithClock(h.clock.Now), WithSnapshots(h.store))

	if _, err := h.svc.DetectImage(context.Background(), "U1", []byte("frame")); err != nil {
		t.Fatalf("detection should succeed without a snapshot: %v", err)
	}
	list, _ := h.records.ListByUser(context.Background(), "U1", 1)
	if len(list) != 1 || list[0].SnapshotKey != "" {
		t.Errorf("records = %+v", list)
	}
}

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSaveMockSession(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.SaveMockSession(context.Background(), "U1", []float64{80, 90, 70})
	if err != nil {
		t.Fatal(err)
	}
	if res.AvgScore != 80 || res.Status != "Good" {
		t.Errorf("response = %+v, want 80 Good", res)
	}

	list, _ := h.records.ListByUser(context.Background(), "U1", 10)
	if len(list) != 1 {
		t.Fatalf("records = %d", len(list))
	}
	rec := list[0]
	if rec.Source != entity.SourceMockSession || rec.ShoulderAngle != nil || rec.Confidence != 100 {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Feedback) != 1 || rec.Feedback[0] != "Mock interview session · 3 samples · avg score 80" {
		t.Errorf("feedback = %q", rec.Feedback)
	}
}

func TestSaveMockSessionEmpty(t *testing.T) {
	h := newHarness(t)

	if _, err := h.svc.SaveMockSession(context.Background(), "U1", nil); !errors.Is(err, posture.ErrInvalidScores) {
		t.Errorf("error = %v, want ErrInvalidScores", err)
	}
	if h.records.count() != 0 {
		t.Error("no record may be persisted on invalid input")
	}
}

func TestReportOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.SaveMockSession(ctx, "U1", []float64{50}); err != nil {
		t.Fatal(err)
	}
	list, _ := h.records.ListByUser(ctx, "U1", 1)
	id := list[0].ID

	report, err := h.svc.Report(ctx, entity.UserLoginData{ID: "U1", Username: "alice"}, id)
	if err != nil {
		t.Fatal(err)
	}
	if report.FileName != "postureiq-report-"+id+".txt" || !strings.Contains(report.Body, "User       : alice") {
		t.Errorf("report = %+v", report)
	}

	if _, err := h.svc.Report(ctx, entity.UserLoginData{ID: "U2"}, id); !errors.Is(err, posture.ErrRecordNotFound) {
		t.Errorf("foreign report: %v", err)
	}
	if _, err := h.svc.Report(ctx, entity.UserLoginData{ID: "U1"}, "missing"); !errors.Is(err, posture.ErrRecordNotFound) {
		t.Errorf("missing report: %v", err)
	}
}

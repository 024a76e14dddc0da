package dataset

import (
	"context"
	"testing"

	"github.com/gaitworks/go-gaitpose"
)

// datasetRows builds valid annotation rows for the given sequence ids,
// count frames each
func datasetRows(count int, sequenceIDs ...string) []gaitpose.AnnotationRow {

	var rows []gaitpose.AnnotationRow

	for _, id := range sequenceIDs {

		for n := 1; n <= count; n++ {
			rows = append(rows, gaitpose.AnnotationRow{
				SequenceID:  id,
				FrameNumber: n,
				Box: gaitpose.Box{
					Left: 100, Top: 100,
					Width: 200, Height: 400,
				},
				VideoMeta: gaitpose.VideoMeta{Width: 1280, Height: 720},
			})
		}
	}

	return rows
}

func TestRunWithoutEstimator(t *testing.T) {

	o := NewOrchestrator(DefaultParams())

	rows := datasetRows(5, "seq-a", "seq-b")

	report, err := o.Run(context.Background(), rows, nil, nil)

	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if report.RunID == "" {
		t.Error("report has no run id")
	}

	if len(report.Sequences) != 2 {
		t.Fatalf("expected 2 sequence results, got %d", len(report.Sequences))
	}

	seen := map[string]bool{}

	for _, res := range report.Sequences {

		seen[res.SequenceID] = true

		if res.Error != "" {
			t.Errorf("sequence %s failed: %s", res.SequenceID, res.Error)
		}

		// no estimator means every row degrades to placeholder keypoints
		if res.PlaceholderRows != 5 || res.EstimatedRows != 0 {
			t.Errorf("sequence %s: expected 5 placeholder rows, got %+v",
				res.SequenceID, res)
		}

		if len(res.Frames) != 5 {
			t.Errorf("sequence %s: expected 5 frames, got %d",
				res.SequenceID, len(res.Frames))
		}

		if res.Assessment.RiskLevel == "" {
			t.Errorf("sequence %s has no risk assessment", res.SequenceID)
		}
	}

	if !seen["seq-a"] || !seen["seq-b"] {
		t.Errorf("missing sequence results: %v", seen)
	}
}

func TestRunSkipsProcessedSequences(t *testing.T) {

	p := DefaultParams()
	p.Processed = map[string]bool{"seq-a": true}

	o := NewOrchestrator(p)

	rows := datasetRows(3, "seq-a", "seq-b")

	report, err := o.Run(context.Background(), rows, nil, nil)

	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(report.Sequences) != 1 {
		t.Fatalf("expected 1 sequence result, got %d", len(report.Sequences))
	}

	if report.Sequences[0].SequenceID != "seq-b" {
		t.Errorf("expected seq-b, got %s", report.Sequences[0].SequenceID)
	}
}

func TestRunIsolatesBadSequence(t *testing.T) {

	o := NewOrchestrator(DefaultParams())

	rows := datasetRows(3, "seq-a")

	// a malformed bounding box fails validation for its whole sequence
	rows = append(rows, gaitpose.AnnotationRow{
		SequenceID:  "seq-bad",
		FrameNumber: 1,
		Box:         gaitpose.Box{Left: 10, Top: 10, Width: 0, Height: 50},
		VideoMeta:   gaitpose.VideoMeta{Width: 1280, Height: 720},
	})

	report, err := o.Run(context.Background(), rows, nil, nil)

	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(report.Sequences) != 2 {
		t.Fatalf("expected 2 sequence results, got %d", len(report.Sequences))
	}

	for _, res := range report.Sequences {

		switch res.SequenceID {
		case "seq-a":
			if res.Error != "" {
				t.Errorf("healthy sequence failed: %s", res.Error)
			}
		case "seq-bad":
			if res.Error == "" {
				t.Error("malformed sequence reported no error")
			}
			if len(res.Frames) != 0 {
				t.Errorf("failed sequence produced %d frames", len(res.Frames))
			}
		default:
			t.Errorf("unexpected sequence %s", res.SequenceID)
		}
	}
}

func TestRunCancelled(t *testing.T) {

	o := NewOrchestrator(DefaultParams())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := o.Run(ctx, datasetRows(3, "seq-a", "seq-b"), nil, nil)

	if err == nil {
		t.Fatal("expected context error")
	}

	// the partial report is still returned for checkpointing
	if report == nil || report.RunID == "" {
		t.Fatal("cancelled run returned no report")
	}

	// unprocessed sequences leave no zero valued slots behind
	for _, res := range report.Sequences {
		if res.SequenceID == "" {
			t.Errorf("partial report contains empty sequence entry: %+v", res)
		}
	}
}

package scene

import (
	"strings"
	"sync"
	"testing"
)

func newTestEngine(t *testing.T, lang string) *Engine {
	t.Helper()
	vocab, err := Builtin(lang)
	if err != nil {
		t.Fatalf("Builtin(%q) failed: %v", lang, err)
	}
	return NewEngine(vocab)
}

func TestRank_Empty(t *testing.T) {
	e := newTestEngine(t, "en")
	ranked := e.Rank(nil, Frame{Width: 640, Height: 480})
	if len(ranked) != 0 {
		t.Errorf("expected empty ranking, got %d", len(ranked))
	}
}

func TestRank_OrdersByScore(t *testing.T) {
	e := newTestEngine(t, "en")
	frame := Frame{Width: 640, Height: 480}
	dets := []Detection{
		NewDetection("cup", 0.9, 0, 0, 20, 20),
		NewDetection("person", 0.9, 220, 140, 420, 340),
		NewDetection("chair", 0.5, 500, 300, 600, 460),
	}

	ranked := e.Rank(dets, frame)
	if len(ranked) != len(dets) {
		t.Fatalf("expected %d ranked detections, got %d", len(dets), len(ranked))
	}
	if ranked[0].Label != "person" {
		t.Errorf("expected person first, got %s", ranked[0].Label)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, ranked[i].Score, ranked[i-1].Score)
		}
	}

	seen := make(map[string]bool)
	for _, r := range ranked {
		seen[r.Label] = true
	}
	for _, d := range dets {
		if !seen[d.Label] {
			t.Errorf("ranking dropped %s", d.Label)
		}
	}
}

func TestRank_StableForEqualScores(t *testing.T) {
	e := newTestEngine(t, "en")
	frame := Frame{Width: 100, Height: 100}
	dets := []Detection{
		NewDetection("a", 0.8, 10, 10, 30, 30),
		NewDetection("b", 0.8, 10, 10, 30, 30),
		NewDetection("c", 0.8, 10, 10, 30, 30),
	}

	ranked := e.Rank(dets, frame)
	for i, want := range []string{"a", "b", "c"} {
		if ranked[i].Label != want {
			t.Errorf("position %d: expected %s, got %s", i, want, ranked[i].Label)
		}
	}
}

func TestRank_DangerOutranksEquivalentObject(t *testing.T) {
	e := newTestEngine(t, "en")
	frame := Frame{Width: 640, Height: 480}
	dets := []Detection{
		NewDetection("person", 0.7, 100, 100, 200, 200),
		NewDetection("truck", 0.7, 100, 100, 200, 200),
	}

	ranked := e.Rank(dets, frame)
	if ranked[0].Label != "truck" {
		t.Errorf("expected truck to outrank person, got %s first", ranked[0].Label)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("expected strictly higher danger score, got %f <= %f", ranked[0].Score, ranked[1].Score)
	}
}

func TestScore_DegenerateGeometry(t *testing.T) {
	e := newTestEngine(t, "en")

	inverted := NewDetection("cup", 1, 50, 50, 10, 10)
	if inverted.BBox.Area() != 0 {
		t.Errorf("expected inverted box to have zero area, got %f", inverted.BBox.Area())
	}

	score := e.Score(inverted, Frame{Width: 0, Height: 0})
	if score <= 0 {
		t.Errorf("expected positive centrality score for zero-size frame, got %f", score)
	}
}

func TestScore_CenterScoreBounded(t *testing.T) {
	e := newTestEngine(t, "en")
	frame := Frame{Width: 100, Height: 100}

	centered := e.Score(NewDetection("cup", 1, 50, 50, 50, 50), frame)
	want := 0.4 * 1 * frame.Area()
	if centered != want {
		t.Errorf("expected point at center to score %f, got %f", want, centered)
	}

	corner := e.Score(NewDetection("cup", 1, 0, 0, 0, 0), frame)
	if corner >= centered {
		t.Errorf("expected corner score below center score: %f >= %f", corner, centered)
	}
}

func TestSelect_Empty(t *testing.T) {
	e := newTestEngine(t, "en")
	if sel := e.Select(nil); len(sel) != 0 {
		t.Errorf("expected empty selection, got %d", len(sel))
	}
}

func ranked(labels []string, confidences []float64) []RankedDetection {
	out := make([]RankedDetection, len(labels))
	for i := range labels {
		out[i] = RankedDetection{
			Detection: Detection{Label: labels[i], Confidence: confidences[i]},
			Score:     float64(len(labels) - i),
		}
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		labels      []string
		confidences []float64
		want        []string
	}{
		{
			name:        "single detection",
			labels:      []string{"person"},
			confidences: []float64{0.9},
			want:        []string{"person"},
		},
		{
			name:        "hazard at index one wins",
			labels:      []string{"person", "car", "dog"},
			confidences: []float64{0.9, 0.2, 0.99},
			want:        []string{"person", "car"},
		},
		{
			name:        "first hazard wins over later higher confidence hazard",
			labels:      []string{"person", "chair", "bicycle", "bus"},
			confidences: []float64{0.9, 0.3, 0.4, 0.99},
			want:        []string{"person", "bicycle"},
		},
		{
			name:        "same label hazard is skipped",
			labels:      []string{"car", "car", "truck"},
			confidences: []float64{0.9, 0.9, 0.4},
			want:        []string{"car", "truck"},
		},
		{
			name:        "only same label hazards falls back to runner-up",
			labels:      []string{"car", "car"},
			confidences: []float64{0.9, 0.8},
			want:        []string{"car", "car"},
		},
		{
			name:        "confident runner-up",
			labels:      []string{"person", "dog"},
			confidences: []float64{0.9, 0.45},
			want:        []string{"person", "dog"},
		},
		{
			name:        "unconfident runner-up is dropped",
			labels:      []string{"person", "dog"},
			confidences: []float64{0.9, 0.44},
			want:        []string{"person"},
		},
	}

	e := newTestEngine(t, "en")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := e.Select(ranked(tt.labels, tt.confidences))
			if len(sel) != len(tt.want) {
				t.Fatalf("expected %d selected, got %d", len(tt.want), len(sel))
			}
			for i, label := range tt.want {
				if sel[i].Label != label {
					t.Errorf("position %d: expected %s, got %s", i, label, sel[i].Label)
				}
			}
		})
	}
}

func TestSelect_CustomSecondaryConfidence(t *testing.T) {
	vocab, _ := Builtin("en")
	e := NewEngine(vocab, WithSecondaryMinConfidence(0.9))

	sel := e.Select(ranked([]string{"person", "dog"}, []float64{0.9, 0.8}))
	if len(sel) != 1 {
		t.Errorf("expected runner-up below 0.9 to be dropped, got %d selected", len(sel))
	}
}

func TestPositionOf(t *testing.T) {
	tests := []struct {
		centerX float64
		width   int
		want    Position
	}{
		{centerX: 10, width: 100, want: PositionLeft},
		{centerX: 34.9, width: 100, want: PositionLeft},
		{centerX: 35, width: 100, want: PositionCenter},
		{centerX: 50, width: 100, want: PositionCenter},
		{centerX: 65, width: 100, want: PositionCenter},
		{centerX: 65.1, width: 100, want: PositionRight},
		{centerX: 0.5, width: 0, want: PositionCenter},
		{centerX: -5, width: 100, want: PositionLeft},
	}

	for _, tt := range tests {
		if got := PositionOf(tt.centerX, tt.width); got != tt.want {
			t.Errorf("PositionOf(%v, %d) = %s, want %s", tt.centerX, tt.width, got, tt.want)
		}
	}
}

func TestDistanceOf(t *testing.T) {
	tests := []struct {
		ratio float64
		want  Distance
	}{
		{ratio: 0.5, want: DistanceVeryClose},
		{ratio: 0.2201, want: DistanceVeryClose},
		{ratio: 0.22, want: DistanceClose},
		{ratio: 0.15, want: DistanceClose},
		{ratio: 0.10, want: DistanceMedium},
		{ratio: 0.05, want: DistanceMedium},
		{ratio: 0.04, want: DistanceFar},
		{ratio: 0, want: DistanceFar},
	}

	for _, tt := range tests {
		if got := DistanceOf(tt.ratio); got != tt.want {
			t.Errorf("DistanceOf(%v) = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	e := newTestEngine(t, "ru")
	frame := Frame{Width: 100, Height: 100}

	d := e.Describe(RankedDetection{Detection: NewDetection("car", 0.9, 60, 0, 100, 100)}, frame)
	if d.DisplayName != "машина" {
		t.Errorf("expected translated name, got %s", d.DisplayName)
	}
	if d.Position != PositionRight {
		t.Errorf("expected right, got %s", d.Position)
	}
	if d.Distance != DistanceVeryClose {
		t.Errorf("expected very-close, got %s", d.Distance)
	}
	if !d.Dangerous {
		t.Error("car should be dangerous")
	}
}

func TestDescribe_UnknownLabel(t *testing.T) {
	e := newTestEngine(t, "ru")
	d := e.Describe(RankedDetection{Detection: NewDetection("giraffe", 0.9, 0, 0, 10, 10)}, Frame{Width: 100, Height: 100})
	if d.DisplayName != "giraffe" {
		t.Errorf("expected raw label fallback, got %s", d.DisplayName)
	}
	if d.Dangerous {
		t.Error("unknown label should not be dangerous")
	}
	if d.Distance != DistanceFar {
		t.Errorf("expected far, got %s", d.Distance)
	}
}

func TestCompose_Empty(t *testing.T) {
	e := newTestEngine(t, "en")
	got := e.Compose(nil, Frame{Width: 640, Height: 480})
	if got != englishTemplate.Fallback {
		t.Errorf("expected fallback sentence, got %q", got)
	}
}

func TestCompose_PrimaryAndSecondary(t *testing.T) {
	e := newTestEngine(t, "en")
	frame := Frame{Width: 100, Height: 100}
	sel := Selection{
		{Detection: NewDetection("person", 0.9, 40, 40, 60, 60)},
		{Detection: NewDetection("bus", 0.5, 0, 0, 10, 10)},
	}

	got := e.Compose(sel, frame)
	want := "In front of you: person, in the center, far away. This is not dangerous. " +
		"Also bus, on the left, far away. This is dangerous."
	if got != want {
		t.Errorf("unexpected sentence:\n got: %q\nwant: %q", got, want)
	}
}

func TestCompose_Deterministic(t *testing.T) {
	e := newTestEngine(t, "ru")
	frame := Frame{Width: 640, Height: 480}
	sel := Selection{{Detection: NewDetection("dog", 0.9, 0, 0, 300, 300)}}

	first := e.Compose(sel, frame)
	for range 10 {
		if got := e.Compose(sel, frame); got != first {
			t.Fatalf("compose not deterministic: %q vs %q", got, first)
		}
	}
}

func TestNarrate_SingleCar(t *testing.T) {
	e := newTestEngine(t, "en")
	frame := Frame{Width: 640, Height: 480}
	dets := []Detection{NewDetection("car", 0.9, 100, 100, 300, 300)}

	ranked := e.Rank(dets, frame)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked detection, got %d", len(ranked))
	}

	n := e.Narrate(dets, frame)
	if n.DetectedCount != 1 {
		t.Errorf("expected detected count 1, got %d", n.DetectedCount)
	}
	if len(n.Picked) != 1 || n.Picked[0].Label != "car" {
		t.Fatalf("expected [car] selection, got %+v", n.Picked)
	}

	d := e.Describe(n.Picked[0], frame)
	if d.Distance != DistanceClose {
		t.Errorf("expected close for ratio 40000/307200, got %s", d.Distance)
	}
	// center x is 200/640 = 0.3125
	if d.Position != PositionLeft {
		t.Errorf("expected left, got %s", d.Position)
	}
	if !d.Dangerous {
		t.Error("car should be dangerous")
	}
	if !strings.Contains(n.Phrase, "car") || !strings.Contains(n.Phrase, "This is dangerous.") {
		t.Errorf("unexpected phrase %q", n.Phrase)
	}
}

func TestNarrate_NoDetections(t *testing.T) {
	e := newTestEngine(t, "ru")
	n := e.Narrate(nil, Frame{Width: 640, Height: 480})
	if n.Phrase != russianTemplate.Fallback {
		t.Errorf("expected fallback, got %q", n.Phrase)
	}
	if len(n.Picked) != 0 {
		t.Errorf("expected no picked objects, got %d", len(n.Picked))
	}
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := newTestEngine(t, "en")
	frame := Frame{Width: 640, Height: 480}
	dets := []Detection{
		NewDetection("person", 0.9, 200, 100, 400, 450),
		NewDetection("car", 0.6, 0, 200, 150, 300),
	}
	want := e.Narrate(dets, frame).Phrase

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := e.Narrate(dets, frame).Phrase; got != want {
				t.Errorf("concurrent narration differs: %q", got)
			}
		}()
	}
	wg.Wait()
}

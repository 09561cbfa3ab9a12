package predict

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/systree/internal/logging"
	"github.com/san-kum/systree/internal/orbit"
	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

func driftTree(t *testing.T) *systree.Tree {
	t.Helper()
	o := orbit.Fixed()
	tree, err := systree.Build(systree.NodeSpec{
		Tick: 1, Radius: 1e6, Orbit: &o,
		Bodies: []systree.Body{
			systree.NewBody("a", r2.Vec{}, r2.Vec{X: 1}, 0),
			systree.NewBody("b", r2.Vec{Y: 5}, r2.Vec{}, 0),
		},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return tree
}

func TestPredictorFillsFuture(t *testing.T) {
	tree := driftTree(t)

	p := Start(context.Background(), tree, "a", 10)
	if err := p.Wait(); err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	if p.Len() != 10 {
		t.Fatalf("expected 10 predictions, got %d", p.Len())
	}
	s, ok := p.At(3)
	if !ok {
		t.Fatal("no prediction at t=3")
	}
	if math.Abs(s.Position.X-3) > 1e-12 || s.Owner != "a" {
		t.Errorf("unexpected prediction %+v", s)
	}
	if _, ok := p.At(11); ok {
		t.Error("predicted past the requested horizon")
	}
	if h, ok := p.Horizon(); !ok || h != 10 {
		t.Errorf("expected horizon 10, got %d", h)
	}

	path := p.Path()
	for i := 1; i < len(path); i++ {
		if path[i].Time <= path[i-1].Time {
			t.Fatalf("path not in time order at %d", i)
		}
	}

	if tree.Time() != 0 || tree.Count() != 2 {
		t.Errorf("original tree changed: time %d, count %d", tree.Time(), tree.Count())
	}
}

func TestPredictorUnknownOwner(t *testing.T) {
	p := Start(context.Background(), driftTree(t), "ghost", 10)
	if err := p.Wait(); err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("expected no predictions, got %d", p.Len())
	}
	if _, ok := p.Horizon(); ok {
		t.Error("expected no horizon")
	}
}

func TestPredictorCancel(t *testing.T) {
	p := Start(context.Background(), driftTree(t), "a", math.MaxInt32)
	p.Cancel()

	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("predictor did not stop")
	}
	if err := p.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPredictorParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Start(ctx, driftTree(t), "a", math.MaxInt32)
	cancel()
	if err := p.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAll(t *testing.T) {
	paths, err := All(context.Background(), driftTree(t), []string{"a", "b", "ghost"}, 10, 2)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	if len(paths["a"]) != 10 || len(paths["b"]) != 10 {
		t.Fatalf("expected 10 samples each, got %d and %d", len(paths["a"]), len(paths["b"]))
	}
	if len(paths["ghost"]) != 0 {
		t.Errorf("expected nothing for an unknown owner, got %d", len(paths["ghost"]))
	}
	last := paths["a"][9]
	if last.Time != 10 || math.Abs(last.Body.Position.X-10) > 1e-12 {
		t.Errorf("unexpected final sample %+v", last)
	}
	if math.Abs(paths["b"][9].Body.Position.Y-5) > 1e-12 {
		t.Errorf("b should not move, got %+v", paths["b"][9])
	}
}

func TestAllLogsToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(&buf, "debug", "text")
	if err != nil {
		t.Fatal(err)
	}
	ctx := logging.WithLogger(context.Background(), l)

	if _, err := All(ctx, driftTree(t), []string{"a", "ghost"}, 5, 1); err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "forecast done") || !strings.Contains(out, "owner=a") {
		t.Errorf("expected forecast log for a, got %q", out)
	}
	if !strings.Contains(out, "nothing to forecast") || !strings.Contains(out, "owner=ghost") {
		t.Errorf("expected empty forecast log for ghost, got %q", out)
	}
}

package viewcache

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

const space = xr.Space(xr.ReferenceSpaceView)

func TestViews_CommitsValidLocation(t *testing.T) {
	c := New()
	mock := xr.NewMock()

	snap, err := c.Views(mock, space)
	if err != nil {
		t.Fatalf("Views: %v", err)
	}
	if !snap.Committed {
		t.Error("expected a fully valid location to be committed")
	}
	if snap.Time != 1 {
		t.Errorf("Time: got %d, want 1", snap.Time)
	}
	if snap.Views[0].Fov != xr.DefaultFov {
		t.Errorf("left fov: got %+v, want %+v", snap.Views[0].Fov, xr.DefaultFov)
	}

	stats := c.Stats()
	if stats.Refreshes != 1 || stats.Commits != 1 {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestViews_SameTimeSkipsRuntime(t *testing.T) {
	c := New()
	mock := xr.NewMock()

	for i := 0; i < 5; i++ {
		if _, err := c.Views(mock, space); err != nil {
			t.Fatalf("Views: %v", err)
		}
	}
	if got := mock.CallCount("LocateViews"); got != 1 {
		t.Errorf("LocateViews calls: got %d, want 1", got)
	}
	if got := c.Stats().Hits; got != 4 {
		t.Errorf("Hits: got %d, want 4", got)
	}

	mock.Advance()
	if _, err := c.Views(mock, space); err != nil {
		t.Fatalf("Views: %v", err)
	}
	if got := mock.CallCount("LocateViews"); got != 2 {
		t.Errorf("LocateViews calls after advance: got %d, want 2", got)
	}
}

func TestViews_PartialLocationKeepsPrevious(t *testing.T) {
	c := New()
	mock := xr.NewMock()

	first, err := c.Views(mock, space)
	if err != nil {
		t.Fatalf("Views: %v", err)
	}

	tests := []struct {
		name  string
		flags xr.ViewStateFlags
	}{
		{"orientation only", xr.ViewStateOrientationValid},
		{"position only", xr.ViewStatePositionValid},
		{"neither", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock.LocateViewsFunc = func(xr.Space, xr.Time) (xr.ViewState, []xr.View, error) {
				return xr.ViewState{Flags: tc.flags}, xr.StereoViews(xr.Fovf{AngleLeft: -1, AngleRight: 1, AngleUp: 1, AngleDown: -1}, 0.07), nil
			}
			mock.Advance()
			mock.Reset()

			snap, err := c.Views(mock, space)
			if err != nil {
				t.Fatalf("Views: %v", err)
			}
			if snap != first {
				t.Errorf("expected previous snapshot, got %+v", snap)
			}

			// The timestamp was not advanced, so the next query retries.
			if _, err := c.Views(mock, space); err != nil {
				t.Fatalf("Views: %v", err)
			}
			if got := mock.CallCount("LocateViews"); got != 2 {
				t.Errorf("LocateViews calls: got %d, want 2", got)
			}
		})
	}
}

func TestViews_ProvisionalBeforeFirstCommit(t *testing.T) {
	c := New()
	mock := xr.NewMock()
	mock.LocateViewsFunc = func(xr.Space, xr.Time) (xr.ViewState, []xr.View, error) {
		return xr.ViewState{Flags: xr.ViewStateOrientationValid}, xr.StereoViews(xr.DefaultFov, 0.064), nil
	}

	snap, err := c.Views(mock, space)
	if err != nil {
		t.Fatalf("Views: %v", err)
	}
	if snap.Committed {
		t.Error("expected provisional snapshot")
	}
	if snap.Views[1].Pose.Position.X != 0.032 {
		t.Errorf("right eye X: got %v, want 0.032", snap.Views[1].Pose.Position.X)
	}
	if got := c.Stats().Discards; got != 1 {
		t.Errorf("Discards: got %d, want 1", got)
	}
}

func TestViews_RuntimeErrorIsProtocolError(t *testing.T) {
	c := New()
	mock := xr.NewMock()
	mock.LocateViewsFunc = func(xr.Space, xr.Time) (xr.ViewState, []xr.View, error) {
		return xr.ViewState{}, nil, xr.ResultErrorSessionLost.Err("xrLocateViews")
	}

	_, err := c.Views(mock, space)
	if !errors.Is(err, xr.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	var re *xr.ResultError
	if !errors.As(err, &re) || re.Result != xr.ResultErrorSessionLost {
		t.Errorf("expected wrapped ResultError with SessionLost, got %v", err)
	}
}

func TestViews_WrongViewCountPanics(t *testing.T) {
	c := New()
	mock := xr.NewMock()
	mock.LocateViewsFunc = func(xr.Space, xr.Time) (xr.ViewState, []xr.View, error) {
		return xr.ViewState{Flags: xr.ViewStateOrientationValid | xr.ViewStatePositionValid}, make([]xr.View, 1), nil
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for a single located view")
		}
	}()
	_, _ = c.Views(mock, space)
}

func TestViews_PerSpaceAndInvalidate(t *testing.T) {
	c := New()
	mock := xr.NewMock()
	local := mock.ReferenceSpace(xr.ReferenceSpaceLocal)
	stage := mock.ReferenceSpace(xr.ReferenceSpaceStage)

	for _, sp := range []xr.Space{local, stage, local, stage} {
		if _, err := c.Views(mock, sp); err != nil {
			t.Fatalf("Views: %v", err)
		}
	}
	if got := mock.CallCount("LocateViews"); got != 2 {
		t.Errorf("LocateViews calls: got %d, want one per space", got)
	}

	c.Invalidate()
	if (c.Stats() != Stats{}) {
		t.Errorf("expected zeroed stats after Invalidate, got %+v", c.Stats())
	}
	if _, err := c.Views(mock, local); err != nil {
		t.Fatalf("Views: %v", err)
	}
	if got := mock.CallCount("LocateViews"); got != 3 {
		t.Errorf("LocateViews calls after Invalidate: got %d, want 3", got)
	}
}

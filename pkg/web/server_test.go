package web

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-hmdbridge/pkg/hmd"
	"github.com/teslashibe/go-hmdbridge/pkg/projection"
	"github.com/teslashibe/go-hmdbridge/pkg/session"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

func newTestServer(t *testing.T, install bool) *Server {
	t.Helper()
	guard := session.NewGuard(session.WithPollInterval(time.Millisecond), session.WithWaitTimeout(20*time.Millisecond))
	device := hmd.New(guard, xr.StaticCapabilities{VisibilityMask: true}, hmd.DefaultConfig())
	if install {
		guard.Install(xr.NewMock())
	}
	return NewServer(":0", device)
}

func do(t *testing.T, s *Server, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestServer_HMD(t *testing.T) {
	s := newTestServer(t, true)

	status, body := do(t, s, http.MethodGet, "/api/hmd", "")
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, body)
	}
	info := decode[HMDInfo](t, body)
	if info.RenderWidth != 1440 || info.RenderHeight != 1600 {
		t.Errorf("render size: got %dx%d", info.RenderWidth, info.RenderHeight)
	}
	if math.Abs(float64(info.IPD-0.064)) > 1e-6 {
		t.Errorf("IPD: got %v, want 0.064", info.IPD)
	}
	if info.VsyncAvailable || info.DistortionSupported {
		t.Errorf("expected vsync and distortion unavailable: %+v", info)
	}
}

func TestServer_Projection(t *testing.T) {
	s := newTestServer(t, true)

	status, body := do(t, s, http.MethodGet, "/api/projection/left?api=opengl&near=0.5&far=50", "")
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, body)
	}
	info := decode[ProjectionInfo](t, body)
	if info.Raw != projection.FromFov(xr.DefaultFov) {
		t.Errorf("raw: got %+v", info.Raw)
	}
	if info.Near != 0.5 || info.Far != 50 || info.API != "opengl" {
		t.Errorf("echo: got %+v", info)
	}
	if info.Matrix.M[2][3] != -1 {
		t.Errorf("expected transposed OpenGL matrix, got %v", info.Matrix.M)
	}

	tests := []struct {
		name   string
		target string
	}{
		{"bad eye", "/api/projection/middle"},
		{"bad api", "/api/projection/right?api=vulkan"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if status, _ := do(t, s, http.MethodGet, tc.target, ""); status != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", status)
			}
		})
	}
}

func TestServer_HiddenMesh(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/hidden-mesh/left/standard", http.StatusOK},
		{"/api/hidden-mesh/right/2", http.StatusOK},
		{"/api/hidden-mesh/left/7", http.StatusBadRequest},
		{"/api/hidden-mesh/left/sideways", http.StatusBadRequest},
	}
	for _, tc := range tests {
		if status, body := do(t, s, http.MethodGet, tc.target, ""); status != tc.want {
			t.Errorf("%s: got %d, want %d (%s)", tc.target, status, tc.want, body)
		}
	}
}

func TestServer_Pose(t *testing.T) {
	s := newTestServer(t, true)

	status, body := do(t, s, http.MethodGet, "/api/pose?origin=seated", "")
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, body)
	}
	info := decode[PoseInfo](t, body)
	if !info.Valid || info.Origin != "seated" || info.Pose.TrackingResult != vr.TrackingResultRunningOK {
		t.Errorf("pose: got %+v", info)
	}

	if status, _ := do(t, s, http.MethodGet, "/api/pose?origin=sideways", ""); status != http.StatusBadRequest {
		t.Errorf("bad origin: got %d, want 400", status)
	}
}

func TestServer_NoSession(t *testing.T) {
	s := newTestServer(t, false)

	for _, target := range []string{"/api/pose", "/api/hmd", "/api/projection/left"} {
		if status, _ := do(t, s, http.MethodGet, target, ""); status != http.StatusServiceUnavailable {
			t.Errorf("%s: got %d, want 503", target, status)
		}
	}
}

func TestServer_PropertiesAndProfile(t *testing.T) {
	s := newTestServer(t, true)

	frequency := func() any {
		_, body := do(t, s, http.MethodGet, "/api/properties", "")
		for _, p := range decode[[]PropertyInfo](t, body) {
			if p.ID == vr.PropDisplayFrequencyFloat {
				return p.Value
			}
		}
		t.Fatal("Prop_DisplayFrequency_Float missing")
		return nil
	}

	if got := frequency(); got != 90.0 {
		t.Errorf("default frequency: got %v, want 90", got)
	}

	status, body := do(t, s, http.MethodPut, "/api/profile?name=index", "properties:\n  Prop_DisplayFrequency_Float: 144\n")
	if status != http.StatusOK {
		t.Fatalf("put profile: status %d: %s", status, body)
	}
	if got := frequency(); got != 144.0 {
		t.Errorf("profile frequency: got %v, want 144", got)
	}
	_, body = do(t, s, http.MethodGet, "/api/hmd", "")
	if info := decode[HMDInfo](t, body); info.Profile != "index" {
		t.Errorf("profile name: got %q", info.Profile)
	}

	if status, _ := do(t, s, http.MethodPut, "/api/profile", "properties:\n  Prop_Nope_Bool: true\n"); status != http.StatusBadRequest {
		t.Errorf("bad profile: got %d, want 400", status)
	}

	if status, _ := do(t, s, http.MethodDelete, "/api/profile", ""); status != http.StatusNoContent {
		t.Errorf("delete profile: got %d, want 204", status)
	}
	if got := frequency(); got != 90.0 {
		t.Errorf("frequency after delete: got %v, want 90", got)
	}
}

func TestServer_Stats(t *testing.T) {
	s := newTestServer(t, true)
	do(t, s, http.MethodGet, "/api/projection/left", "")
	do(t, s, http.MethodGet, "/api/projection/right", "")

	_, body := do(t, s, http.MethodGet, "/api/stats", "")
	stats := decode[StatsInfo](t, body)
	if stats.ViewCache.Commits != 1 || stats.ViewCache.Hits < 1 {
		t.Errorf("view cache: got %+v", stats.ViewCache)
	}
	if stats.PoseClients != 0 {
		t.Errorf("pose clients: got %d", stats.PoseClients)
	}
}

func TestServer_PoseSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t, true)
	if status, _ := do(t, s, http.MethodGet, "/ws/pose", ""); status != http.StatusUpgradeRequired {
		t.Errorf("status: got %d, want 426", status)
	}
}

func TestServer_SamplePose(t *testing.T) {
	s := newTestServer(t, true)

	for want := uint64(1); want <= 2; want++ {
		frame, err := s.samplePose()
		if err != nil {
			t.Fatalf("samplePose: %v", err)
		}
		if frame.Seq != want || !frame.Valid || frame.Origin != "standing" {
			t.Errorf("frame %d: got %+v", want, frame)
		}
	}
}

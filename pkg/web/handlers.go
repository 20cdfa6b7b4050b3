package web

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-hmdbridge/pkg/hiddenmesh"
	"github.com/teslashibe/go-hmdbridge/pkg/hub"
	"github.com/teslashibe/go-hmdbridge/pkg/projection"
	"github.com/teslashibe/go-hmdbridge/pkg/props"
	"github.com/teslashibe/go-hmdbridge/pkg/session"
	"github.com/teslashibe/go-hmdbridge/pkg/viewcache"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

// HMDInfo is the summary returned by /api/hmd.
type HMDInfo struct {
	RenderWidth         uint32  `json:"render_width"`
	RenderHeight        uint32  `json:"render_height"`
	IPD                 float32 `json:"ipd"`
	SecondsSinceVsync   float32 `json:"seconds_since_vsync"`
	VsyncAvailable      bool    `json:"vsync_available"`
	DistortionSupported bool    `json:"distortion_supported"`
	Profile             string  `json:"profile,omitempty"`
}

// ProjectionInfo is returned by /api/projection/:eye.
type ProjectionInfo struct {
	Eye    string              `json:"eye"`
	Near   float32             `json:"near"`
	Far    float32             `json:"far"`
	API    string              `json:"api"`
	Raw    projection.Tangents `json:"raw"`
	Matrix vr.HmdMatrix44      `json:"matrix"`
}

// PoseInfo is returned by /api/pose.
type PoseInfo struct {
	Origin string               `json:"origin"`
	Valid  bool                 `json:"valid"`
	Pose   vr.TrackedDevicePose `json:"pose"`
}

// PropertyInfo is one entry of /api/properties.
type PropertyInfo struct {
	ID    vr.TrackedDeviceProperty `json:"id"`
	Name  string                   `json:"name"`
	Value any                      `json:"value,omitempty"`
	Error string                   `json:"error,omitempty"`
}

// StatsInfo is returned by /api/stats.
type StatsInfo struct {
	ViewCache   viewcache.Stats `json:"view_cache"`
	PoseClients int             `json:"pose_clients"`
	PoseDropped uint64          `json:"pose_dropped"`
}

// fail maps device errors onto HTTP statuses.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNoSession):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, hiddenmesh.ErrInvalidMeshType):
		status = fiber.StatusBadRequest
	case errors.Is(err, xr.ErrProtocol):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func parseEye(s string) (vr.Eye, bool) {
	switch s {
	case "left", "0":
		return vr.EyeLeft, true
	case "right", "1":
		return vr.EyeRight, true
	}
	return 0, false
}

func parseOrigin(s string) (vr.TrackingUniverseOrigin, bool) {
	switch s {
	case "seated":
		return vr.TrackingUniverseSeated, true
	case "", "standing":
		return vr.TrackingUniverseStanding, true
	case "raw":
		return vr.TrackingUniverseRawAndUncalibrated, true
	}
	return 0, false
}

// parseMeshType accepts a mesh type name or its raw number. Out-of-range
// numbers are passed through for the normalizer to reject.
func parseMeshType(s string) (vr.HiddenAreaMeshType, bool) {
	for _, t := range []vr.HiddenAreaMeshType{vr.HiddenAreaMeshStandard, vr.HiddenAreaMeshInverse, vr.HiddenAreaMeshLineLoop} {
		if s == t.String() {
			return t, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return vr.HiddenAreaMeshType(n), true
}

// handleHMD returns the render size, IPD and timing of the headset
func (s *Server) handleHMD(c *fiber.Ctx) error {
	width, height, err := s.device.RecommendedRenderTargetSize()
	if err != nil {
		return s.fail(c, err)
	}
	ipd, err := s.device.IPD()
	if err != nil {
		return s.fail(c, err)
	}
	seconds, _, vsync := s.device.TimeSinceLastVsync()
	_, distortion := s.device.ComputeDistortion(vr.EyeLeft, 0.5, 0.5)

	info := HMDInfo{
		RenderWidth:         width,
		RenderHeight:        height,
		IPD:                 ipd,
		SecondsSinceVsync:   seconds,
		VsyncAvailable:      vsync,
		DistortionSupported: distortion,
	}
	if p := s.device.Profile(); p != nil {
		info.Profile = p.Name
	}
	return c.JSON(info)
}

// handleProjection returns the raw tangents and the projection matrix of one eye
func (s *Server) handleProjection(c *fiber.Ctx) error {
	eye, ok := parseEye(c.Params("eye"))
	if !ok {
		return badRequest(c, "eye must be left or right")
	}
	near := float32(c.QueryFloat("near", 0.1))
	far := float32(c.QueryFloat("far", 100))

	conv := vr.APIDirectX
	api := c.Query("api", "directx")
	switch api {
	case "directx":
	case "opengl":
		conv = vr.APIOpenGL
	default:
		return badRequest(c, "api must be directx or opengl")
	}

	raw, err := s.device.ProjectionRaw(eye)
	if err != nil {
		return s.fail(c, err)
	}
	m, err := s.device.ProjectionMatrix(eye, near, far, conv)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(ProjectionInfo{
		Eye:    eye.String(),
		Near:   near,
		Far:    far,
		API:    api,
		Raw:    raw,
		Matrix: m,
	})
}

// handleHiddenMesh returns the hidden-area mesh of one eye
func (s *Server) handleHiddenMesh(c *fiber.Ctx) error {
	eye, ok := parseEye(c.Params("eye"))
	if !ok {
		return badRequest(c, "eye must be left or right")
	}
	t, ok := parseMeshType(c.Params("type"))
	if !ok {
		return badRequest(c, "type must be standard, inverse or lineloop")
	}

	mesh, err := s.device.HiddenAreaMesh(eye, t)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(mesh)
}

// handlePose returns the current head pose
func (s *Server) handlePose(c *fiber.Ctx) error {
	origin, ok := parseOrigin(c.Query("origin"))
	if !ok {
		return badRequest(c, "origin must be seated, standing or raw")
	}

	pose, valid, err := s.device.Pose(origin)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(PoseInfo{Origin: origin.String(), Valid: valid, Pose: pose})
}

// handleProperties resolves every known property through its typed getter
func (s *Server) handleProperties(c *fiber.Ctx) error {
	all := vr.Properties()
	out := make([]PropertyInfo, 0, len(all))
	for _, prop := range all {
		info := PropertyInfo{ID: prop, Name: prop.String()}

		var perr vr.TrackedPropertyError
		switch prop.Type() {
		case vr.PropertyTypeBool:
			info.Value, perr = s.device.BoolProperty(prop)
		case vr.PropertyTypeFloat:
			info.Value, perr = s.device.FloatProperty(prop)
		case vr.PropertyTypeInt32:
			info.Value, perr = s.device.Int32Property(prop)
		case vr.PropertyTypeString:
			info.Value, perr = s.device.StringProperty(prop)
		default:
			perr = vr.PropErrUnknownProperty
		}
		if perr != vr.PropErrSuccess {
			info.Value = nil
			info.Error = perr.String()
		}
		out = append(out, info)
	}
	return c.JSON(out)
}

// handlePutProfile replaces the property override profile with a YAML body
func (s *Server) handlePutProfile(c *fiber.Ctx) error {
	p, err := props.ParseProfile(c.Body())
	if err != nil {
		return badRequest(c, err.Error())
	}
	if name := c.Query("name"); name != "" {
		p.Name = name
	}
	s.device.SetProfile(p)
	return c.JSON(fiber.Map{
		"profile":    p.Name,
		"properties": len(p.Properties),
	})
}

// handleDeleteProfile removes the property override profile
func (s *Server) handleDeleteProfile(c *fiber.Ctx) error {
	s.device.SetProfile(nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// handleStats returns view cache and stream counters
func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(StatsInfo{
		ViewCache:   s.device.Stats(),
		PoseClients: s.poseHub.ClientCount(),
		PoseDropped: s.poseHub.Dropped(),
	})
}

// handlePoseWS streams pose frames until the client goes away
func (s *Server) handlePoseWS(c *websocket.Conn) {
	client := hub.NewClient(s.poseHub, c)
	if client == nil {
		return
	}
	client.Run()
}

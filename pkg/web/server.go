// Package web serves the HMD inspector: a JSON view of everything the
// device layer answers, plus a live pose stream.
package web

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-hmdbridge/pkg/hmd"
	"github.com/teslashibe/go-hmdbridge/pkg/hub"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
)

// PoseFrame is one message on the pose stream.
type PoseFrame struct {
	Seq    uint64               `json:"seq"`
	Time   time.Time            `json:"time"`
	Origin string               `json:"origin"`
	Valid  bool                 `json:"valid"`
	Pose   vr.TrackedDevicePose `json:"pose"`
}

// Server is the inspector server
type Server struct {
	app    *fiber.App
	addr   string
	device *hmd.Device

	// Hub for websocket broadcast
	poseHub *hub.Hub

	interval time.Duration
	origin   vr.TrackingUniverseOrigin
	seq      atomic.Uint64

	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPoseInterval sets how often the pose stream samples the head.
func WithPoseInterval(d time.Duration) Option {
	return func(s *Server) { s.interval = d }
}

// WithOrigin sets the tracking origin of the pose stream.
func WithOrigin(origin vr.TrackingUniverseOrigin) Option {
	return func(s *Server) { s.origin = origin }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger.With("component", "web") }
}

// NewServer creates an inspector for device listening on addr.
func NewServer(addr string, device *hmd.Device, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		device:   device,
		poseHub:  hub.New("pose"),
		interval: 50 * time.Millisecond,
		origin:   vr.TrackingUniverseStanding,
		logger:   slog.Default().With("component", "web"),
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		AppName:               "HMD Inspector",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/hmd", s.handleHMD)
	api.Get("/projection/:eye", s.handleProjection)
	api.Get("/hidden-mesh/:eye/:type", s.handleHiddenMesh)
	api.Get("/pose", s.handlePose)
	api.Get("/properties", s.handleProperties)
	api.Put("/profile", s.handlePutProfile)
	api.Delete("/profile", s.handleDeleteProfile)
	api.Get("/stats", s.handleStats)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/pose", websocket.New(s.handlePoseWS))

	s.app = app
	return s
}

// Start runs the pose hub and stream and serves until the listener fails.
// Cancelling ctx stops the stream; call Shutdown to stop serving.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("inspector listening", "addr", s.addr)

	go s.poseHub.Run(ctx)
	go s.StreamPoses(ctx)

	return s.app.Listen(s.addr)
}

// StreamPoses samples the head pose every interval and broadcasts it to
// connected clients until ctx is done. Samples are skipped while nobody
// is listening.
func (s *Server) StreamPoses(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.poseHub.ClientCount() == 0 {
				continue
			}
			frame, err := s.samplePose()
			if err != nil {
				s.logger.Debug("pose sample skipped", "error", err)
				continue
			}
			if err := s.poseHub.BroadcastJSON(frame); err != nil {
				s.logger.Warn("pose broadcast failed", "error", err)
			}
		}
	}
}

func (s *Server) samplePose() (PoseFrame, error) {
	pose, valid, err := s.device.Pose(s.origin)
	if err != nil {
		return PoseFrame{}, err
	}
	return PoseFrame{
		Seq:    s.seq.Add(1),
		Time:   time.Now(),
		Origin: s.origin.String(),
		Valid:  valid,
		Pose:   pose,
	}, nil
}

// PoseHub returns the hub feeding /ws/pose.
func (s *Server) PoseHub() *hub.Hub {
	return s.poseHub
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// hmdwatch prints the inspector's live head pose stream.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-hmdbridge/internal/log"
	"github.com/teslashibe/go-hmdbridge/pkg/web"
)

func main() {
	url := flag.String("url", "ws://localhost:8090/ws/pose", "Inspector pose stream URL")
	count := flag.Int("n", 0, "Stop after this many frames (0 runs until interrupted)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, *url, nil)
	if err != nil {
		log.Error("failed to connect to pose stream", "url", *url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("connected", "url", *url)

	// Unblock the reader on interrupt.
	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()

	if err := watch(conn, *count, os.Stdout); err != nil && ctx.Err() == nil {
		log.Error("pose stream ended", "error", err)
		os.Exit(1)
	}
}

// frameReader is the part of a websocket connection watch reads from.
type frameReader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// watch prints one line per pose frame until the stream closes or count
// frames have been printed. A normal close is not an error.
func watch(conn frameReader, count int, out io.Writer) error {
	for n := 0; count == 0 || n < count; n++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var frame web.PoseFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}
		if err := printFrame(out, frame); err != nil {
			return err
		}
	}
	return nil
}

func printFrame(out io.Writer, f web.PoseFrame) error {
	m := f.Pose.DeviceToAbsoluteTracking.M
	status := "valid"
	if !f.Valid {
		status = "invalid"
	}
	_, err := fmt.Fprintf(out, "%6d %s %-8s pos=(%+.3f %+.3f %+.3f) fwd=(%+.3f %+.3f %+.3f)\n",
		f.Seq, f.Time.Format("15:04:05.000"), status,
		m[0][3], m[1][3], m[2][3],
		-m[0][2], -m[1][2], -m[2][2])
	return err
}

package control

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"lecturenotes/internal/pipeline"
)

// Request is one line sent over the control socket.
type Request struct {
	Op string `json:"op"`
}

// Status is the server's answer to the "status" op.
type Status struct {
	Running    bool              `json:"running"`
	PID        int               `json:"pid"`
	Addr       string            `json:"addr"`
	UptimeSec  float64           `json:"uptime_sec"`
	QueueDepth int               `json:"queue_depth"`
	Lectures   map[string]int    `json:"lectures"`
	Metrics    pipeline.Snapshot `json:"metrics"`
	Events     []pipeline.Event  `json:"events"`
}

type SimpleResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Query sends op to the control socket and decodes the reply into out.
func Query(socketPath, op string, out any) error {
	conn, err := net.DialTimeout("unix", socketPath, 2*time.Second)
	if err != nil {
		return fmt.Errorf("cannot connect to server: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if err := json.NewEncoder(conn).Encode(Request{Op: op}); err != nil {
		return err
	}
	if err := json.NewDecoder(conn).Decode(out); err != nil {
		return fmt.Errorf("read %s reply: %w", op, err)
	}
	return nil
}

package run

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"time"

	"lecturenotes/internal/control"
)

func (s *Server) controlLoop(ctx context.Context) {
	ln, err := net.Listen("unix", s.cfg.Paths.SocketPath)
	if err != nil {
		s.logger.Errorf("control listen: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Errorf("control accept: %v", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control connection close: %v", err)
		}
	}()
	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		return
	}
	var req control.Request
	if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
		return
	}
	switch req.Op {
	case "status":
		_ = json.NewEncoder(conn).Encode(s.status(ctx))
	case "health":
		_ = json.NewEncoder(conn).Encode(control.SimpleResponse{OK: true, Message: "ok"})
	default:
		_ = json.NewEncoder(conn).Encode(control.SimpleResponse{Message: "unknown op " + req.Op})
	}
}

func (s *Server) status(ctx context.Context) control.Status {
	st := control.Status{
		Running:    true,
		PID:        os.Getpid(),
		Addr:       s.addr,
		UptimeSec:  time.Since(s.startedAt).Seconds(),
		QueueDepth: s.pipeline.QueueDepth(),
		Lectures:   map[string]int{},
		Metrics:    s.pipeline.Metrics.Snapshot(),
		Events:     s.pipeline.Events(),
	}
	counts, err := s.pipeline.Store().Count(ctx)
	if err != nil {
		s.logger.Warnf("status: count lectures: %v", err)
	}
	for status, n := range counts {
		st.Lectures[string(status)] = n
	}
	return st
}

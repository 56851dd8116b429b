// Command bufferd is a TCP daemon wrapping one storagemgr page file and
// one bufferpool.Pool, serving pin/unpin/write/dirty/force/flush/stats
// commands as length-prefixed JSON frames. It is the buffer-pool
// counterpart of novasql's cmd/server: same accept loop and graceful
// shutdown shape, a different wire protocol underneath.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tuannm99/pagepool/internal"
	"github.com/tuannm99/pagepool/internal/bufferpool"
	"github.com/tuannm99/pagepool/internal/pagewire"
)

type daemon struct {
	pool *bufferpool.Pool

	mu     sync.Mutex
	pinned map[int32]bufferpool.PageHandle
}

func newDaemon(pool *bufferpool.Pool) *daemon {
	return &daemon{
		pool:   pool,
		pinned: make(map[int32]bufferpool.PageHandle),
	}
}

func (d *daemon) handle(req pagewire.Request) pagewire.Response {
	resp := pagewire.Response{ID: req.ID}

	switch req.Op {
	case pagewire.OpPin:
		h, err := d.pool.Pin(req.PageNum)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		d.mu.Lock()
		d.pinned[req.PageNum] = h
		d.mu.Unlock()
		resp.Data = append([]byte(nil), h.Data()...)

	case pagewire.OpUnpin:
		h, ok := d.lookupHandle(req.PageNum)
		if !ok {
			resp.Error = bufferpool.ErrPageNotResident.Error()
			return resp
		}
		if err := d.pool.Unpin(h); err != nil {
			resp.Error = err.Error()
		}

	case pagewire.OpWrite:
		h, ok := d.lookupHandle(req.PageNum)
		if !ok {
			resp.Error = bufferpool.ErrPageNotResident.Error()
			return resp
		}
		copy(h.Data(), req.Data)

	case pagewire.OpDirty:
		h, ok := d.lookupHandle(req.PageNum)
		if !ok {
			resp.Error = bufferpool.ErrPageNotResident.Error()
			return resp
		}
		if err := d.pool.MarkDirty(h); err != nil {
			resp.Error = err.Error()
		}

	case pagewire.OpForce:
		h, ok := d.lookupHandle(req.PageNum)
		if !ok {
			resp.Error = bufferpool.ErrPageNotResident.Error()
			return resp
		}
		if err := d.pool.ForcePage(h); err != nil {
			resp.Error = err.Error()
		}

	case pagewire.OpFlush:
		if err := d.pool.ForceFlushPool(); err != nil {
			resp.Error = err.Error()
		}

	case pagewire.OpStats:
		resp.Stats = &pagewire.Stats{
			Strategy:      d.pool.Strategy().String(),
			NumFrames:     d.pool.NumFrames(),
			FrameContents: d.pool.FrameContents(),
			DirtyFlags:    d.pool.DirtyFlags(),
			FixCounts:     d.pool.FixCounts(),
			NumReadIO:     d.pool.NumReadIO(),
			NumWriteIO:    d.pool.NumWriteIO(),
		}

	case pagewire.OpShutdown:
		if err := d.pool.Shutdown(); err != nil {
			resp.Error = err.Error()
		}

	default:
		resp.Error = fmt.Sprintf("bufferd: unknown op %q", req.Op)
	}

	return resp
}

// lookupHandle returns the most recently pinned handle recorded for
// pageNum. The handle only carries the page number, the pool pointer, and
// a frame index; Pool's own directory is the source of truth, so a stale
// frame index is harmless as long as the page is still resident under
// that number (Pool.Unpin/MarkDirty/ForcePage all re-resolve by page_num).
func (d *daemon) lookupHandle(pageNum int32) (bufferpool.PageHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.pinned[pageNum]
	return h, ok
}

func (d *daemon) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req pagewire.Request
		if err := pagewire.ReadFrame(conn, &req); err != nil {
			return
		}

		resp := d.handle(req)
		if err := pagewire.WriteFrame(conn, resp); err != nil {
			return
		}
	}
}

func run(addr string, d *daemon) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer func() { _ = ln.Close() }()

	slog.Info("bufferd listening", "addr", addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			slog.Error("accept", "err", err)
			continue
		}
		go d.handleConn(ctx, conn)
	}
}

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "bufferd.yaml", "path to bufferd yaml config")
	flag.Parse()

	cfg, err := internal.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	capacity := cfg.BufferPool.Capacity
	if capacity <= 0 {
		capacity = 128
	}
	strategy, err := bufferpool.ParseStrategy(cfg.BufferPool.Strategy)
	if err != nil {
		slog.Error("parse strategy", "err", err)
		os.Exit(1)
	}

	pool, err := bufferpool.Init(cfg.Storage.File, capacity, strategy)
	if err != nil {
		slog.Error("init buffer pool", "err", err)
		os.Exit(1)
	}

	addr := cfg.Server.Addr
	if addr == "" {
		addr = "127.0.0.1:8866"
	}

	if err := run(addr, newDaemon(pool)); err != nil {
		slog.Error("bufferd error", "err", err)
		os.Exit(1)
	}
}

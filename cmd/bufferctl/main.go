// Command bufferctl is an interactive REPL client for bufferd, grounded
// on novasql's cmd/client: the same readline history/meta-command shape,
// re-purposed to issue buffer-pool commands instead of SQL statements.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chzyer/readline"

	"github.com/tuannm99/pagepool/internal/pagewire"
)

type client struct {
	conn net.Conn
	mu   sync.Mutex
	id   atomic.Uint64
}

func dial(addr string, timeout time.Duration) (*client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &client{conn: c}, nil
}

func (c *client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *client) do(req pagewire.Request) (pagewire.Response, error) {
	req.ID = c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := pagewire.WriteFrame(c.conn, req); err != nil {
		return pagewire.Response{}, err
	}

	var resp pagewire.Response
	if err := pagewire.ReadFrame(c.conn, &resp); err != nil {
		return pagewire.Response{}, err
	}
	if resp.ID != req.ID {
		return pagewire.Response{}, fmt.Errorf("bufferctl: response id mismatch: got=%d want=%d", resp.ID, req.ID)
	}
	return resp, nil
}

// ---- History (own file) ----

type history struct {
	path  string
	lines []string
}

func newHistory(path string) *history {
	return &history{path: path}
}

func (h *history) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *history) Append(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, cmd); err != nil {
		return err
	}
	h.lines = append(h.lines, cmd)
	return nil
}

func (h *history) Print(last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	start := len(h.lines) - last
	if start < 0 {
		start = 0
	}
	for i := start; i < len(h.lines); i++ {
		fmt.Printf("%5d  %s\n", i+1, h.lines[i])
	}
}

// ---- command parsing ----

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") || line == "quit" || line == "exit"
}

func runCommand(c *client, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	var req pagewire.Request
	switch strings.ToLower(fields[0]) {
	case "pin":
		n, err := pageArg(fields)
		if err != nil {
			return err
		}
		req = pagewire.Request{Op: pagewire.OpPin, PageNum: n}
	case "unpin":
		n, err := pageArg(fields)
		if err != nil {
			return err
		}
		req = pagewire.Request{Op: pagewire.OpUnpin, PageNum: n}
	case "write":
		if len(fields) != 3 {
			return fmt.Errorf("usage: write <page> <text>")
		}
		n, err := pageArg(fields)
		if err != nil {
			return err
		}
		req = pagewire.Request{Op: pagewire.OpWrite, PageNum: n, Data: []byte(fields[2])}
	case "dirty":
		n, err := pageArg(fields)
		if err != nil {
			return err
		}
		req = pagewire.Request{Op: pagewire.OpDirty, PageNum: n}
	case "force":
		n, err := pageArg(fields)
		if err != nil {
			return err
		}
		req = pagewire.Request{Op: pagewire.OpForce, PageNum: n}
	case "flush":
		req = pagewire.Request{Op: pagewire.OpFlush}
	case "stats":
		req = pagewire.Request{Op: pagewire.OpStats}
	case "shutdown":
		req = pagewire.Request{Op: pagewire.OpShutdown}
	default:
		return fmt.Errorf("unknown command: %s (try pin/unpin/write/dirty/force/flush/stats/shutdown)", fields[0])
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}
	printResponse(resp)
	return nil
}

func pageArg(fields []string) (int32, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("usage: %s <page>", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", fields[1])
	}
	return int32(n), nil
}

func printResponse(resp pagewire.Response) {
	switch {
	case resp.Stats != nil:
		s := resp.Stats
		fmt.Printf("strategy=%s frames=%d reads=%d writes=%d\n", s.Strategy, s.NumFrames, s.NumReadIO, s.NumWriteIO)
		fmt.Printf("contents=%v\n", s.FrameContents)
		fmt.Printf("dirty=%v\n", s.DirtyFlags)
		fmt.Printf("fixcounts=%v\n", s.FixCounts)
	case resp.Data != nil:
		fmt.Printf("%q\n", string(resp.Data))
	default:
		fmt.Println("OK")
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".bufferctl_history"
	}
	return filepath.Join(home, ".bufferctl_history")
}

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8866", "bufferd server address")
		timeout    = flag.Duration("timeout", 3*time.Second, "dial timeout")
		histPath   = flag.String("history", defaultHistoryPath(), "history file path")
		histMax    = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShotCmd = flag.String("c", "", "run one command and exit")
	)
	flag.Parse()

	cli, err := dial(*addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cli.Close() }()

	if strings.TrimSpace(*oneShotCmd) != "" {
		if err := runCommand(cli, *oneShotCmd); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	h := newHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bufferctl> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Printf("connected to %s\n", *addr)
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isMetaCommand(line) {
			switch line {
			case "\\q", "quit", "exit":
				return
			case "\\help":
				fmt.Println(`meta commands:
  \q | quit | exit       quit
  \history                print history
  \help                   show help

buffer-pool commands:
  pin <page>              pin a page, printing its current bytes
  unpin <page>            unpin a page
  write <page> <text>     overwrite a pinned page's buffer (for testing)
  dirty <page>            mark a resident page dirty
  force <page>            force a dirty page back to disk
  flush                   flush all dirty unpinned frames
  stats                   show frame table and I/O counters
  shutdown                flush and tear down the pool`)
			case "\\history":
				h.Print(50)
			default:
				fmt.Printf("unknown command: %s\n", line)
			}
			continue
		}

		_ = h.Append(line)
		_ = rl.SaveHistory(line)

		if err := runCommand(cli, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

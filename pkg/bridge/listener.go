package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const listenerLogPrefix = "bridge:listener"

// errLineTooLong reports a request line exceeding the read limit. The
// connection survives; the oversized request gets an error envelope.
var errLineTooLong = errors.New("request line exceeds read limit")

// ListenerOptions configures a Listener. Zero values take defaults.
type ListenerOptions struct {
	// ReadLimit is the maximum request line length in bytes (default 32 KiB).
	ReadLimit int
	// WaitTimeout bounds how long a connection waits for the host tick to
	// answer one command; zero waits until shutdown.
	WaitTimeout time.Duration
}

const defaultReadLimit = 32 * 1024

// Listener owns the server socket and one reader/writer goroutine per
// accepted connection. The protocol is newline-delimited UTF-8 text: one
// request per line (a JSON command or the bare ping token), one JSON envelope
// plus newline per reply, pipelined per connection.
type Listener struct {
	table       *PendingTable
	readLimit   int
	waitTimeout time.Duration

	closing atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewListener creates a Listener that feeds the given pending table.
func NewListener(table *PendingTable, opts ListenerOptions) *Listener {
	readLimit := opts.ReadLimit
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		table:       table,
		readLimit:   readLimit,
		waitTimeout: opts.WaitTimeout,
		ctx:         ctx,
		cancel:      cancel,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Start binds addr and launches the accept loop. A bind failure is the one
// error that must reach the caller as a hard startup error.
func (l *Listener) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s - failed to bind %s: %w", listenerLogPrefix, addr, err)
	}
	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	slog.Info(fmt.Sprintf("%s - Listening on %s", listenerLogPrefix, ln.Addr()))
	go l.acceptLoop(ln)
	return nil
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Close stops accepting, closes every live connection, and waits for the
// per-connection goroutines to finish. Idempotent.
func (l *Listener) Close() error {
	if !l.closing.CompareAndSwap(false, true) {
		return nil
	}
	l.cancel()

	l.mu.Lock()
	ln := l.ln
	conns := make([]net.Conn, 0, len(l.conns))
	for conn := range l.conns {
		conns = append(conns, conn)
	}
	l.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	for _, conn := range conns {
		conn.Close()
	}
	l.wg.Wait()
	return err
}

// acceptLoop accepts connections until the socket closes. Accept failures are
// logged and retried while running; once the listener is closing they are
// expected shutdown noise and suppressed.
func (l *Listener) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if l.closing.Load() || errors.Is(err, net.ErrClosed) {
				slog.Debug(fmt.Sprintf("%s - Accept loop exiting: %v", listenerLogPrefix, err))
				return
			}
			slog.Error(fmt.Sprintf("%s - Accept failed, retrying: %v", listenerLogPrefix, err))
			continue
		}
		if !l.track(conn) {
			conn.Close()
			continue
		}
		go l.serve(conn)
	}
}

// serve is the per-connection loop. Any failure here terminates only this
// connection; the socket and any per-connection state are released on every
// exit path.
func (l *Listener) serve(conn net.Conn) {
	defer l.untrack(conn)
	defer conn.Close()

	in := bufio.NewReaderSize(conn, 8*1024)
	for {
		line, err := readLine(in, l.readLimit)
		if err == errLineTooLong {
			envelope := ErrorEnvelope(CodeInvalidFormat,
				fmt.Sprintf("request exceeds %d bytes", l.readLimit))
			if !l.write(conn, envelope) {
				return
			}
			continue
		}
		if err != nil {
			if err != io.EOF && !l.closing.Load() {
				slog.Warn(fmt.Sprintf("%s - Read failed on %s: %v", listenerLogPrefix, conn.RemoteAddr(), err))
			}
			return
		}

		payload := strings.TrimSpace(line)
		if payload == "" {
			continue
		}

		// Liveness fast path: answered right here so a probe never depends
		// on the pending table or the host tick being responsive.
		if payload == PingToken {
			if !l.write(conn, pongEnvelope) {
				return
			}
			continue
		}

		entry := l.table.Enqueue(payload)
		envelope, err := entry.Wait(l.ctx, l.waitTimeout)
		if err != nil {
			if l.ctx.Err() != nil {
				return
			}
			slog.Warn(fmt.Sprintf("%s - Command %s unanswered after %s", listenerLogPrefix, entry.ID, l.waitTimeout))
			envelope = ErrorEnvelope(CodeCommandTimeout,
				fmt.Sprintf("command not processed within %s; host tick may be stalled", l.waitTimeout))
		}
		if !l.write(conn, envelope) {
			return
		}
	}
}

// write sends one envelope line. Returns false if the connection is dead.
func (l *Listener) write(conn net.Conn, envelope string) bool {
	if _, err := conn.Write(append([]byte(envelope), '\n')); err != nil {
		if !l.closing.Load() {
			slog.Warn(fmt.Sprintf("%s - Write failed on %s: %v", listenerLogPrefix, conn.RemoteAddr(), err))
		}
		return false
	}
	return true
}

// track registers conn, or reports false when the listener is closing. The
// closing check and the insert share the lock Close snapshots under, so a
// conn accepted concurrently with Close is either in Close's snapshot or
// rejected here; no serve goroutine can outlive Close's wait.
func (l *Listener) track(conn net.Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closing.Load() {
		return false
	}
	l.conns[conn] = struct{}{}
	l.wg.Add(1)
	return true
}

func (l *Listener) untrack(conn net.Conn) {
	l.mu.Lock()
	delete(l.conns, conn)
	l.mu.Unlock()
	l.wg.Done()
}

// readLine reads one newline-terminated request, enforcing limit. On
// overflow the remainder of the line is consumed and discarded so the
// connection stays usable.
func readLine(in *bufio.Reader, limit int) (string, error) {
	var buf []byte
	for {
		chunk, err := in.ReadSlice('\n')
		buf = append(buf, chunk...)
		if err == nil {
			if len(buf) > limit {
				return "", errLineTooLong
			}
			return string(buf), nil
		}
		if err == bufio.ErrBufferFull {
			if len(buf) > limit {
				if discardErr := discardLine(in); discardErr != nil {
					return "", discardErr
				}
				return "", errLineTooLong
			}
			continue
		}
		if err == io.EOF && len(buf) > 0 {
			// Final unterminated request before close still gets served.
			return string(buf), nil
		}
		return "", err
	}
}

// discardLine consumes input through the next newline.
func discardLine(in *bufio.Reader) error {
	for {
		_, err := in.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			continue
		}
		return err
	}
}

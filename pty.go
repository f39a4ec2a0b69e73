package vtcore

import (
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// PtySize describes a terminal size in both character cells and, optionally,
// pixels (the latter used only by clients that report it; zero is fine).
type PtySize struct {
	Rows, Cols     int
	PixelW, PixelH int
}

// ExitStatus reports how a PtyPump's child process ended.
type ExitStatus struct {
	Code   int
	Err    error
	Signal bool // true if the child was terminated by a signal (e.g. Close's SIGKILL)
}

// PtyPump owns the master side of a pseudo-terminal and the child process
// attached to its slave side. A single goroutine reads from the master and
// feeds the bytes to a Terminal; writes are serialized through Write.
type PtyPump struct {
	cmd *exec.Cmd
	pty *os.File

	mu     sync.Mutex
	closed bool

	exited chan struct{} // closed once cmd.Wait has returned
	done   chan ExitStatus
}

// StartPtyPump launches cmd attached to a new pseudo-terminal sized per size,
// and returns a pump ready to be driven by Run.
func StartPtyPump(cmd *exec.Cmd, size PtySize) (*PtyPump, error) {
	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(size.Rows),
		Cols: uint16(size.Cols),
		X:    uint16(size.PixelW),
		Y:    uint16(size.PixelH),
	})
	if err != nil {
		return nil, err
	}

	return &PtyPump{
		cmd:    cmd,
		pty:    f,
		exited: make(chan struct{}),
		done:   make(chan ExitStatus, 1),
	}, nil
}

// Run pulls bytes from the PTY master in chunks and feeds each chunk to
// term.Write, until the master is closed or returns an error (EIO on Linux
// when the child's slave side has no more readers, or EOF). It also waits
// for the child process and reports its exit status on the returned channel
// read via Done. Run blocks; call it from its own goroutine.
func (p *PtyPump) Run(term *Terminal) {
	var status ExitStatus
	go func() {
		err := p.cmd.Wait()
		status = exitStatusFromError(err)
		close(p.exited)
	}()

	buf := make([]byte, 64*1024)
	for {
		n, err := p.pty.Read(buf)
		if n > 0 {
			term.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}

	<-p.exited
	p.done <- status
	close(p.done)
}

// Done returns the channel Run publishes the child's exit status to, exactly
// once, after the read loop and process wait both complete.
func (p *PtyPump) Done() <-chan ExitStatus {
	return p.done
}

// Write sends bytes to the child (e.g. keyboard/paste input encoded by
// [Terminal.EncodeKey] and friends). Short writes are retried until the
// buffer is exhausted or an error occurs.
func (p *PtyPump) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for total < len(data) {
		n, err := p.pty.Write(data[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Resize propagates a new size to the PTY and signals the child with
// SIGWINCH, matching the platform-ioctl-then-signal sequence real terminals
// use on window resize.
func (p *PtyPump) Resize(size PtySize) error {
	if err := pty.Setsize(p.pty, &pty.Winsize{
		Rows: uint16(size.Rows),
		Cols: uint16(size.Cols),
		X:    uint16(size.PixelW),
		Y:    uint16(size.PixelH),
	}); err != nil {
		return err
	}
	if p.cmd.Process != nil {
		p.cmd.Process.Signal(syscall.SIGWINCH)
	}
	return nil
}

// Close ends the session: it sends SIGHUP to the child, waits up to grace
// for it to exit on its own, then sends SIGKILL and closes the PTY master.
// The read loop in Run observes the resulting EIO/EOF and returns.
func (p *PtyPump) Close(grace time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if p.cmd.Process != nil {
		p.cmd.Process.Signal(syscall.SIGHUP)

		select {
		case <-p.exited:
		case <-time.After(grace):
			p.cmd.Process.Kill()
		}
	}

	return p.pty.Close()
}

func exitStatusFromError(err error) ExitStatus {
	if err == nil {
		return ExitStatus{Code: 0}
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return ExitStatus{Signal: true, Code: int(status.Signal()), Err: err}
			}
			return ExitStatus{Code: status.ExitStatus(), Err: err}
		}
		return ExitStatus{Code: exitErr.ExitCode(), Err: err}
	}
	return ExitStatus{Code: -1, Err: err}
}

var _ io.Writer = (*PtyPump)(nil)

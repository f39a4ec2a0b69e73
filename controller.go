package vtcore

import (
	"os/exec"
	"sync"
	"time"
)

// SessionExit reports why a Session's child process run ended.
type SessionExit struct {
	Status ExitStatus
	PtyErr error // always nil: PtyPump.Run ends its read loop on any read error, EOF included, without reporting it
}

// Session wires a PtyPump to a Terminal: it owns the reader goroutine that
// feeds PTY bytes to the terminal's parser, serializes resize across both,
// and publishes the child's exit status once the session ends. It is the
// lifecycle glue a UI driver holds: one Session per terminal view.
type Session struct {
	Terminal *Terminal
	pump     *PtyPump

	closeOnce sync.Once
	exitCh    chan SessionExit
}

// NewSession starts cmd attached to a new PTY sized to match term's current
// grid, and begins the read loop that feeds output to term. The caller
// retains ownership of term (e.g. to attach providers before or after
// starting the session).
func NewSession(cmd *exec.Cmd, term *Terminal) (*Session, error) {
	term.mu.RLock()
	rows, cols := term.rows, term.cols
	term.mu.RUnlock()

	pump, err := StartPtyPump(cmd, PtySize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, err
	}

	s := &Session{
		Terminal: term,
		pump:     pump,
		exitCh:   make(chan SessionExit, 1),
	}

	go s.run()

	return s, nil
}

func (s *Session) run() {
	s.pump.Run(s.Terminal)
	status := <-s.pump.Done()
	s.exitCh <- SessionExit{Status: status}
	close(s.exitCh)
}

// Exit returns a channel that receives exactly one value when the child
// process and its read loop have both finished.
func (s *Session) Exit() <-chan SessionExit {
	return s.exitCh
}

// Write sends bytes to the child process, typically input encoded by
// [Terminal.EncodeKey], [Terminal.EncodeRune], [Terminal.EncodeMouse],
// [Terminal.EncodePaste], or [Terminal.EncodeFocus].
func (s *Session) Write(data []byte) (int, error) {
	return s.pump.Write(data)
}

// Resize serializes a terminal and PTY resize together: the terminal's grid
// is resized (reflowing the primary buffer) before the PTY and child are
// notified, so the child never observes a window size that doesn't yet match
// what a subsequent read will reflect.
func (s *Session) Resize(rows, cols, pixelW, pixelH int) error {
	s.Terminal.Resize(rows, cols)
	return s.pump.Resize(PtySize{Rows: rows, Cols: cols, PixelW: pixelW, PixelH: pixelH})
}

// Close ends the session, giving the child grace to exit cleanly before it
// is force-killed. Safe to call more than once; only the first call acts.
func (s *Session) Close(grace time.Duration) error {
	var err error
	s.closeOnce.Do(func() {
		err = s.pump.Close(grace)
	})
	return err
}

package term

import (
	"bytes"
	"io"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/input"
)

// EscDelay is how long a trailing ESC waits for the rest of its sequence
// before it is reported as the escape key.
const EscDelay = 50 * time.Millisecond

// PumpInput decodes key presses from r with the charm input parser and
// delivers them on the returned channel. termType is the client's $TERM.
// The goroutines stop and the channel is closed when r fails or done is
// closed.
func PumpInput(r io.Reader, termType string, done <-chan struct{}) <-chan []Key {
	out := make(chan []Key, 16)

	rd, err := input.NewReader(&escJoiner{chunks: readChunks(r, done), done: done}, termType, 0)
	if err != nil {
		close(out)
		return out
	}

	go func() {
		defer close(out)
		for {
			events, err := rd.ReadEvents()
			if err != nil {
				return
			}
			keys := keysFromEvents(events)
			if len(keys) == 0 {
				continue
			}
			select {
			case out <- keys:
			case <-done:
				return
			}
		}
	}()
	return out
}

// readChunks reads r on a new goroutine. The channel is closed when r
// returns an error or done is closed.
func readChunks(r io.Reader, done <-chan struct{}) <-chan []byte {
	ch := make(chan []byte)
	go func() {
		defer close(ch)
		buf := make([]byte, 128)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case ch <- bytes.Clone(buf[:n]):
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// escJoiner merges chunks so an escape sequence split across two reads
// reaches the parser in one piece. A chunk ending in ESC is held for up to
// EscDelay waiting for the next one.
type escJoiner struct {
	chunks  <-chan []byte
	done    <-chan struct{}
	pending []byte
}

func (j *escJoiner) Read(p []byte) (int, error) {
	if len(j.pending) == 0 {
		select {
		case chunk, ok := <-j.chunks:
			if !ok {
				return 0, io.EOF
			}
			j.pending = chunk
		case <-j.done:
			return 0, io.EOF
		}
	}

	for j.pending[len(j.pending)-1] == ansi.ESC {
		more, ok := j.wait()
		if !ok {
			break
		}
		j.pending = append(j.pending, more...)
	}

	n := copy(p, j.pending)
	j.pending = j.pending[n:]
	return n, nil
}

// wait returns the next chunk if it arrives within EscDelay.
func (j *escJoiner) wait() ([]byte, bool) {
	timer := time.NewTimer(EscDelay)
	defer timer.Stop()

	select {
	case chunk, ok := <-j.chunks:
		return chunk, ok
	case <-timer.C:
	case <-j.done:
	}
	return nil, false
}

// EnterScreen switches w to the alternate screen and hides the cursor.
func EnterScreen(w io.Writer) error {
	_, err := io.WriteString(w, enterAlt+clearScreen)
	return err
}

// LeaveScreen restores the cursor and the main screen.
func LeaveScreen(w io.Writer) error {
	_, err := io.WriteString(w, leaveAlt)
	return err
}

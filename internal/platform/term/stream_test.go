package term

import (
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

// collect drains ch, flattening the batches.
func collect(t *testing.T, ch <-chan []Key) []Key {
	t.Helper()
	var got []Key
	timeout := time.After(2 * time.Second)
	for {
		select {
		case keys, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, keys...)
		case <-timeout:
			t.Fatalf("input channel not closed, got %q so far", got)
			return nil
		}
	}
}

func TestPumpInputDecodes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Key
	}{
		{name: "letters", in: "wasd", want: []Key{"w", "a", "s", "d"}},
		{name: "uppercase folds", in: "Q", want: []Key{"q"}},
		{name: "space and enter", in: " \r", want: []Key{"space", "enter"}},
		{name: "ctrl+c", in: "\x03", want: []Key{"ctrl+c"}},
		{name: "csi arrows", in: "\x1b[A\x1b[B\x1b[C\x1b[D", want: []Key{"up", "down", "right", "left"}},
		{name: "ss3 arrows", in: "\x1bOA\x1bOD", want: []Key{"up", "left"}},
		{name: "lone escape", in: "\x1b", want: []Key{"esc"}},
		{name: "alt letter", in: "\x1bd", want: []Key{"alt+d"}},
		{name: "modified arrow", in: "\x1b[1;5C", want: []Key{"ctrl+right"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, PumpInput(strings.NewReader(tt.in), "xterm-256color", nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PumpInput(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPumpInputAltIsNotPause(t *testing.T) {
	km := DefaultKeyMap()
	got := collect(t, PumpInput(strings.NewReader("\x1bd"), "xterm", nil))

	for _, k := range got {
		if km.Action(k) == km.Action("esc") {
			t.Errorf("alt+d decoded as %q, which pauses", k)
		}
	}
}

func TestPumpInputJoinsSplitSequence(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		pw.Write([]byte{0x1b})
		time.Sleep(EscDelay / 5)
		pw.Write([]byte("[A"))
		pw.Close()
	}()

	got := collect(t, PumpInput(pr, "xterm", nil))
	if !reflect.DeepEqual(got, []Key{"up"}) {
		t.Errorf("split arrow decoded as %q, expected [up]", got)
	}
}

func TestPumpInputEscapeTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		pw.Write([]byte{0x1b})
		time.Sleep(4 * EscDelay)
		pw.Write([]byte("w"))
		pw.Close()
	}()

	got := collect(t, PumpInput(pr, "xterm", nil))
	if !reflect.DeepEqual(got, []Key{"esc", "w"}) {
		t.Errorf("late key after escape decoded as %q, expected [esc w]", got)
	}
}

func TestPumpInputStopsOnDone(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	done := make(chan struct{})

	ch := PumpInput(pr, "xterm", done)
	close(done)

	if got := collect(t, ch); len(got) != 0 {
		t.Errorf("stopped pump delivered %q", got)
	}
}

package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestNewScreenNegativeSize(t *testing.T) {
	s := NewScreen(-3, -1)

	if s.Width() != 0 || s.Height() != 0 {
		t.Errorf("negative size should clamp to 0x0, got %dx%d", s.Width(), s.Height())
	}
	if s.String() != "" {
		t.Errorf("String() = %q, expected empty", s.String())
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColor(5, 5, 'X', ColorRed)
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}
	if s.GetCell(5, 5).Color != ColorRed {
		t.Errorf("GetCell(5, 5).Color = %d, expected red", s.GetCell(5, 5).Color)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
	if s.GetCell(0, 100).Color != ColorDefault {
		t.Error("Out of bounds GetCell should return the default color")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			s.SetColor(x, y, '#', ColorBlue)
		}
	}

	s.Clear()

	if s.String() != "    \n    \n    " {
		t.Errorf("Clear() left %q", s.String())
	}
	if s.GetCell(1, 1).Color != ColorDefault {
		t.Error("Clear() should reset colors")
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(8, 1)

	s.DrawText(2, 0, "héllo world", ColorGreen)

	if got := s.Row(0); got != "  héllo " {
		t.Errorf("Row(0) = %q, expected %q", got, "  héllo ")
	}
	if s.GetCell(3, 0).Color != ColorGreen {
		t.Error("DrawText should color cells")
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(10, 1)

	s.DrawTextCentered(0, "ab", ColorDefault)

	if got := s.Row(0); got != "    ab    " {
		t.Errorf("Row(0) = %q", got)
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(4, 3)

	s.DrawBox(NewRect(0, 0, 4, 3), ColorGray)

	expected := strings.Join([]string{"┌──┐", "│  │", "└──┘"}, "\n")
	if s.String() != expected {
		t.Errorf("DrawBox() produced\n%s\nexpected\n%s", s.String(), expected)
	}
}

func TestScreenDrawBoxTooSmall(t *testing.T) {
	s := NewScreen(4, 3)

	s.DrawBox(NewRect(0, 0, 1, 3), ColorGray)

	if strings.TrimSpace(strings.ReplaceAll(s.String(), "\n", "")) != "" {
		t.Error("boxes narrower than 2 cells should not be drawn")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(5, 5)
	s.Set(1, 1, 'X')

	s.Resize(3, 2)

	if s.Width() != 3 || s.Height() != 2 {
		t.Errorf("Resize() gave %dx%d, expected 3x2", s.Width(), s.Height())
	}
	if s.Get(1, 1) != ' ' {
		t.Error("Resize() should clear the buffer")
	}

	// Same size is a no-op
	s.Set(0, 0, 'Y')
	s.Resize(3, 2)
	if s.Get(0, 0) != 'Y' {
		t.Error("Resize() to the same size should keep content")
	}
}

func TestScreenRow(t *testing.T) {
	s := NewScreen(3, 2)
	s.DrawText(0, 1, "abc", ColorDefault)

	if s.Row(1) != "abc" {
		t.Errorf("Row(1) = %q, expected %q", s.Row(1), "abc")
	}
	if s.Row(5) != "   " {
		t.Errorf("Row(5) = %q, expected blanks", s.Row(5))
	}
}

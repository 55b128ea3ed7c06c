package ui

import "testing"

func TestPainter(t *testing.T) {
	plain := Painter{}
	if got := plain.Paint(Error, "boom"); got != "boom" {
		t.Errorf("plain painter styled text: %q", got)
	}
	if got := plain.Tag("card"); got != "[card]" {
		t.Errorf("plain tag = %q", got)
	}

	color := Painter{Color: true}
	if got := color.Paint(Error, "boom"); got != ColorRed+"boom"+ColorReset {
		t.Errorf("color painter = %q", got)
	}
	if got := color.Tag("card"); got != ColorBold+ColorCyan+"[card]"+ColorReset {
		t.Errorf("color tag = %q", got)
	}
}

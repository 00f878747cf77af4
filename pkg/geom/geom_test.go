package geom

import "testing"

func TestPointArithmetic(t *testing.T) {
	p := Pt(3, 4)
	q := Pt(1, -2)

	if got := p.Add(q); got != Pt(4, 2) {
		t.Errorf("Add = %v, want {4 2}", got)
	}
	if got := p.Sub(q); got != Pt(2, 6) {
		t.Errorf("Sub = %v, want {2 6}", got)
	}
	if got := p.Scale(0.5); got != Pt(1.5, 2) {
		t.Errorf("Scale = %v, want {1.5 2}", got)
	}
	if !p.Equal(Pt(3.0000001, 4), 1e-6) {
		t.Error("Equal should tolerate eps")
	}
}

func TestRectUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"Disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, Rect{0, 0, 25, 25}},
		{"Nested", Rect{0, 0, 10, 10}, Rect{2, 2, 2, 2}, Rect{0, 0, 10, 10}},
		{"EmptyLeft", Rect{}, Rect{1, 1, 1, 1}, Rect{1, 1, 1, 1}},
		{"EmptyRight", Rect{1, 1, 1, 1}, Rect{}, Rect{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("Union = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectHelpers(t *testing.T) {
	r := RectAt(Pt(10, 20), Size{Width: 30, Height: 40})
	if r.Center() != Pt(25, 40) {
		t.Errorf("Center = %v", r.Center())
	}
	if r.Max() != Pt(40, 60) {
		t.Errorf("Max = %v", r.Max())
	}
	if !r.Contains(Pt(10, 60)) {
		t.Error("Contains should include edges")
	}
	if r.Contains(Pt(9, 20)) {
		t.Error("Contains should exclude outside points")
	}
	if got := r.Inset(5); got != (Rect{15, 25, 20, 30}) {
		t.Errorf("Inset = %v", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 10) != 5 || Clamp(-1, 0, 10) != 0 || Clamp(11, 0, 10) != 10 {
		t.Error("Clamp within range failed")
	}
	if Clamp(5, 8, 2) != 8 {
		t.Error("Clamp with inverted bounds should return lo")
	}
}

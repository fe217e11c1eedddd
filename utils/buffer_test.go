package utils

import (
	"testing"

	V "diesel.com/drape/vector"
)

func TestFlattenPositions(t *testing.T) {
	var r = V.Vec32{1, 2, 3}
	var positionSlice = []V.Vec32{r, r, r, {4, 5, 6}}

	buf := FlattenPositions(nil, positionSlice)
	if len(buf) != 12 {
		t.Fatalf("Improper buffer size %d\n", len(buf))
	}
	for i := 0; i < len(positionSlice); i++ {
		got := V.Vec32{buf[i*3], buf[i*3+1], buf[i*3+2]}
		if got != positionSlice[i] {
			t.Errorf("Improper Buffer Load at index %d\n", i)
		}
	}

	//reuse keeps the backing array
	again := FlattenPositions(buf, positionSlice[:2])
	if len(again) != 6 || &again[0] != &buf[0] {
		t.Errorf("Buffer should be reused when large enough")
	}
}

func TestInterleave(t *testing.T) {
	pos := []V.Vec32{{1, 2, 3}, {4, 5, 6}}
	nrm := []V.Vec32{{0, 0, 1}, {0, 1, 0}}

	buf, err := Interleave(nil, pos, nrm)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{1, 2, 3, 0, 0, 1, 4, 5, 6, 0, 1, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("Interleave index %d expected %f got %f", i, want[i], buf[i])
		}
	}

	if _, err := Interleave(nil, pos, nrm[:1]); err == nil {
		t.Errorf("Mismatched normals should fail")
	}
}

func TestScalePositions(t *testing.T) {
	pos := []V.Vec32{{2, 2, 2}, {0, 0, 0}}
	ScalePositions(pos, V.Vec32{1, 1, 1}, 2)
	if pos[0] != (V.Vec32{3, 3, 3}) || pos[1] != (V.Vec32{-1, -1, -1}) {
		t.Errorf("ScalePositions %s %s", pos[0], pos[1])
	}
}

package vector

import (
	"math"
	"math/rand"
	"testing"
)

//Vector module testing
func TestVecAdd(t *testing.T) {
	var x = Vec32{1.0, 1.0, 1.0}
	var y = Vec32{1, 1, 1}
	var eq = Vec32{2, 2, 2}

	if *x.Add(y) != eq {
		t.Errorf("Vector Addition failed %s", x)
	}
}

func TestVecDot(t *testing.T) {
	var x = Vec32{1, 2, 3}
	var y = Vec32{1, 1, 1}
	var eq = float32(6.0)

	if Dot(x, y) != eq || x.Dot(y) != eq {
		t.Errorf("Vector dot failed %s", x)
	}
}

func TestVector(t *testing.T) {
	x := NewVec32(2.0)
	a := Vec32{2, 2, 2}

	if *x != a {
		t.Error("NewVec32")
	}
	if Scale(a, 2.0) != (Vec32{4.0, 4.0, 4.0}) {
		t.Error("Scale")
	}
	if Add(a, Vec32{2.0, 2.0, 2.0}) != (Vec32{4.0, 4.0, 4.0}) {
		t.Error("Add")
	}
	if Sub(a, Vec32{1, 2, 3}) != (Vec32{1, 0, -1}) {
		t.Error("Sub")
	}
	if !isEpsilon(Length(Normalize(*x)), 1.0) {
		t.Errorf("Normalized vector error: %s", *x)
	}
	if Normalize(Vec32{}) != (Vec32{}) {
		t.Errorf("Zero vector should normalize to zero")
	}
	if r := Cross(Vec32{-2, -2, -2}, Vec32{1, 2, 1}); r != (Vec32{2, 0, -2}) {
		t.Errorf("Cross %s", r)
	}
	if Length(a) != float32(math.Sqrt(12)) || a.Length() != float32(math.Sqrt(12)) {
		t.Errorf("Error Length")
	}
	if d := Distance(Vec32{0, 0, 0}, Vec32{0, 3, 4}); d != 5 {
		t.Errorf("Distance %f", d)
	}

	acc := Vec32{1, 1, 1}
	acc.AddScaled(Vec32{1, 2, 3}, 2)
	if acc != (Vec32{3, 5, 7}) {
		t.Errorf("AddScaled %s", acc)
	}
	acc.Clear()
	if acc != (Vec32{}) {
		t.Errorf("Clear %s", acc)
	}
}

func TestMix(t *testing.T) {
	a := Vec32{0, 0, 0}
	b := Vec32{10, -10, 4}

	if Mix(a, b, 0) != a || Mix(a, b, 1) != b {
		t.Error("Mix endpoints")
	}
	if m := Mix(a, b, 0.5); m != (Vec32{5, -5, 2}) {
		t.Errorf("Mix midpoint %s", m)
	}
	if s := MixScalar(0.025, 1.025, 0.08); !isEpsilon(s, 0.105) {
		t.Errorf("MixScalar %f", s)
	}
}

func TestRandomUnit(t *testing.T) {
	rnd := rand.New(rand.NewSource(295275912632))
	var mean Vec32

	for i := 0; i < 2000; i++ {
		u := RandomUnit(rnd)
		if math.Abs(float64(u.Length()-1)) > 1e-5 {
			t.Fatalf("sample %d not on unit sphere: %s", i, u)
		}
		mean.Add(u)
	}
	mean.Scale(1.0 / 2000)
	if mean.Length() > 0.1 {
		t.Errorf("samples biased toward %s", mean)
	}
}

func TestVec2(t *testing.T) {
	l0 := Vec2{3, 4}
	if l0.Length() != 5 {
		t.Errorf("Vec2 length %f", l0.Length())
	}
	if l0.Scale(4) != (Vec2{12, 16}) {
		t.Errorf("Vec2 scale %s", l0.Scale(4))
	}
}

func BenchmarkVecOp(b *testing.B) {
	p := Vec32{1, -1, 0}
	o := Vec32{0, 1, 0}

	for i := 0; i < b.N; i++ {
		r := p.Add(o)
		Cross(*r, p)
		r.AddScaled(o, 0.5)
		Normalize(*r)
	}
}

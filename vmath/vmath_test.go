package vmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}

func quatAlmostEqual(a, b mgl64.Quat, epsilon float64) bool {
	return almostEqual(a.W, b.W, epsilon) && vec3AlmostEqual(a.V, b.V, epsilon)
}

func TestQuatAdd(t *testing.T) {
	a := mgl64.Quat{W: 1, V: mgl64.Vec3{2, 3, 4}}
	b := mgl64.Quat{W: 0.5, V: mgl64.Vec3{-1, 1, 2}}

	got := QuatAdd(a, b)
	want := mgl64.Quat{W: 1.5, V: mgl64.Vec3{1, 4, 6}}

	if !quatAlmostEqual(got, want, 1e-12) {
		t.Errorf("QuatAdd() = %v, want %v", got, want)
	}
}

func TestQuatScale(t *testing.T) {
	q := mgl64.Quat{W: 2, V: mgl64.Vec3{1, -2, 4}}

	got := QuatScale(q, 0.5)
	want := mgl64.Quat{W: 1, V: mgl64.Vec3{0.5, -1, 2}}

	if !quatAlmostEqual(got, want, 1e-12) {
		t.Errorf("QuatScale() = %v, want %v", got, want)
	}
}

func TestMulElem(t *testing.T) {
	got := MulElem(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, -5, 0})
	want := mgl64.Vec3{4, -10, 0}

	if !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("MulElem() = %v, want %v", got, want)
	}
}

func TestDivElem(t *testing.T) {
	tests := []struct {
		name string
		a, b mgl64.Vec3
		want mgl64.Vec3
	}{
		{
			name: "plain division",
			a:    mgl64.Vec3{4, 9, -8},
			b:    mgl64.Vec3{2, 3, 4},
			want: mgl64.Vec3{2, 3, -2},
		},
		{
			name: "zero axis yields zero, not Inf",
			a:    mgl64.Vec3{4, 9, -8},
			b:    mgl64.Vec3{2, 0, 4},
			want: mgl64.Vec3{2, 0, -2},
		},
		{
			name: "all axes locked",
			a:    mgl64.Vec3{1, 2, 3},
			b:    mgl64.Vec3{},
			want: mgl64.Vec3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DivElem(tt.a, tt.b)
			if !vec3AlmostEqual(got, tt.want, 1e-12) {
				t.Errorf("DivElem() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	// Head-on reflection flips the vector.
	got := Reflect(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 1})
	want := mgl64.Vec3{0, 0, -5}
	if !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("Reflect(head-on) = %v, want %v", got, want)
	}

	// A grazing vector parallel to the plane is unchanged.
	got = Reflect(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{0, 1, 0})
	want = mgl64.Vec3{3, 0, 0}
	if !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("Reflect(parallel) = %v, want %v", got, want)
	}

	// 45 degree bounce.
	got = Reflect(mgl64.Vec3{1, -1, 0}, mgl64.Vec3{0, 1, 0})
	want = mgl64.Vec3{1, 1, 0}
	if !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("Reflect(45deg) = %v, want %v", got, want)
	}
}

func TestSafeNormalize(t *testing.T) {
	got := SafeNormalize(mgl64.Vec3{0, 3, 4}, mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{0, 0.6, 0.8}
	if !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("SafeNormalize() = %v, want %v", got, want)
	}

	// Zero vector falls back.
	got = SafeNormalize(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	want = mgl64.Vec3{1, 0, 0}
	if !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("SafeNormalize(zero) = %v, want fallback %v", got, want)
	}
}

func TestSpin(t *testing.T) {
	// Identity orientation, rotation about Y at 2 rad/s:
	// dq/dt = 0.5 * (0, ω) * (1, 0) = (0, ω/2)
	got := Spin(mgl64.Vec3{0, 2, 0}, mgl64.QuatIdent())
	want := mgl64.Quat{W: 0, V: mgl64.Vec3{0, 1, 0}}

	if !quatAlmostEqual(got, want, 1e-12) {
		t.Errorf("Spin() = %v, want %v", got, want)
	}

	// Zero angular velocity gives a zero derivative regardless of pose.
	q := mgl64.QuatRotate(1.2, mgl64.Vec3{0, 0, 1})
	got = Spin(mgl64.Vec3{}, q)
	if !quatAlmostEqual(got, mgl64.Quat{}, 1e-12) {
		t.Errorf("Spin(zero ω) = %v, want zero quaternion", got)
	}
}

package core

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		got      Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", a.Cross(b), NewVec3(27, 6, -13)},
		{"Lerp start", a.Lerp(b, 0), a},
		{"Lerp end", a.Lerp(b, 1), b},
		{"Clamp", NewVec3(-1, 0.5, 2).Clamp(0, 0.999), NewVec3(0, 0.5, 0.999)},
		{"Sqrt", NewVec3(4, 0.25, 0).Sqrt(), NewVec3(2, 0.5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}

	if a.Dot(b) != 12 {
		t.Errorf("Expected dot 12, got %f", a.Dot(b))
	}
	if a.LengthSquared() != 14 {
		t.Errorf("Expected squared length 14, got %f", a.LengthSquared())
	}
}

func TestVec3_CrossIsPerpendicular(t *testing.T) {
	a := NewVec3(0.3, -1.2, 2.5)
	b := NewVec3(-4, 0.1, 0.7)
	c := a.Cross(b)

	if math.Abs(c.Dot(a)) > 1e-12 || math.Abs(c.Dot(b)) > 1e-12 {
		t.Errorf("Cross product %v should be perpendicular to both inputs", c)
	}
}

func TestVec3_Normalize(t *testing.T) {
	vectors := []Vec3{
		NewVec3(3, 4, 0),
		NewVec3(-0.001, 0.002, 0.0005),
		NewVec3(1e6, -2e6, 3e6),
	}

	for _, v := range vectors {
		n := v.Normalize()
		if math.Abs(n.Length()-1) > 1e-12 {
			t.Errorf("Normalize(%v) has length %f, want 1", v, n.Length())
		}
		if n.Dot(v) <= 0 {
			t.Errorf("Normalize(%v) = %v changed direction", v, n)
		}
	}
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"tiny positive", NewVec3(1e-9, 1e-9, 1e-9), true},
		{"tiny negative", NewVec3(-1e-9, 1e-9, -1e-9), true},
		{"one large component", NewVec3(1e-9, 1e-3, 0), false},
		{"large negative component", NewVec3(-1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.NearZero(); got != tt.expected {
				t.Errorf("NearZero(%v) = %v, want %v", tt.v, got, tt.expected)
			}
		})
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 1, 1), NewVec3(0, 2, -1))

	tests := []struct {
		t        float64
		expected Vec3
	}{
		{0, NewVec3(1, 1, 1)},
		{1, NewVec3(1, 3, 0)},
		{-0.5, NewVec3(1, 0, 1.5)},
	}

	for _, tt := range tests {
		if got := ray.At(tt.t); !vecNear(got, tt.expected, 1e-12) {
			t.Errorf("At(%f) = %v, want %v", tt.t, got, tt.expected)
		}
	}
}

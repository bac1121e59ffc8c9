package numeric

import (
	"math"
	"testing"
)

func TestTrapezoidIntegralOfLine(t *testing.T) {
	n := Integrator{Method: TrapezoidMethod}
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 1, 2, 3}

	got, err := n.Integrate(x, y)
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if math.Abs(got-4.5) > 1e-12 {
		t.Fatalf("trapezoid integral of y=x over [0,3]: got=%f want=4.5", got)
	}
}

func TestSimpsonExactForQuadratic(t *testing.T) {
	n := Integrator{Method: SimpsonMethod}
	// f(x) = x^2, exact integral over [0, 2] is 8/3.
	x := []float64{0, 1, 2}
	y := []float64{0, 1, 4}

	got, err := n.Integrate(x, y)
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if math.Abs(got-8.0/3.0) > 1e-12 {
		t.Fatalf("simpson integral of x^2 over [0,2]: got=%f want=%f", got, 8.0/3.0)
	}
}

func TestSimpsonExactForQuadraticNonUniform(t *testing.T) {
	n := Integrator{}
	// Irregular spacing; Simpson with per-triple weights stays exact for
	// quadratics.
	x := []float64{0, 0.3, 1.1, 1.6, 2.0}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v*v - v + 1
	}
	want := 2.0/3.0*8.0 - 2.0 + 2.0 // analytic over [0, 2]

	got, err := n.Integrate(x, y)
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("non-uniform simpson: got=%f want=%f", got, want)
	}
}

func TestSimpsonEvenCountClosesWithTrapezoid(t *testing.T) {
	n := Integrator{}
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 1, 1, 1}

	got, err := n.Integrate(x, y)
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if math.Abs(got-3.0) > 1e-12 {
		t.Fatalf("integral of constant 1 over [0,3]: got=%f want=3", got)
	}
}

func TestIntegrateGuards(t *testing.T) {
	n := Integrator{}

	if _, err := n.Integrate([]float64{0}, []float64{1}); err == nil {
		t.Fatal("expected error for fewer than 2 points")
	}
	if _, err := (Integrator{Method: SimpsonMethod}).Integrate([]float64{0, 1}, []float64{0, 1}); err == nil {
		t.Fatal("expected error for fewer than 3 simpson points")
	}
	if _, err := n.Integrate([]float64{0, 1, 1}, []float64{0, 1, 2}); err == nil {
		t.Fatal("expected error for non-increasing abscissas")
	}
	if _, err := n.Integrate([]float64{0, 1, 2}, []float64{0, 1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
	if _, err := (Integrator{Method: "gauss"}).Integrate([]float64{0, 1}, []float64{0, 1}); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestTrapezoidTwoPoints(t *testing.T) {
	n := Integrator{Method: TrapezoidMethod}
	got, err := n.Integrate([]float64{2, 4}, []float64{3, 5})
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if math.Abs(got-8.0) > 1e-12 {
		t.Fatalf("single trapezoid: got=%f want=8", got)
	}
}

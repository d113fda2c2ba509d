package roots

import (
	"errors"
	"math"
	"testing"
)

var cubic = FuncOf(func(x float64) (float64, float64) {
	return x*x*x - 2*x - 5, 3*x*x - 2
})

var kepler = FuncOf(func(x float64) (float64, float64) {
	return math.Cos(x) - x, -math.Sin(x) - 1
})

func TestMethods(t *testing.T) {
	tests := []struct {
		name string
		f    Func
		a, b float64
		want float64
	}{
		{"cubic", cubic, 2, 3, 2.0945514815423265},
		{"cubic reversed", cubic, 3, 2, 2.0945514815423265},
		{"kepler", kepler, 0, 1, 0.7390851332151607},
	}

	for _, m := range []Method{MethodNewton, MethodBrent, MethodBisect} {
		for _, tt := range tests {
			t.Run(m.String()+"/"+tt.name, func(t *testing.T) {
				fa, _ := tt.f.Eval(tt.a)
				fb, _ := tt.f.Eval(tt.b)
				res, err := Solve(m, tt.f, tt.a, fa, tt.b, fb, Settings{XTol: 1e-13, FTol: 1e-12, MaxIter: 200})
				if err != nil {
					t.Fatalf("solve failed: %v", err)
				}
				if math.Abs(res.Root-tt.want) > 1e-11 {
					t.Errorf("root = %.15f, want %.15f", res.Root, tt.want)
				}
				if res.Iterations == 0 {
					t.Error("expected at least one iteration")
				}
			})
		}
	}
}

func TestNewtonFasterThanBisect(t *testing.T) {
	s := Settings{XTol: 1e-14, FTol: 1e-13, MaxIter: 200}
	fa, _ := cubic.Eval(2)
	fb, _ := cubic.Eval(3)

	rn, err := Newton(cubic, 2, fa, 3, fb, s)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := Bisect(cubic, 2, fa, 3, fb, s)
	if err != nil {
		t.Fatal(err)
	}
	if rn.Iterations >= rb.Iterations {
		t.Errorf("newton took %d iterations, bisection %d", rn.Iterations, rb.Iterations)
	}
}

func TestNotBracketed(t *testing.T) {
	for _, m := range []Method{MethodNewton, MethodBrent, MethodBisect} {
		fa, _ := cubic.Eval(3)
		fb, _ := cubic.Eval(4)
		_, err := Solve(m, cubic, 3, fa, 4, fb, DefaultSettings())
		if !errors.Is(err, ErrNotBracketed) {
			t.Errorf("%s: expected ErrNotBracketed, got %v", m, err)
		}
	}
}

func TestEndpointRoot(t *testing.T) {
	f := FuncOf(func(x float64) (float64, float64) { return x - 1, 1 })
	res, err := Brent(f, 1, 0, 2, 1, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if res.Root != 1 || res.Iterations != 0 {
		t.Errorf("expected endpoint root with no iterations, got %+v", res)
	}
}

func TestIterationLimit(t *testing.T) {
	s := Settings{XTol: 1e-300, FTol: 0, MaxIter: 3}
	fa, _ := kepler.Eval(0)
	fb, _ := kepler.Eval(1)
	for _, m := range []Method{MethodNewton, MethodBrent, MethodBisect} {
		res, err := Solve(m, kepler, 0, fa, 1, fb, s)
		if !errors.Is(err, ErrNoConvergence) {
			t.Errorf("%s: expected ErrNoConvergence, got %v", m, err)
		}
		if res.Iterations != 3 {
			t.Errorf("%s: expected 3 iterations, got %d", m, res.Iterations)
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
		ok   bool
	}{
		{"newton", MethodNewton, true},
		{"Brent", MethodBrent, true},
		{"bisection", MethodBisect, true},
		{"", MethodNewton, true},
		{"secant", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseMethod(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkNewton(b *testing.B) {
	fa, _ := cubic.Eval(2)
	fb, _ := cubic.Eval(3)
	s := DefaultSettings()
	for i := 0; i < b.N; i++ {
		_, _ = Newton(cubic, 2, fa, 3, fb, s)
	}
}

func BenchmarkBrent(b *testing.B) {
	fa, _ := cubic.Eval(2)
	fb, _ := cubic.Eval(3)
	s := DefaultSettings()
	for i := 0; i < b.N; i++ {
		_, _ = Brent(cubic, 2, fa, 3, fb, s)
	}
}

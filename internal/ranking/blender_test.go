package ranking

import (
	"math"
	"testing"
)

func TestDefaultBlendWeightsValid(t *testing.T) {
	if err := DefaultBlendWeights().Validate(); err != nil {
		t.Errorf("default weights invalid: %v", err)
	}
}

func TestBlendWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights BlendWeights
		wantErr bool
	}{
		{"defaults", BlendWeights{0.5, 0.3, 0.2}, false},
		{"rules only", BlendWeights{1.0, 0, 0}, false},
		{"sum too low", BlendWeights{0.5, 0.3, 0.1}, true},
		{"negative", BlendWeights{0.7, 0.5, -0.2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestBlend(t *testing.T) {
	w := DefaultBlendWeights()

	t.Run("worked example", func(t *testing.T) {
		final, percent := w.Blend(0.8, 0.6, 0.9)
		if math.Abs(final-0.76) > 1e-9 {
			t.Errorf("expected final 0.76, got %f", final)
		}
		if percent != 76 {
			t.Errorf("expected 76%%, got %d", percent)
		}
	})

	t.Run("all zero", func(t *testing.T) {
		final, percent := w.Blend(0, 0, 0)
		if final != 0 || percent != 0 {
			t.Errorf("expected 0/0, got %f/%d", final, percent)
		}
	})

	t.Run("all one", func(t *testing.T) {
		final, percent := w.Blend(1, 1, 1)
		if math.Abs(final-1.0) > 1e-9 || percent != 100 {
			t.Errorf("expected 1.0/100, got %f/%d", final, percent)
		}
	})

	t.Run("monotone in each signal", func(t *testing.T) {
		base, _ := w.Blend(0.5, 0.5, 0.5)
		for _, bump := range []struct {
			name    string
			r, s, f float64
		}{
			{"rules", 0.6, 0.5, 0.5},
			{"semantic", 0.5, 0.6, 0.5},
			{"freshness", 0.5, 0.5, 0.6},
		} {
			got, _ := w.Blend(bump.r, bump.s, bump.f)
			if got <= base {
				t.Errorf("bumping %s did not raise the final score: %f <= %f", bump.name, got, base)
			}
		}
	})

	t.Run("percent rounds", func(t *testing.T) {
		// 1.0*0.765 with rules-only weights
		final, percent := BlendWeights{1, 0, 0}.Blend(0.765, 0, 0)
		if math.Abs(final-0.765) > 1e-9 {
			t.Errorf("unexpected final %f", final)
		}
		if percent != 77 {
			t.Errorf("expected rounding to 77, got %d", percent)
		}
	})
}

func TestSortResults(t *testing.T) {
	results := []SchemeResult{
		{SchemeID: "c", FinalScore: 0.5},
		{SchemeID: "a", FinalScore: 0.9},
		{SchemeID: "b", FinalScore: 0.5},
		{SchemeID: "d", FinalScore: 0.7},
	}
	sortResults(results)

	wantOrder := []string{"a", "d", "b", "c"}
	for i, want := range wantOrder {
		if results[i].SchemeID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, results[i].SchemeID)
		}
	}
}

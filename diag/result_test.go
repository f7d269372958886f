package diag

import (
	"testing"
)

func TestResult_IsOK(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want bool
	}{
		{
			name: "empty result is ok",
			r:    Result{},
			want: true,
		},
		{
			name: "warnings only is ok",
			r: Result{Diagnostics: []Diagnostic{
				Warningf("non_empty", Span{}, "document is empty"),
				Infof("step", Span{Start: 1, End: 2}, "note"),
			}},
			want: true,
		},
		{
			name: "single error fails",
			r: Result{Diagnostics: []Diagnostic{
				Warningf("x", Span{}, "warn"),
				Errorf("y", Span{Start: 4, End: 8}, "bad"),
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsOK(); got != tt.want {
				t.Errorf("IsOK() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResult_Count(t *testing.T) {
	r := Result{Diagnostics: []Diagnostic{
		Errorf("a", Span{}, "e1"),
		Errorf("b", Span{}, "e2"),
		Warningf("c", Span{}, "w1"),
	}}

	if got := r.Count(SevError); got != 2 {
		t.Errorf("Count(SevError) = %d, want 2", got)
	}
	if got := r.Count(SevWarning); got != 1 {
		t.Errorf("Count(SevWarning) = %d, want 1", got)
	}
	if got := r.Count(SevInfo); got != 0 {
		t.Errorf("Count(SevInfo) = %d, want 0", got)
	}
}

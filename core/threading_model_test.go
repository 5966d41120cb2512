package core

import "testing"

func TestParseThreadingModel(t *testing.T) {
	tests := []struct {
		model string
		want  ThreadingModel
	}{
		{"cull/draw", ThreadingModel{CullName: "cull", DrawName: "draw", CullSorting: true}},
		{"draw/", ThreadingModel{CullName: "draw", DrawName: "draw", CullSorting: true}},
		{"-draw", ThreadingModel{CullName: "draw", DrawName: "draw", CullSorting: false}},
		{"/draw", ThreadingModel{CullName: "", DrawName: "draw", CullSorting: true}},
		{"", ThreadingModel{CullName: "", DrawName: "", CullSorting: true}},
		{"render", ThreadingModel{CullName: "render", DrawName: "render", CullSorting: true}},
		{"-a/b", ThreadingModel{CullName: "a", DrawName: "a", CullSorting: false}},
		{"-", ThreadingModel{CullName: "", DrawName: "", CullSorting: false}},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := ParseThreadingModel(tt.model)
			if got != tt.want {
				t.Errorf("ParseThreadingModel(%q) = %+v, want %+v", tt.model, got, tt.want)
			}
		})
	}
}

func TestThreadingModel_StringRoundTrip(t *testing.T) {
	for _, model := range []string{"cull/draw", "draw", "-draw", "/draw", ""} {
		m := ParseThreadingModel(model)
		if again := ParseThreadingModel(m.String()); again != m {
			t.Errorf("round trip of %q: %+v became %+v", model, m, again)
		}
	}
}

func TestThreadingModel_DrawPool(t *testing.T) {
	if got := ParseThreadingModel("cull/draw").DrawPool(); got != "draw" {
		t.Errorf("DrawPool() = %q, want draw", got)
	}
	if got := ParseThreadingModel("-both").DrawPool(); got != "both" {
		t.Errorf("DrawPool() = %q, want both", got)
	}
	if !ParseThreadingModel("").IsSingleThreaded() {
		t.Error("empty model should be single-threaded")
	}
	if ParseThreadingModel("/draw").IsSingleThreaded() {
		t.Error("/draw should not be single-threaded")
	}
}

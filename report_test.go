package crowdgate

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDisplayLimits_Banner(t *testing.T) {
	mode, _ := SelectMode(8)
	got := DefaultDisplayLimits().Banner(mode)
	want := "System Time Mode: MORNING MODE | Green ≤ 50, Yellow ≤ 100, Red > 100"
	if got != want {
		t.Errorf("Banner() = %q, want %q", got, want)
	}
}

// TestDisplayLimits_IndependentOfThresholds guards against the banner
// limits leaking into gate classification
func TestDisplayLimits_IndependentOfThresholds(t *testing.T) {
	if GreenLimit == GreenThreshold || YellowLimit == YellowThreshold {
		t.Fatal("banner limits and gate thresholds are expected to differ")
	}

	engine := newDefaultEngine(t)
	if got := engine.Classify(GreenLimit).Status; got != StatusRed {
		t.Errorf("Classify(%d) = %v, want RED (gate thresholds, not banner limits)", GreenLimit, got)
	}
}

func TestNewReport(t *testing.T) {
	engine := newDefaultEngine(t)
	eval, err := engine.Evaluate(100)
	if err != nil {
		t.Fatalf("Evaluate(100) failed: %v", err)
	}

	now := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	r1 := NewReport(eval, now, DefaultDisplayLimits(), "video estimation disabled")
	r2 := NewReport(eval, now, DefaultDisplayLimits(), "")

	if r1.ID == "" || r1.ID == r2.ID {
		t.Errorf("report IDs should be unique and non-empty: %q, %q", r1.ID, r2.ID)
	}
	if r1.Mode.Mode != ModeNight {
		t.Errorf("Mode = %v, want NIGHT", r1.Mode.Mode)
	}
	if r1.Summary != "Estimated Total Crowd Count: 100" {
		t.Errorf("Summary = %q", r1.Summary)
	}
	if !strings.HasPrefix(r1.Banner, "System Time Mode: NIGHT MODE") {
		t.Errorf("Banner = %q", r1.Banner)
	}
	if r1.Notice == "" || r2.Notice != "" {
		t.Errorf("Notice not carried through: %q, %q", r1.Notice, r2.Notice)
	}
}

func TestReport_JSON(t *testing.T) {
	engine := newDefaultEngine(t)
	// 120 → [42, 30, 24, 24]: gate 1 RED, gate 2 YELLOW
	eval, _ := engine.Evaluate(120)
	report := NewReport(eval, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC), DefaultDisplayLimits(), "")

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var decoded struct {
		Mode struct {
			Mode string `json:"mode"`
		} `json:"mode"`
		Evaluation struct {
			Gates []struct {
				Name     string `json:"name"`
				Status   string `json:"status"`
				Color    string `json:"color"`
				Redirect *struct {
					Message string `json:"message"`
				} `json:"redirect"`
			} `json:"gates"`
		} `json:"evaluation"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}

	if decoded.Mode.Mode != "MORNING MODE" {
		t.Errorf("mode = %q, want MORNING MODE", decoded.Mode.Mode)
	}
	first := decoded.Evaluation.Gates[0]
	if first.Name != "Gate 1" || first.Status != "RED" || first.Color != "red" {
		t.Errorf("gate 1 = %+v", first)
	}
	if first.Redirect == nil || first.Redirect.Message != "Redirect crowd to Gate 2" {
		t.Errorf("gate 1 redirect = %+v", first.Redirect)
	}
	if decoded.Evaluation.Gates[1].Redirect != nil {
		t.Error("gate 2 should have no redirect in JSON")
	}
}

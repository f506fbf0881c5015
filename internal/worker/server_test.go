package worker

import (
	"encoding/json"
	"testing"

	"github.com/sandevgo/venuebot/internal/core"
)

func TestParsePriceLevels(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "single level", input: "2", want: []int{2}},
		{name: "multiple levels", input: "1,2,3", want: []int{1, 2, 3}},
		{name: "spaces tolerated", input: " 1 , 4 ", want: []int{1, 4}},
		{name: "out of range", input: "5", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "not a number", input: "cheap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePriceLevels(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" vegan, italian ,,ramen ")
	want := []string{"vegan", "italian", "ramen"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestFailureResultCarriesStructuredPayload(t *testing.T) {
	res := failureResult(core.NewFailure(core.FailureRateLimited, "slow down"))
	if !res.IsError {
		t.Fatal("expected an error result")
	}

	text := res.Content[0]
	raw, err := json.Marshal(text)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}

	var content struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &content); err != nil {
		t.Fatalf("unmarshal content: %v", err)
	}

	var failure core.Failure
	if err := json.Unmarshal([]byte(content.Text), &failure); err != nil {
		t.Fatalf("failure payload is not valid JSON: %v", err)
	}
	if failure.Kind != core.FailureRateLimited {
		t.Errorf("expected rate_limited, got %s", failure.Kind)
	}
	if failure.Message != "slow down" {
		t.Errorf("unexpected message: %q", failure.Message)
	}
}

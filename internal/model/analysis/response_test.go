package analysis

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestResponseDecodeKeepsEmotionOrder(t *testing.T) {
	body := `{
		"ml_available": true,
		"analysis": {"emotions": {"sadness": 0.8, "fear": 0.2, "joy": 0}, "dominant_emotion": "sadness"},
		"risk_assessment": {"risk_category": "high", "risk_level": 8},
		"recommendations": []
	}`

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}

	if !resp.MLAvailable {
		t.Fatal("expected ml_available true")
	}

	want := []string{"sadness", "fear", "joy"}
	if len(resp.Analysis.Emotions) != len(want) {
		t.Fatalf("expected %d emotions, got %d", len(want), len(resp.Analysis.Emotions))
	}
	for i, name := range want {
		if resp.Analysis.Emotions[i].Name != name {
			t.Fatalf("emotion %d: expected %s, got %s", i, name, resp.Analysis.Emotions[i].Name)
		}
	}

	if score, ok := resp.Analysis.Emotions.Score("fear"); !ok || score != 0.2 {
		t.Fatalf("unexpected fear score: %v %v", score, ok)
	}
	if resp.RiskAssessment.RiskLevel != 8 {
		t.Fatalf("expected risk level 8, got %d", resp.RiskAssessment.RiskLevel)
	}
}

func TestEmotionsRejectsNonObject(t *testing.T) {
	var e Emotions
	if err := json.Unmarshal([]byte(`[0.1, 0.2]`), &e); err == nil {
		t.Fatal("expected error for array emotions")
	}
	if err := json.Unmarshal([]byte(`{"joy": "high"}`), &e); err == nil {
		t.Fatal("expected error for non-numeric score")
	}
}

func TestEmotionsNull(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"ml_available": false, "analysis": {"emotions": null}}`), &resp); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if resp.Analysis.Emotions != nil {
		t.Fatalf("expected nil emotions, got %v", resp.Analysis.Emotions)
	}
}

func TestErrorReplyDecodes(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"error": "No message provided"}`), &resp); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if resp.MLAvailable {
		t.Fatal("error reply must not be ml_available")
	}
	if resp.Error != "No message provided" {
		t.Fatalf("unexpected error field %q", resp.Error)
	}
}

func TestDecodeResponseRejectsUnrenderableBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{name: "null", body: `null`, want: ErrNotObject},
		{name: "array", body: `[{"ml_available": true}]`, want: ErrNotObject},
		{name: "empty", body: ``, want: ErrNotObject},
		{name: "missing analysis", body: `{"ml_available": true, "risk_assessment": {"risk_category": "low"}}`, want: ErrIncomplete},
		{name: "null analysis", body: `{"ml_available": true, "analysis": null, "risk_assessment": {"risk_category": "low"}}`, want: ErrIncomplete},
		{name: "missing emotions", body: `{"ml_available": true, "analysis": {"dominant_emotion": "joy"}, "risk_assessment": {"risk_category": "low"}}`, want: ErrIncomplete},
		{name: "missing risk", body: `{"ml_available": true, "analysis": {"emotions": {"joy": 1}}}`, want: ErrIncomplete},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tc.body))
			if resp != nil {
				t.Fatalf("expected nil response, got %+v", resp)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDecodeResponseRejectsTrailingData(t *testing.T) {
	body := `{"ml_available": true, "analysis": {"emotions": {"joy": 1}}, "risk_assessment": {"risk_category": "high"}} trailing-garbage`
	if resp, err := DecodeResponse([]byte(body)); err == nil || resp != nil {
		t.Fatalf("expected decode error, got %+v, %v", resp, err)
	}
}

func TestDecodeResponseAcceptsPartialBodyWhenUnavailable(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"ml_available": false}`))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if resp.MLAvailable {
		t.Fatal("expected ml_available false")
	}

	resp, err = DecodeResponse([]byte(`{"ml_available": true, "analysis": {"emotions": {}}, "risk_assessment": {}}`))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(resp.Analysis.Emotions) != 0 {
		t.Fatalf("expected no emotions, got %v", resp.Analysis.Emotions)
	}
}

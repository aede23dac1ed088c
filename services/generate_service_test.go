package services

import (
	"testing"
)

func TestDecodeGenerated_AcceptsWellFormedPayload(t *testing.T) {
	payload := `[
		{
			"category": "Animals",
			"text": "Name a pet people keep at home",
			"answers": [
				{"text": "Dog", "points": 40},
				{"text": "Cat", "points": 35},
				{"text": "Fish", "points": 15},
				{"text": "Bird", "points": 10}
			]
		}
	]`

	questions, err := decodeGenerated(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("want 1 question, got %d", len(questions))
	}
	if questions[0].Answers[0].Text != "Dog" || questions[0].Answers[0].Points != 40 {
		t.Fatalf("answers not decoded in order: %+v", questions[0].Answers)
	}
}

func TestDecodeGenerated_RejectsMalformedPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `the model rambled instead of answering`},
		{"missing category", `[{"text": "Name a pet", "answers": [{"text": "Dog", "points": 40}]}]`},
		{"missing text", `[{"category": "Animals", "answers": [{"text": "Dog", "points": 40}]}]`},
		{"no answers", `[{"category": "Animals", "text": "Name a pet", "answers": []}]`},
		{"empty answer", `[{"category": "Animals", "text": "Name a pet", "answers": [{"text": "", "points": 10}]}]`},
		{"negative points", `[{"category": "Animals", "text": "Name a pet", "answers": [{"text": "Dog", "points": -1}]}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeGenerated(tc.payload); err == nil {
				t.Fatalf("want error for payload %s", tc.payload)
			}
		})
	}
}

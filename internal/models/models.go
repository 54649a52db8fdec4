package models

import "fmt"

// AnalysisResult is the triage verdict produced by the backend. The client
// never constructs one itself.
type AnalysisResult struct {
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason,omitempty"`
}

// SpokenSummary assembles the phrase read aloud after a verdict arrives.
func (r AnalysisResult) SpokenSummary() string {
	return fmt.Sprintf("Category %s. Severity %s. %s", r.Category, r.Severity, r.Recommendation)
}

type InputType string

const (
	InputText  InputType = "text"
	InputImage InputType = "image"
	InputAudio InputType = "audio"
)

// QueryLogEntry is one submitted query as the backend records it. Read-only
// on this side; the list order is whatever the server returned.
type QueryLogEntry struct {
	ID          string          `json:"_id"`
	InputType   InputType       `json:"input_type"`
	SymptomText string          `json:"symptom_text,omitempty"`
	OCRText     string          `json:"ocr_text,omitempty"`
	Analysis    *AnalysisResult `json:"analysis,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// RuleSet holds the operator-editable red-flag rules. The rule descriptors
// are opaque here; they round-trip unchanged apart from operator edits.
type RuleSet struct {
	RedFlags []any `json:"red_flags"`
}

// ContentConfig is the operator-editable guidance content, an arbitrary
// key/value mapping with the same round-trip contract as RuleSet.
type ContentConfig map[string]any

type Note struct {
	QueryID string `json:"query_id"`
	Note    string `json:"note"`
}

type LanguageOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Languages is the fixed catalog offered to patients.
var Languages = []LanguageOption{
	{Code: "en-US", Label: "English"},
	{Code: "hi-IN", Label: "हिंदी"},
	{Code: "te-IN", Label: "తెలుగు"},
	{Code: "kn-IN", Label: "ಕನ್ನಡ"},
}

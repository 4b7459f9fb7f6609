package categorize

import (
	"encoding/json"
	"strings"

	"github.com/Veraticus/expense-flow/internal/llm"
	"github.com/Veraticus/expense-flow/internal/model"
)

// Result is the normalized answer for one transaction.
type Result struct {
	Category   string
	Confidence model.Confidence
}

// Response is a batch reply after normalization. Results always has exactly
// the requested length.
type Response struct {
	Results []Result
	// Received is the number of entries the oracle actually returned.
	Received int
	// Degraded is set when the reply could not be read as a JSON array.
	Degraded bool
}

// Padded reports how many trailing entries were synthesized.
func (r Response) Padded() int {
	if r.Degraded {
		return len(r.Results)
	}
	return max(0, len(r.Results)-r.Received)
}

type rawResult struct {
	Category   json.RawMessage `json:"category"`
	Confidence json.RawMessage `json:"confidence"`
}

// ParseResponse reads the oracle reply for a batch of n transactions. It never
// fails: unreadable replies yield n empty low-confidence results, short replies
// are padded and long replies truncated.
func ParseResponse(text string, n int, vocab Vocabulary) Response {
	resp := Response{Results: make([]Result, n)}
	for i := range resp.Results {
		resp.Results[i] = Result{Confidence: model.ConfidenceLow}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(extractArray(text)), &entries); err != nil {
		resp.Degraded = true
		return resp
	}

	resp.Received = len(entries)
	for i, entry := range entries {
		if i >= n {
			break
		}
		resp.Results[i] = normalizeEntry(entry, vocab)
	}

	return resp
}

func normalizeEntry(entry json.RawMessage, vocab Vocabulary) Result {
	var raw rawResult
	if err := json.Unmarshal(entry, &raw); err != nil {
		return Result{Confidence: model.ConfidenceLow}
	}

	category, ok := vocab.Resolve(rawString(raw.Category))
	if !ok {
		return Result{Confidence: model.ConfidenceLow}
	}

	return Result{
		Category:   category,
		Confidence: model.ParseConfidence(rawString(raw.Confidence)),
	}
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// extractArray strips code fences and any prose around the outermost array.
func extractArray(text string) string {
	s := llm.CleanMarkdownWrapper(text)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}

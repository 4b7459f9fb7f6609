package categorize

import "github.com/Veraticus/expense-flow/internal/model"

// WireExpense is one expense in a categorize request.
type WireExpense struct {
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
}

// WireCategory is one category in a categorize request.
type WireCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	IsArchived  bool   `json:"isArchived"`
}

// Request is the body of POST /api/categorize.
type Request struct {
	Expenses   []WireExpense  `json:"expenses"`
	Categories []WireCategory `json:"categories"`
}

// WireResult is one categorized expense in a categorize reply.
type WireResult struct {
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Confidence  string  `json:"confidence"`
	Amount      float64 `json:"amount"`
}

// Reply is the body returned by POST /api/categorize.
type Reply struct {
	CategorizedExpenses []WireResult `json:"categorizedExpenses"`
}

// NewRequest converts candidates and categories to their wire form.
func NewRequest(candidates []model.CandidateExpense, categories []model.Category) Request {
	req := Request{
		Expenses:   make([]WireExpense, len(candidates)),
		Categories: make([]WireCategory, len(categories)),
	}
	for i, c := range candidates {
		req.Expenses[i] = WireExpense{Description: c.Description, Amount: c.Amount, Date: c.Date}
	}
	for i, cat := range categories {
		req.Categories[i] = WireCategory{
			Name:        cat.Name,
			Description: cat.Description,
			Order:       cat.Order,
			IsArchived:  cat.IsArchived,
		}
	}
	return req
}

// Candidates converts the request expenses into candidates indexed by position.
func (r Request) Candidates() []model.CandidateExpense {
	candidates := make([]model.CandidateExpense, len(r.Expenses))
	for i, e := range r.Expenses {
		candidates[i] = model.CandidateExpense{
			Index:       i,
			Date:        e.Date,
			Amount:      e.Amount,
			Description: e.Description,
		}
	}
	return candidates
}

// ModelCategories converts the request categories, dropping archived ones.
func (r Request) ModelCategories() []model.Category {
	categories := make([]model.Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		if c.IsArchived {
			continue
		}
		categories = append(categories, model.Category{
			Name:        c.Name,
			Description: c.Description,
			Order:       c.Order,
		})
	}
	return categories
}

// NewReply converts categorized candidates to their wire form.
func NewReply(results []model.CategorizedCandidate) Reply {
	reply := Reply{CategorizedExpenses: make([]WireResult, len(results))}
	for i, r := range results {
		reply.CategorizedExpenses[i] = WireResult{
			Description: r.Description,
			Amount:      r.Amount,
			Date:        r.Date,
			Category:    r.Category,
			Confidence:  r.Confidence.String(),
		}
	}
	return reply
}

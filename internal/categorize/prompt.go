package categorize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/expense-flow/internal/model"
)

// PromptInput is everything needed to render one batch request.
type PromptInput struct {
	MerchantContext string
	Categories      []model.Category
	Batch           []model.CandidateExpense
	// Offset is the global position of Batch[0]; numbering is 1-based from it.
	Offset int
}

// BuildPrompt renders the instruction for a single batch.
func BuildPrompt(in PromptInput) string {
	var categoryList strings.Builder
	for _, cat := range in.Categories {
		if cat.IsArchived {
			continue
		}
		if cat.Description != "" {
			fmt.Fprintf(&categoryList, "- %s: %s\n", cat.Name, cat.Description)
		} else {
			fmt.Fprintf(&categoryList, "- %s\n", cat.Name)
		}
	}
	if categoryList.Len() == 0 {
		categoryList.WriteString("(no categories are defined; answer \"\" with \"low\" confidence for every transaction)\n")
	}

	merchants := in.MerchantContext
	if merchants == "" {
		merchants = "(none)\n"
	}

	var transactions strings.Builder
	for i, c := range in.Batch {
		fmt.Fprintf(&transactions, "%d. %s | %s | %s\n",
			in.Offset+i+1,
			c.Date,
			strconv.FormatFloat(c.Amount, 'f', 2, 64),
			c.Description)
	}

	return fmt.Sprintf(`Categorize each expense below into exactly one of the user's categories.

CATEGORIES (use these names exactly; the descriptions are the authoritative guide):
%s
MERCHANT FREQUENCY ACROSS THE WHOLE IMPORT (give repeated merchants the same category):
%s
TRANSACTIONS (date | amount | description):
%s
CONFIDENCE LEVELS:
- high: the description clearly identifies a merchant or purpose that fits one category
- medium: one category is likely but the description leaves some doubt
- low: no category fits or the description is too vague to decide

OUTPUT FORMAT:
Respond with ONLY a JSON array of exactly %d objects, one per transaction, in the order listed above.
Each object must have:
  "category": one of the category names above, or "" if none fits
  "confidence": "high", "medium", or "low"
Example: [{"category": "Food", "confidence": "high"}, {"category": "", "confidence": "low"}]`,
		categoryList.String(),
		merchants,
		transactions.String(),
		len(in.Batch))
}

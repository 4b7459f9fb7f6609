package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/expense-flow/internal/categorize"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/Veraticus/expense-flow/internal/reconcile"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/schollz/progressbar/v3"
)

// maxSuggestions bounds the fuzzy-ranked categories listed first.
const maxSuggestions = 3

// ReviewStats counts what happened during a review.
type ReviewStats struct {
	Confirmed int // Suggestion kept with Enter
	Changed   int // Different category chosen
	Skipped   int
	Stopped   bool // User quit before the last item
}

// ReviewPrompter asks a human to categorize review items one at a time.
type ReviewPrompter struct {
	reader      LineReader
	writer      io.Writer
	progressBar *progressbar.ProgressBar
	stats       ReviewStats
}

// NewReviewPrompter creates a prompter. nil arguments fall back to stdin and
// stdout.
func NewReviewPrompter(reader LineReader, writer io.Writer) *ReviewPrompter {
	if reader == nil {
		reader = NewNonBlockingReader(os.Stdin)
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &ReviewPrompter{reader: reader, writer: writer}
}

// Stats returns the counts from the last Resolve.
func (p *ReviewPrompter) Stats() ReviewStats {
	return p.stats
}

// Resolve walks items in order. For each one the user may type a category
// number, a category name, Enter to keep the suggestion, "s" to skip or "q"
// to stop reviewing. Skipped items get no resolution. End of input stops the
// review without error.
func (p *ReviewPrompter) Resolve(ctx context.Context, items []model.ReviewItem, categories []model.Category) (reconcile.Resolutions, error) {
	p.stats = ReviewStats{}
	resolutions := make(reconcile.Resolutions, len(items))
	if len(items) == 0 {
		return resolutions, nil
	}

	active := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive() {
			active = append(active, c)
		}
	}
	vocab := categorize.NewVocabulary(active)

	p.initProgressBar(len(items))
	defer p.finishProgressBar()

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return resolutions, err
		}

		choices := orderChoices(active, item)
		p.printItem(i+1, len(items), item, choices)

		category, action, err := p.ask(ctx, item, choices, vocab)
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.stats.Stopped = true
				return resolutions, nil
			}
			return resolutions, err
		}

		switch action {
		case actionStop:
			p.stats.Stopped = true
			return resolutions, nil
		case actionSkip:
			p.stats.Skipped++
		case actionKeep:
			p.stats.Confirmed++
			resolutions[item.Index] = category
		case actionChoose:
			p.stats.Changed++
			resolutions[item.Index] = category
		}

		if p.progressBar != nil {
			if err := p.progressBar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	return resolutions, nil
}

type reviewAction int

const (
	actionChoose reviewAction = iota
	actionKeep
	actionSkip
	actionStop
)

func (p *ReviewPrompter) ask(ctx context.Context, item model.ReviewItem, choices []string, vocab categorize.Vocabulary) (string, reviewAction, error) {
	suggestion := ""
	if name, ok := vocab.Resolve(item.Category); ok {
		suggestion = name
	}

	for {
		prompt := "Category number or name, s to skip, q to stop"
		if suggestion != "" {
			prompt = fmt.Sprintf("Enter for %s, number or name, s to skip, q to stop", suggestion)
		}
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", actionSkip, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", actionSkip, err
		}

		switch strings.ToLower(input) {
		case "":
			if suggestion != "" {
				return suggestion, actionKeep, nil
			}
			p.complain("There is no suggestion for this expense. Pick a category or s to skip.")
			continue
		case "s":
			return "", actionSkip, nil
		case "q":
			return "", actionStop, nil
		}

		if n, convErr := strconv.Atoi(input); convErr == nil {
			if n >= 1 && n <= len(choices) {
				return choices[n-1], chosenAction(choices[n-1], suggestion), nil
			}
			p.complain(fmt.Sprintf("Pick a number between 1 and %d.", len(choices)))
			continue
		}

		if name, ok := vocab.Resolve(input); ok {
			return name, chosenAction(name, suggestion), nil
		}
		p.complain(fmt.Sprintf("%q is not an active category.", input))
	}
}

func chosenAction(chosen, suggestion string) reviewAction {
	if chosen == suggestion {
		return actionKeep
	}
	return actionChoose
}

func (p *ReviewPrompter) complain(message string) {
	if _, err := fmt.Fprintln(p.writer, FormatError(message)); err != nil {
		slog.Warn("Failed to write error message", "error", err)
	}
}

func (p *ReviewPrompter) printItem(n, total int, item model.ReviewItem, choices []string) {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Review %d of %d", n, total)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Date:        %s\n", item.Date)
	fmt.Fprintf(&b, "  Amount:      %.2f\n", item.Amount)
	fmt.Fprintf(&b, "  Description: %s\n", item.Description)
	if item.SourceCategory != "" {
		fmt.Fprintf(&b, "  CSV category: %s\n", WarningStyle.Render(item.SourceCategory))
	}
	if item.Category != "" {
		fmt.Fprintf(&b, "\n%s Suggestion: %s (%s confidence)\n",
			RobotIcon, SuccessStyle.Render(item.Category), item.Confidence)
	} else {
		fmt.Fprintf(&b, "\n%s No suggestion\n", RobotIcon)
	}
	b.WriteString("\n")
	for i, name := range choices {
		fmt.Fprintf(&b, "  %s %s\n", SubtleStyle.Render(fmt.Sprintf("%2d.", i+1)), name)
	}

	if _, err := fmt.Fprint(p.writer, b.String()); err != nil {
		slog.Warn("Failed to write review item", "error", err)
	}
}

// orderChoices lists active category names with the best matches for the
// item first and the rest in display order.
func orderChoices(active []model.Category, item model.ReviewItem) []string {
	names := make([]string, len(active))
	for i, c := range active {
		names[i] = c.Name
	}

	first := SuggestCategories(names, item.Category, item.SourceCategory)
	seen := make(map[string]bool, len(first))
	choices := make([]string, 0, len(names))
	for _, name := range first {
		seen[name] = true
		choices = append(choices, name)
	}
	for _, name := range names {
		if !seen[name] {
			choices = append(choices, name)
		}
	}
	return choices
}

// SuggestCategories ranks names against each hint with case-insensitive fuzzy
// matching, closest first. A name matches when it contains the hint's
// characters in order or the hint contains the name's. At most three names
// are returned.
func SuggestCategories(names []string, hints ...string) []string {
	type scored struct {
		name     string
		distance int
		hint     int
		index    int
	}

	best := make(map[string]scored)
	consider := func(s scored) {
		prev, ok := best[s.name]
		if !ok || s.hint < prev.hint || (s.hint == prev.hint && s.distance < prev.distance) {
			best[s.name] = s
		}
	}

	for h, hint := range hints {
		hint = strings.TrimSpace(hint)
		if hint == "" {
			continue
		}
		for _, rank := range fuzzy.RankFindNormalizedFold(hint, names) {
			consider(scored{name: rank.Target, distance: rank.Distance, hint: h, index: rank.OriginalIndex})
		}
		for i, name := range names {
			if d := fuzzy.RankMatchNormalizedFold(name, hint); d >= 0 {
				consider(scored{name: name, distance: d, hint: h, index: i})
			}
		}
	}

	ranked := make([]scored, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].hint != ranked[j].hint {
			return ranked[i].hint < ranked[j].hint
		}
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance < ranked[j].distance
		}
		return ranked[i].index < ranked[j].index
	})

	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.name
	}
	return out
}

func (p *ReviewPrompter) initProgressBar(total int) {
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Reviewing expenses...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *ReviewPrompter) finishProgressBar() {
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		slog.Warn("Failed to write newline", "error", err)
	}
	p.progressBar = nil
}

package leaderboard

import (
	"sync"
	"time"

	"pvpleaderboard.com/viewer/internal/debounce"
	"pvpleaderboard.com/viewer/internal/model"
)

// Standings : every bracket's entries plus the summary document.
// Replaced wholesale on reload.
type Standings struct {
	Meta     *model.Meta
	Brackets map[model.Bracket][]model.LeaderboardEntry
}

// Entries returns the unfiltered list for bracket (nil when absent).
func (s Standings) Entries(bracket model.Bracket) []model.LeaderboardEntry {
	return s.Brackets[bracket]
}

// ViewContext : selection state a single render is computed from
type ViewContext struct {
	Bracket model.Bracket `json:"bracket"`
	Query   string        `json:"query"`
	Sort    SortState     `json:"sort"`
}

// View : everything needed to draw one bracket's table
type View struct {
	Context ViewContext `json:"context"`
	Meta    MetaLine    `json:"meta"`
	Result
}

// Render computes the view for ctx. It reads standings only.
func Render(s Standings, ctx ViewContext) View {
	return View{
		Context: ctx,
		Meta:    NewMetaLine(s.Meta, ctx.Bracket),
		Result:  Apply(s.Entries(ctx.Bracket), Query{Text: ctx.Query, Sort: ctx.Sort}),
	}
}

// Board holds the current selection and issues render requests when it
// changes. Bracket and sort selections render immediately; search text is
// debounced. Render calls never overlap, whichever goroutine triggers them.
type Board struct {
	mu        sync.Mutex
	standings Standings
	ctx       ViewContext
	seq       uint64
	search    *debounce.Debouncer[string]

	// renderMu serializes render calls; rendered is the seq of the last view drawn
	renderMu sync.Mutex
	rendered uint64
	render   func(View)
}

// NewBoard starts on the first known bracket, unsorted and unfiltered.
func NewBoard(standings Standings, quiet time.Duration, render func(View)) *Board {
	b := &Board{
		standings: standings,
		ctx:       ViewContext{Bracket: model.Brackets[0]},
		render:    render,
	}
	b.search = debounce.New(quiet, b.applySearch)
	return b
}

// Context returns the current selection.
func (b *Board) Context() ViewContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

// View computes the view for the current selection without rendering it.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Render(b.standings, b.ctx)
}

// SelectBracket switches tabs and resets the sort, like a fresh table.
func (b *Board) SelectBracket(bracket model.Bracket) {
	b.update(func(ctx *ViewContext) {
		ctx.Bracket = bracket
		ctx.Sort = SortState{}
	})
}

// SelectSort applies a column click.
func (b *Board) SelectSort(key SortKey) {
	b.update(func(ctx *ViewContext) {
		ctx.Sort = ctx.Sort.Select(key)
	})
}

// Search schedules a filter pass for text after the quiet period.
func (b *Board) Search(text string) {
	b.search.Push(text)
}

// Reload replaces the standings and re-renders.
func (b *Board) Reload(standings Standings) {
	b.mu.Lock()
	b.standings = standings
	b.mu.Unlock()
	b.Refresh()
}

// Refresh renders the current selection.
func (b *Board) Refresh() {
	b.draw(b.snapshot(nil))
}

// Close drops any pending search pass.
func (b *Board) Close() {
	b.search.Cancel()
}

func (b *Board) applySearch(text string) {
	b.update(func(ctx *ViewContext) {
		ctx.Query = text
	})
}

func (b *Board) update(change func(*ViewContext)) {
	b.draw(b.snapshot(change))
}

// snapshot applies change and computes the resulting view, numbered in
// selection order.
func (b *Board) snapshot(change func(*ViewContext)) (View, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if change != nil {
		next := b.ctx
		change(&next)
		b.ctx = next
	}
	b.seq++
	return Render(b.standings, b.ctx), b.seq
}

// draw renders one view at a time and drops a view older than the last one
// drawn, so a slow debounced pass never overwrites a newer selection.
func (b *Board) draw(view View, seq uint64) {
	b.renderMu.Lock()
	defer b.renderMu.Unlock()
	if seq <= b.rendered {
		return
	}
	b.rendered = seq
	b.render(view)
}

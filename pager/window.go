package pager

// DefaultWindowSize is the maximum number of numbered page buttons.
const DefaultWindowSize = 5

// Window is the pagination control for a list: a sliding range of page
// numbers around the current page plus boundary buttons.
type Window struct {
	Current    int
	TotalPages int
	// Pages are the numbered buttons, ascending.
	Pages []int
	// ShowFirst is set when page 1 falls outside Pages.
	ShowFirst bool
	// LeadingGap is set when pages between 1 and Pages[0] are skipped.
	LeadingGap bool
	// TrailingGap is set when pages between the last of Pages and TotalPages
	// are skipped.
	TrailingGap  bool
	ShowLast     bool
	PrevDisabled bool
	NextDisabled bool
}

// NewWindow computes the window for currentPage. currentPage is clamped to
// [1, totalPages].
func NewWindow(currentPage, totalPages int) Window {
	if totalPages <= 0 {
		return Window{
			Current:      1,
			Pages:        []int{},
			PrevDisabled: true,
			NextDisabled: true,
		}
	}

	currentPage = min(max(currentPage, 1), totalPages)

	start := max(1, currentPage-DefaultWindowSize/2)
	end := min(totalPages, start+DefaultWindowSize-1)
	if end-start < DefaultWindowSize-1 {
		start = max(1, end-DefaultWindowSize+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}

	return Window{
		Current:      currentPage,
		TotalPages:   totalPages,
		Pages:        pages,
		ShowFirst:    start > 1,
		LeadingGap:   start > 2,
		TrailingGap:  end < totalPages-1,
		ShowLast:     end < totalPages,
		PrevDisabled: currentPage == 1,
		NextDisabled: currentPage == totalPages,
	}
}

// Hidden reports whether the control should not be rendered at all.
func (w Window) Hidden() bool {
	return w.TotalPages <= 1
}

type ButtonKind string

const (
	ButtonPrev     ButtonKind = "prev"
	ButtonPage     ButtonKind = "page"
	ButtonEllipsis ButtonKind = "ellipsis"
	ButtonNext     ButtonKind = "next"
)

// Button is one rendered element of the control.
type Button struct {
	Kind     ButtonKind `json:"kind"`
	Page     int        `json:"page,omitempty"`
	Active   bool       `json:"active,omitempty"`
	Disabled bool       `json:"disabled,omitempty"`
}

// Buttons lists the control left to right.
func (w Window) Buttons() []Button {
	buttons := make([]Button, 0, len(w.Pages)+6)

	buttons = append(buttons, Button{Kind: ButtonPrev, Page: w.Current - 1, Disabled: w.PrevDisabled})
	if w.ShowFirst {
		buttons = append(buttons, Button{Kind: ButtonPage, Page: 1})
	}
	if w.LeadingGap {
		buttons = append(buttons, Button{Kind: ButtonEllipsis, Disabled: true})
	}
	for _, p := range w.Pages {
		buttons = append(buttons, Button{Kind: ButtonPage, Page: p, Active: p == w.Current})
	}
	if w.TrailingGap {
		buttons = append(buttons, Button{Kind: ButtonEllipsis, Disabled: true})
	}
	if w.ShowLast {
		buttons = append(buttons, Button{Kind: ButtonPage, Page: w.TotalPages})
	}
	buttons = append(buttons, Button{Kind: ButtonNext, Page: w.Current + 1, Disabled: w.NextDisabled})

	return buttons
}

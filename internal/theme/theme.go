// Package theme centralizes the desktop UI's palette and widget descriptors
// so every window renders consistently. The package describes styling;
// applying it is the UI layer's job.
package theme

import "fmt"

// Palette. The hex values are shared with the existing desktop styling and
// must stay in sync with it.
const (
	ColorBackground = "#f0f2f5"
	ColorCard       = "#f8f9fa"
	ColorHeading    = "#343a40"
	ColorLabel      = "#495057"
	ColorMuted      = "#6c757d"
	ColorBorder     = "#dee2e6"
	ColorAction     = "#28a745"
	ColorDanger     = "#dc3545"
)

// Stylesheet returns the application-wide style block applied to main
// windows and dialogs.
func Stylesheet() string {
	return fmt.Sprintf("QMainWindow, QDialog { background-color: %s; }", ColorBackground)
}

// Label describes a styled text element.
type Label struct {
	Text      string
	PointSize int
	Bold      bool
}

// SectionTitle returns the label used for section headings.
func SectionTitle(text string) Label {
	return Label{Text: text, PointSize: 12, Bold: true}
}

// Button describes a styled push button. An empty Style means the toolkit
// default look.
type Button struct {
	Text  string
	Style string
}

// NewButton returns a standard button. Primary buttons keep the toolkit
// default; secondary buttons get the muted fill.
func NewButton(text string, primary bool) Button {
	b := Button{Text: text}
	if !primary {
		b.Style = fmt.Sprintf("background-color: %s; color: white;", ColorMuted)
	}
	return b
}

// NewActionButton returns the green call-to-action button.
func NewActionButton(text string) Button {
	return Button{
		Text:  text,
		Style: fmt.Sprintf("background-color: %s; color: white;", ColorAction),
	}
}

// NewDangerButton returns the red destructive-action button.
func NewDangerButton(text string) Button {
	return Button{
		Text:  text,
		Style: fmt.Sprintf("background-color: %s; color: white;", ColorDanger),
	}
}

// Table describes a styled table with fixed headers.
type Table struct {
	Headers []string
}

// WorkersTable returns the worker roster table layout.
func WorkersTable() Table {
	return Table{Headers: []string{"First Name", "Last Name", "Email", "Work Study", "Availability", "Actions"}}
}

// HoursTable returns the hours-of-operation table layout.
func HoursTable() Table {
	return Table{Headers: []string{"Day", "Start", "End"}}
}

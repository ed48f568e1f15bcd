package schemas

// -- Page Capture Schemas --

// A4 paper dimensions in inches, the unit expected by Page.printToPDF.
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
)

// PrintOptions controls how a rendered page is captured as a paginated document.
type PrintOptions struct {
	PaperWidth      float64 `json:"paper_width" mapstructure:"paper_width"`
	PaperHeight     float64 `json:"paper_height" mapstructure:"paper_height"`
	PrintBackground bool    `json:"print_background" mapstructure:"print_background"`
	Landscape       bool    `json:"landscape" mapstructure:"landscape"`
}

// A4PrintOptions returns portrait A4 with background graphics included.
func A4PrintOptions() PrintOptions {
	return PrintOptions{
		PaperWidth:      A4WidthInches,
		PaperHeight:     A4HeightInches,
		PrintBackground: true,
	}
}

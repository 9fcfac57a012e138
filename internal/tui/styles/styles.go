package styles

import "github.com/charmbracelet/lipgloss"

// Oxocarbon color scheme
var (
	OxocarbonBlack  = lipgloss.Color("#161616")
	OxocarbonBase00 = lipgloss.Color("#262626") // UI elements
	OxocarbonBase01 = lipgloss.Color("#393939") // Borders
	OxocarbonBase02 = lipgloss.Color("#525252") // Disabled
	OxocarbonBase03 = lipgloss.Color("#767676") // Muted
	OxocarbonBase04 = lipgloss.Color("#dde1e6") // Secondary foreground
	OxocarbonBase05 = lipgloss.Color("#f2f4f8") // Primary foreground
	OxocarbonWhite  = lipgloss.Color("#ffffff")

	OxocarbonTeal   = lipgloss.Color("#3ddbd9")
	OxocarbonBlue   = lipgloss.Color("#78a9ff")
	OxocarbonPink   = lipgloss.Color("#ee5396")
	OxocarbonRed    = lipgloss.Color("#ff5252")
	OxocarbonCyan   = lipgloss.Color("#33b1ff")
	OxocarbonGreen  = lipgloss.Color("#42be65")
	OxocarbonPurple = lipgloss.Color("#be95ff") // main accent
	OxocarbonMauve  = lipgloss.Color("#d1aaff")
)

var (
	// Screen title
	TitleStyle = lipgloss.NewStyle().
			Foreground(OxocarbonWhite).
			Background(OxocarbonPurple).
			Padding(0, 1).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase03).
			MarginTop(1)

	// List item with a left border
	ItemStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(OxocarbonBase02).
			BorderLeft(true).
			PaddingLeft(2).
			PaddingRight(2).
			MarginLeft(1)

	ItemSelectedStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(OxocarbonPurple).
				BorderLeft(true).
				PaddingLeft(2).
				PaddingRight(2).
				MarginLeft(1)

	ItemTitleStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase05).
			Bold(true)

	MetadataStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase04)

	StatusBadgeStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Bold(true)

	// Player controls box
	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(OxocarbonBase01).
			Padding(0, 1)

	// Pickers and confirmation dialogs
	PopupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(OxocarbonPurple).
			Padding(1, 2)

	// Shown when a title has no playable media
	FallbackStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(OxocarbonRed).
			Foreground(OxocarbonBase05).
			Padding(1, 4)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(OxocarbonRed)
)

// StatusColor returns the badge color for a download status or player state
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "downloading", "playing":
		return OxocarbonGreen
	case "completed", "ended":
		return OxocarbonBlue
	case "paused", "buffering", "loading":
		return OxocarbonPink
	case "error", "unavailable":
		return OxocarbonRed
	default:
		return OxocarbonBase03
	}
}

// StatusBadge renders status in its color
func StatusBadge(status string) string {
	return StatusBadgeStyle.Foreground(StatusColor(status)).Render(status)
}

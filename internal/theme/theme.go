package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top application bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ColumnStyle frames a board list column.
var ColumnStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 1)

// FocusedColumnStyle frames the column holding the cursor.
var FocusedColumnStyle = ColumnStyle.
	BorderForeground(ColorBlue)

// ColumnTitleStyle renders a column header with its task count.
var ColumnTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// CardStyle is the base style for a task card.
var CardStyle = lipgloss.NewStyle().
	PaddingLeft(1)

// SelectedCardStyle highlights the task under the cursor.
var SelectedCardStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// GrabbedCardStyle marks the task currently being moved.
var GrabbedCardStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorYellow)

// SidebarStyle frames the chat conversation list.
var SidebarStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 1)

// ConversationStyle is the base style for sidebar entries.
var ConversationStyle = lipgloss.NewStyle().
	PaddingLeft(1)

// SelectedConversationStyle highlights the active conversation.
var SelectedConversationStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue)

// UnreadBadgeStyle renders the per-conversation unread counter.
var UnreadBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// SenderStyle renders the author name on a chat message line.
var SenderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorMagenta)

// OwnSenderStyle renders the authenticated user's name on their own messages.
var OwnSenderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// TimestampStyle renders message times.
var TimestampStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// TypingStyle renders the transient typing indicator line.
var TypingStyle = lipgloss.NewStyle().
	Italic(true).
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// PanelStyle provides a standard rounded border for overlay panels.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ToastStyle renders transient error and info notices.
var ToastStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// PresenceDot returns the online/offline marker for a user.
func PresenceDot(online bool) string {
	if online {
		return lipgloss.NewStyle().Foreground(ColorGreen).Render("●")
	}
	return lipgloss.NewStyle().Foreground(ColorSubtle).Render("○")
}

// LabelStyle returns a color-coded style for a task label chip. The
// palette cycles so boards with many labels stay readable.
func LabelStyle(index int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch index % 5 {
	case 0:
		return base.Foreground(ColorBlue)
	case 1:
		return base.Foreground(ColorGreen)
	case 2:
		return base.Foreground(ColorYellow)
	case 3:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorRed)
	}
}

// DueStyle returns a style for a task due-date chip. Overdue dates
// render red, due-soon yellow, everything else gray.
func DueStyle(overdue, dueSoon bool) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch {
	case overdue:
		return base.Foreground(ColorRed).Bold(true)
	case dueSoon:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}

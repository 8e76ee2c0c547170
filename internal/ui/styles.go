package ui

import (
	"github.com/charmbracelet/lipgloss"

	"assetgrip/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Filter        lipgloss.Style
	Help          lipgloss.Style
	Highlight     lipgloss.Style
	SelectionBg   lipgloss.Style
	StatusError   lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
	Expired       lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Dim:           lipgloss.NewStyle().Faint(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Filter:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:          lipgloss.NewStyle().Faint(true),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Expired:       lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

// KindColor returns the tag color for an asset kind
func KindColor(kind domain.Kind) string {
	switch kind {
	case domain.KindLicense:
		return "33" // blue
	case domain.KindSoftware:
		return "51" // cyan
	case domain.KindPayment:
		return "78" // green
	case domain.KindPurchase:
		return "214" // yellow
	case domain.KindThirdParty:
		return "177" // purple
	default:
		return "241"
	}
}

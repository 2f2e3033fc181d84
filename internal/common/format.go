package common

import (
	"fmt"
	"strings"

	"club-points-ledger/internal/models"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// ANSI colors for tier labels in console output.
const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorRed    = "\033[31m"
	colorPurple = "\033[35m"
)

var tierColors = map[models.Tier]string{
	models.TierBronze:     colorGray,
	models.TierSilver:     colorReset,
	models.TierGold:       colorYellow,
	models.TierPlatinum:   colorCyan,
	models.TierDiamond:    colorCyan,
	models.TierMaster:     colorPurple,
	models.TierChallenger: colorRed,
}

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// TierLabel renders a tier name padded for table output, colored when color is true.
func TierLabel(tier models.Tier, color bool) string {
	label := fmt.Sprintf("%-10s", strings.ToUpper(string(tier)))
	if !color {
		return label
	}
	return tierColors[tier] + label + colorReset
}

// FormatRankRow renders one ranking line.
func FormatRankRow(entry models.RankEntry, color bool) string {
	return fmt.Sprintf("%4d  %-24s %s %8d pts", entry.Rank, truncate(entry.Name, 24), TierLabel(entry.Tier, color), entry.Points)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

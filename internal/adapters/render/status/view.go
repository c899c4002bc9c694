package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/internode-usage-cli/internal/application"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	barWidth     = 24
	rolloverDate = "2006-01-02"
)

type RenderOptions struct {
	Now time.Time
	// AlertAt flags services whose usage reached this percentage of quota.
	AlertAt float64
}

func renderView(total int, sections []string, alerts int, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Internode Usage"),
		s.header.Render(fmt.Sprintf("services: %d", total)),
	}

	if total == 0 {
		lines = append(lines, s.empty.Render("No services available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, section := range sections {
		lines = append(lines, s.section.Render(section))
	}

	if alerts > 0 {
		lines = append(lines, s.warning.Render(fmt.Sprintf("%d of %d services at or above %.0f%% of quota", alerts, total, opts.AlertAt)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderService(status application.ServiceStatus, opts RenderOptions, s styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.service.Render(serviceTitle(status)),
		usageLine(status, opts, s),
		s.detail.Render(periodLine(status.Usage, opts.Now)),
	)
}

func serviceTitle(status application.ServiceStatus) string {
	plan := strings.TrimSpace(status.Plan)
	if plan == "" {
		return fmt.Sprintf("Service %s", status.ServiceID)
	}
	if status.Speed != "" {
		return fmt.Sprintf("%s, %s (%s)", plan, status.Speed, status.ServiceID)
	}
	return fmt.Sprintf("%s (%s)", plan, status.ServiceID)
}

func usageLine(status application.ServiceStatus, opts RenderOptions, s styles) string {
	usage := status.Usage
	if usage.Quota <= 0 {
		return s.detail.Render("usage: " + formatAmount(usage.Usage, usage.Unit) + " (no quota)")
	}

	used := usage.PercentUsed()
	leftPercent := clampPercent(100 - used)
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(leftPercent, 0, 100))

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.usageKey.Render("usage:"),
		" ",
		renderProgressBar(used, barWidth, s),
		" ",
		percentStyle.Render(fmt.Sprintf("%2.0f%% used", used)),
		" ",
		s.usageMeta.Render(fmt.Sprintf("%s of %s, %s left",
			formatAmount(usage.Usage, usage.Unit),
			formatAmount(usage.Quota, usage.Unit),
			formatAmount(usage.Remaining(), usage.Unit),
		)),
	)

	switch {
	case used >= 100:
		line += " " + s.warning.Render("[over quota]")
	case status.OverThreshold(opts.AlertAt):
		line += " " + s.warning.Render("[alert]")
	}

	return line
}

func periodLine(usage domain.UsageSnapshot, now time.Time) string {
	interval := strings.ToLower(strings.TrimSpace(usage.PlanInterval))
	if interval == "" {
		interval = "plan"
	}

	return fmt.Sprintf("%s period, %s", interval, formatRollover(usage.Rollover, now))
}

func formatRollover(raw string, now time.Time) string {
	if raw == "" {
		return "rollover unknown"
	}

	rollover, err := time.ParseInLocation(rolloverDate, raw, time.Local)
	if err != nil || now.IsZero() {
		return "rolls over " + raw
	}

	if !rollover.After(now) {
		return "rolls over today"
	}

	days := int(math.Ceil(rollover.Sub(now).Hours() / 24))
	suffix := "days"
	if days == 1 {
		suffix = "day"
	}

	return fmt.Sprintf("rolls over in %d %s (%s)", days, suffix, rollover.Format("02 Jan"))
}

// formatAmount renders byte counts with SI units; other units are printed
// as-is.
func formatAmount(value int64, unit string) string {
	if unit != "" && unit != "bytes" {
		return fmt.Sprintf("%s %s", humanize.Comma(value), unit)
	}
	if value < 0 {
		value = 0
	}
	return humanize.Bytes(uint64(value))
}

func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	filled := int(math.Round(float64(width) * used / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// interpolateColor maps value onto the ANSI greyscale ramp, 240 at min to
// 255 at max.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/prodwatch/internal/logtail"
	"github.com/five82/prodwatch/internal/monitor"
)

// renderMain renders the input, the result panel and the optional log pane.
func (m Model) renderMain() string {
	styles := m.theme.Styles()

	sections := []string{m.renderHeader(styles)}
	if m.backend == backendUnreachable && m.backendError != "" {
		sections = append(sections, styles.DangerText.Render("Backend: "+m.backendError))
	}
	sections = append(sections, m.renderInput(styles))
	if panel := m.ctrl.Panel(); !panel.Empty() {
		sections = append(sections, m.renderPanel(styles, panel))
	}
	if status := m.renderSessionStatus(styles); status != "" {
		sections = append(sections, status)
	}
	if m.showLogs {
		sections = append(sections, m.renderLogs(styles))
	}
	if m.notice != "" {
		sections = append(sections, styles.WarningText.Render(m.notice))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.help.View(m.keys)

	gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(
		body + strings.Repeat("\n", gap) + footer,
	)
}

func (m Model) renderHeader(styles Styles) string {
	bg := NewBgStyle(m.theme.Surface)
	parts := []string{
		bg.Render("🛒 prodwatch", styles.Logo),
		bg.Render("Amazon product analysis", styles.MutedText),
	}
	if m.backendAddr != "" {
		parts = append(parts, bg.Render(m.backendAddr, styles.FaintText))
	}
	parts = append(parts, m.renderBackendState(styles, bg))
	parts = append(parts, bg.Render(m.theme.Name, styles.FaintText))

	line := bg.Spaces(1) + bg.Join(parts, 2)
	return bg.FillLine(line, m.contentWidth())
}

func (m Model) renderBackendState(styles Styles, bg BgStyle) string {
	switch m.backend {
	case backendChecking:
		return bg.Render("● checking", styles.WarningText)
	case backendReady:
		return bg.Render("● ready", styles.SuccessText)
	case backendUnreachable:
		return bg.Render("● unreachable", styles.DangerText)
	default:
		return bg.Render("● external", styles.InfoText)
	}
}

func (m Model) renderInput(styles Styles) string {
	label := styles.MutedText.Render("Amazon product URL")
	box := styles.Input.Width(m.contentWidth() - 2).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, "", label, box)
}

func (m Model) renderPanel(styles Styles, p monitor.Panel) string {
	icon, title := p.Heading()
	lines := []string{styles.TitleStyle(p.Kind).Render(icon + " " + title)}

	if p.Message != "" {
		lines = append(lines, "", styles.Text.Render(p.Message))
	}
	if len(p.Lines) > 0 {
		lines = append(lines, "")
		for _, l := range p.Lines {
			lines = append(lines, styles.MutedText.Render(l.Label+": ")+styles.Text.Render(l.Value))
		}
	}
	if p.Loading {
		lines = append(lines, "", m.spinner.View()+" "+styles.MutedText.Render("Sending request..."))
	}
	if p.Progress != nil {
		lines = append(lines, "", m.renderProgress(styles, *p.Progress))
	}
	if len(p.Artifacts) > 0 {
		lines = append(lines, "", styles.Text.Bold(true).Render("📁 Files generated:"))
		for _, name := range p.Artifacts {
			lines = append(lines, "  • "+styles.AccentText.Render(name))
		}
	}
	if p.Detail != "" {
		label := "Details: "
		if p.Kind == monitor.KindSuccess {
			label = "Final stage: "
		}
		lines = append(lines, "", styles.MutedText.Render(label)+styles.Text.Render(p.Detail))
	}
	if p.OccurredAt != "" {
		label := "Error time: "
		if p.Kind == monitor.KindSuccess {
			label = "Completed at: "
		}
		lines = append(lines, styles.MutedText.Render(label)+styles.Text.Render(p.OccurredAt))
	}
	if len(p.Hint) > 0 {
		lines = append(lines, "")
		for _, h := range p.Hint {
			lines = append(lines, styles.FaintText.Render(h))
		}
	}
	if p.Action != "" {
		lines = append(lines, "", styles.AccentText.Render("↵ "+p.Action))
	}

	return styles.PanelStyle(p.Kind).
		Width(m.contentWidth() - 2).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderProgress(styles Styles, p monitor.Progress) string {
	bar := m.bar
	bar.FullColor = m.theme.TierColor(p.Tier())

	stage := p.Stage
	if stage == "" {
		stage = "Processing..."
	}
	heading := p.Glyph() + " " + styles.Text.Bold(true).Render(stage)
	if p.Waiting {
		heading = m.spinner.View() + " " + styles.Text.Bold(true).Render(stage)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		bar.ViewAs(p.Fraction()),
		styles.FaintText.Render(p.Caption()),
	)
}

// renderSessionStatus shows the live poll counters while monitoring.
func (m Model) renderSessionStatus(styles Styles) string {
	info, ok := m.ctrl.Session()
	if !ok {
		return ""
	}
	elapsed := info.Elapsed(time.Now()).Truncate(time.Second)
	text := fmt.Sprintf("Monitoring %s • %s elapsed • %d polls", info.Handle.ProcessID, elapsed, info.Polls)
	if info.ConsecutiveFailures > 0 {
		text += fmt.Sprintf(" • %d failed", info.ConsecutiveFailures)
		return styles.WarningText.Render(text)
	}
	return styles.FaintText.Render(text)
}

func (m Model) renderLogs(styles Styles) string {
	title := styles.AccentText.Bold(true).Render("Backend log")
	if m.logPath != "" {
		title += styles.FaintText.Render("  " + m.logPath)
	}

	var body []string
	switch {
	case m.logPath == "":
		body = []string{styles.FaintText.Render("The backend was not started by prodwatch; no log to show.")}
	case m.logErr != nil:
		body = []string{styles.DangerText.Render("Log unavailable: " + m.logErr.Error())}
	case len(m.logLines) == 0:
		body = []string{styles.FaintText.Render("No output yet.")}
	default:
		lines := m.logLines
		if n := m.logHeight(); len(lines) > n {
			lines = lines[len(lines)-n:]
		}
		width := m.contentWidth() - 4
		for _, line := range lines {
			style := styles.LogLineStyle(logtail.Classify(line))
			body = append(body, style.MaxWidth(width).Render(line))
		}
	}

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		Width(m.contentWidth() - 2)
	return frame.Render(title + "\n" + strings.Join(body, "\n"))
}

// logHeight is how many log lines fit under the panel.
func (m Model) logHeight() int {
	n := m.height / 3
	if n < 5 {
		n = 5
	}
	return n
}

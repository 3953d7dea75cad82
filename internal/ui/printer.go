package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/jetrun/internal/utils"
)

const (
	bannerSeparatorCharacterConstant = "="
	bannerWidthConstant              = 60
	successMarkerConstant            = "✅"
	failureMarkerConstant            = "❌"
	warningMarkerConstant            = "⚠️ "
	timeoutMarkerConstant            = "⏰"
	statusLineTemplateConstant       = "%s %s"
	successColorConstant             = "#8BC34A"
	failureColorConstant             = "#E53935"
	warningColorConstant             = "#FFC107"
	bannerColorConstant              = "#2196F3"
)

// Printer writes banners and status lines for jetrun commands. Colors are applied only when
// the destination is a terminal.
type Printer struct {
	writer       io.Writer
	bannerStyle  lipgloss.Style
	successStyle lipgloss.Style
	failureStyle lipgloss.Style
	warningStyle lipgloss.Style
}

// NewPrinter constructs a Printer for the provided writer.
func NewPrinter(writer io.Writer) *Printer {
	synchronizedWriter := utils.NewSynchronizedWriter(writer)
	renderer := lipgloss.NewRenderer(writer)
	return &Printer{
		writer:       synchronizedWriter,
		bannerStyle:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(bannerColorConstant)),
		successStyle: renderer.NewStyle().Foreground(lipgloss.Color(successColorConstant)),
		failureStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(failureColorConstant)),
		warningStyle: renderer.NewStyle().Foreground(lipgloss.Color(warningColorConstant)),
	}
}

// Banner prints a title framed by separator rules.
func (printer *Printer) Banner(title string) {
	separator := strings.Repeat(bannerSeparatorCharacterConstant, bannerWidthConstant)
	printer.writeLines(
		printer.bannerStyle.Render(separator),
		printer.bannerStyle.Render(title),
		printer.bannerStyle.Render(separator),
	)
}

// Rule prints a bare separator rule.
func (printer *Printer) Rule() {
	printer.writeLines(printer.bannerStyle.Render(strings.Repeat(bannerSeparatorCharacterConstant, bannerWidthConstant)))
}

// Success prints a message marked as successful.
func (printer *Printer) Success(message string) {
	printer.writeLines(printer.successStyle.Render(fmt.Sprintf(statusLineTemplateConstant, successMarkerConstant, message)))
}

// Failure prints a message marked as failed.
func (printer *Printer) Failure(message string) {
	printer.writeLines(printer.failureStyle.Render(fmt.Sprintf(statusLineTemplateConstant, failureMarkerConstant, message)))
}

// Warning prints a message marked as a warning.
func (printer *Printer) Warning(message string) {
	printer.writeLines(printer.warningStyle.Render(fmt.Sprintf(statusLineTemplateConstant, warningMarkerConstant, message)))
}

// Timeout prints a message marked as timed out.
func (printer *Printer) Timeout(message string) {
	printer.writeLines(printer.warningStyle.Render(fmt.Sprintf(statusLineTemplateConstant, timeoutMarkerConstant, message)))
}

// Line prints an unstyled line.
func (printer *Printer) Line(message string) {
	printer.writeLines(message)
}

func (printer *Printer) writeLines(lines ...string) {
	fmt.Fprint(printer.writer, strings.Join(lines, "\n")+"\n")
}

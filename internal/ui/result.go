package ui

import (
	"io"
	"strings"

	"github.com/muurk/streammagic/pkg/streammagic"
)

// RenderErrorBox renders a failed command with its troubleshooting hint
func RenderErrorBox(title string, err error, width int) string {
	var lines []string

	lines = append(lines, ErrorTitle.Render(FailureMarker+"  FAILED  ─  "+title), "")
	if err != nil {
		lines = append(lines, ErrorLine.Render("Error: "+streammagic.ShortMessage(err)), "")
		for _, hint := range strings.Split(streammagic.TroubleshootingHint(err), "\n") {
			lines = append(lines, HintItemStyle.Render(hint))
		}
	}

	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// PrintError writes err to w, boxed and styled for terminals and as plain
// text otherwise.
func PrintError(w io.Writer, title string, err error) {
	if IsTerminal(w) {
		_, _ = io.WriteString(w, RenderErrorBox(title, err, GetTerminalWidth())+"\n")
		return
	}

	var b strings.Builder
	b.WriteString("Error: " + title + ": " + streammagic.ShortMessage(err) + "\n")
	if e, ok := streammagic.AsError(err); ok {
		b.WriteString("Details: " + e.Error() + "\n")
	}
	b.WriteString("\n" + streammagic.TroubleshootingHint(err) + "\n")
	_, _ = io.WriteString(w, b.String())
}

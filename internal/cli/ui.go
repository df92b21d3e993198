package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// stdout receives all human-facing status output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

var (
	colorAccent = lipgloss.Color("36")  // teal: tree edges, leaf counts
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorCmd    = lipgloss.Color("75")  // light blue
	colorValue  = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

// Styles shared with the interactive editor.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorValue)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleLabel = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleCmd   = lipgloss.NewStyle().Foreground(colorCmd)
)

// A status line is a colored glyph followed by the message.
type glyph struct {
	mark  string
	style lipgloss.Style
}

var (
	glyphOK   = glyph{"✓", StyleSuccess}
	glyphFail = glyph{"✗", lipgloss.NewStyle().Foreground(colorFail)}
	glyphWarn = glyph{"!", StyleWarning}
	glyphInfo = glyph{"›", lipgloss.NewStyle().Foreground(colorLabel)}
)

func (g glyph) print(msg string) {
	fmt.Fprintln(stdout, g.style.Render(g.mark)+" "+msg)
}

func printSuccess(format string, args ...any) { glyphOK.print(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { glyphFail.print(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { glyphInfo.print(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	glyphWarn.print(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a file written by the command.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printSummary prints one line describing g and, when tree is non-nil, the
// spanning tree found for it. cached reports whether the tree came from the
// solve cache and is only shown alongside a tree.
func printSummary(g *graph.Graph, tree solver.Tree, cached bool) {
	parts := []string{
		fmt.Sprintf("%d vertices", g.VertexCount()),
		fmt.Sprintf("%d edges", g.EdgeCount()),
	}
	if n := len(g.Components()); n > 1 {
		parts = append(parts, fmt.Sprintf("%d components", n))
	}
	line := "  " + StyleDim.Render(strings.Join(parts, " · "))
	if tree != nil {
		line += StyleDim.Render(" · ") + StyleHighlight.Render(fmt.Sprintf("%d leaves", tree.Leaves()))
		if cached {
			line += StyleDim.Render(" · ") + StyleSuccess.Render("cached")
		} else {
			line += StyleDim.Render(" · fresh")
		}
	}
	fmt.Fprintln(stdout, line)
}

// printNextStep suggests the command a user would most likely run next,
// preceded by a blank line.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCmd.Render(cmd))
}

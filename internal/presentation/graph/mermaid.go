package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/swap/internal/runtime"
	"github.com/aretw0/swap/pkg/domain"
)

// GraphOverlay contains live session data to highlight on the diagram.
type GraphOverlay struct {
	VisitedSteps []domain.Step
	CurrentStep  domain.Step
}

// GenerateMermaid produces a Mermaid flowchart of the collection flow.
// Shapes follow the role of the step:
// - Amount entry: ((Circle))
// - Waiting on the client: [/Parallelogram/]
// - Final: [[Subroutine]]
// Every non-initial step gets a dotted reset edge back to the keypad.
func GenerateMermaid(steps []domain.Step, rules []runtime.Rule, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range steps {
		opener, closer := "[", "]"
		switch {
		case step == domain.StepAmountEntry:
			opener, closer = "((", "))"
		case step.IsFinal():
			opener, closer = "[[", "]]"
		case step == domain.StepAwaitingScan || step == domain.StepAwaitingPin:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(step)), opener, step, closer)
	}

	for _, r := range rules {
		arrow := "-->"
		if r.Trigger != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(r.Trigger, "\"", "'"))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(string(r.From)), arrow, sanitizeMermaidID(string(r.To)))
	}

	start := sanitizeMermaidID(string(domain.StepAmountEntry))
	for _, step := range steps {
		if step == domain.StepAmountEntry {
			continue
		}
		fmt.Fprintf(&sb, "    %s -. reset .-> %s\n", sanitizeMermaidID(string(step)), start)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, s := range overlay.VisitedSteps {
			id := sanitizeMermaidID(string(s))
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}

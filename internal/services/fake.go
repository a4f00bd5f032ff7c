package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// FakeCompleter returns a deterministic assessment without network access,
// for offline runs and tests.
type FakeCompleter struct{}

// NewFakeCompleter creates a fake completer
func NewFakeCompleter() *FakeCompleter {
	return &FakeCompleter{}
}

// Complete answers with canned markdown addressed to the project named in prompt
func (f *FakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := promptValue(prompt, "Project Name:")

	payload := map[string]string{
		"scopePlan": fmt.Sprintf("## Scope Management Plan: %s\n\n"+
			"1. Define scope with the sponsor\n"+
			"2. Build the **WBS** down to work packages\n"+
			"3. Validate deliverables at each milestone\n\n"+
			"- Change requests go through the *change control board*", name),
		"requirementsMatrix": "| ID | Requirement | Source | Priority | Acceptance Criteria |\n" +
			"|----|-------------|--------|----------|---------------------|\n" +
			"| R1 | Core workflow | Intake | High | Demonstrated end to end |\n" +
			"| R2 | Reporting | Intake | Medium | Sponsor sign-off |",
		"advisoryWarnings": "- **Timeline**: confirm the schedule includes testing\n" +
			"- **Budget**: no contingency reserve is identified",
		"gapAnalysis": "### Gaps\n\n" +
			"- Stakeholder register is missing\n" +
			"- Success metrics are not `measurable` yet\n\n" +
			"### Top Risks\n\n" +
			"1. Scope creep from unprioritized requirements",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func promptValue(prompt, label string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return "Untitled Project"
}

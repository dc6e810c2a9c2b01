// ABOUTME: Project context selection for injection into agent prompts
// ABOUTME: Knowledge entries first, then recent summaries, under a token budget
package search

import (
	"fmt"
	"strings"

	"github.com/harper/lifelong-memory/internal/storage"
	"github.com/harper/lifelong-memory/internal/util"
)

// DefaultContextBudget is the token budget when none is configured
const DefaultContextBudget = 2000

// recentSummaryCount is how many recent session summaries context selection
// considers after knowledge entries
const recentSummaryCount = 5

// ProjectContext renders the project's knowledge and recent session
// summaries as markdown, stopping when the token budget is spent. An empty
// string means there is nothing worth injecting.
func ProjectContext(store *storage.Store, projectPath string, budgetTokens int) (string, error) {
	if budgetTokens <= 0 {
		budgetTokens = DefaultContextBudget
	}

	entries, err := store.Knowledge.ListVisible(projectPath, 0)
	if err != nil {
		return "", err
	}
	summaries, err := store.Summaries.RecentForProject(projectPath, recentSummaryCount)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 && len(summaries) == 0 {
		return "", nil
	}

	var lines []string
	spent := 0

	if len(entries) > 0 {
		header := "## Project Knowledge (from previous sessions)\n"
		lines = append(lines, header)
		spent += util.EstimateTokens(header)
		for i := range entries {
			line := fmt.Sprintf("- **[%s]** %s", entries[i].KnowledgeType, entries[i].Content)
			cost := util.EstimateTokens(line)
			if spent+cost > budgetTokens {
				return strings.Join(lines, "\n"), nil
			}
			lines = append(lines, line)
			spent += cost
		}
	}

	if len(summaries) > 0 {
		header := "\n## Recent Sessions\n"
		if spent+util.EstimateTokens(header) > budgetTokens {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, header)
		spent += util.EstimateTokens(header)
		for i := range summaries {
			line := fmt.Sprintf("- (%s) %s", summaries[i].Outcome, util.Truncate(summaries[i].SummaryText, 240))
			cost := util.EstimateTokens(line)
			if spent+cost > budgetTokens {
				break
			}
			lines = append(lines, line)
			spent += cost
		}
	}

	return strings.Join(lines, "\n"), nil
}

package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/tasknest/core/internal/domain/entities"
)

// Canned responses for the edge cases the engine must not fail on.
const (
	ClearScheduleTip = "Your schedule is clear! It's a great time to start a new project in your 'Learning' group."
	GenericTip       = "Keep up the great work!"
)

// highPriorityKeywords mark a task as urgent when found in its title or
// description.
var highPriorityKeywords = []string{
	"finish", "submit", "deadline", "urgent", "important", "review", "bill",
}

// categoryTips map the well-known seed groups to canned advice. Any other
// dominant category falls back to GenericTip.
var categoryTips = map[string]string{
	"Work":     "Focus on deep work sessions for your professional projects.",
	"Personal": "Don't forget to balance your productivity with self-care.",
	"Fitness":  "Physical activity boosts mental clarity. Keep moving!",
	"Learning": "Consistency is key to mastering new skills. Spend 15 minutes on this today.",
	"Shopping": "Try to batch your errands to save time and energy.",
}

// HeuristicEngine scores open tasks by keyword and category weight, then
// recommends the highest-scoring one together with advice for the dominant
// category. Purely local, no I/O.
type HeuristicEngine struct{}

// NewHeuristicEngine creates the default suggestion engine.
func NewHeuristicEngine() *HeuristicEngine {
	return &HeuristicEngine{}
}

func (e *HeuristicEngine) Name() string {
	return "Category-Aware Heuristic Stub v2.0"
}

func (e *HeuristicEngine) Suggest(_ context.Context, tasks []*entities.Task) (string, error) {
	if len(tasks) == 0 {
		return ClearScheduleTip, nil
	}

	type scored struct {
		score int
		title string
	}

	var top scored
	categoryCounts := map[string]int{}
	categoryOrder := []string{}

	for i, task := range tasks {
		score := 0

		content := task.SearchText()
		for _, word := range highPriorityKeywords {
			if strings.Contains(content, word) {
				score += 5
				break
			}
		}

		groupName := task.GroupName()
		if groupName == "Work" || groupName == "Learning" {
			score += 2
		}

		if _, seen := categoryCounts[groupName]; !seen {
			categoryOrder = append(categoryOrder, groupName)
		}
		categoryCounts[groupName]++

		// Ties keep the earlier task, so the pick is deterministic.
		if i == 0 || score > top.score {
			top = scored{score: score, title: task.Title}
		}
	}

	dominant := categoryOrder[0]
	for _, cat := range categoryOrder {
		if categoryCounts[cat] > categoryCounts[dominant] {
			dominant = cat
		}
	}

	catTip, ok := categoryTips[dominant]
	if !ok {
		catTip = GenericTip
	}

	return fmt.Sprintf(
		"AI Suggestion: Based on your %s focus, %s I recommend starting with '%s' as it appears most critical.",
		dominant, catTip, top.title,
	), nil
}

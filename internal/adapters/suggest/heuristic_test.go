package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/core/internal/domain/entities"
)

func newTask(title, description, group string) *entities.Task {
	task := &entities.Task{Title: title}
	if description != "" {
		task.Description = &description
	}
	if group != "" {
		task.Group = &entities.Group{Name: group}
	}
	return task
}

func TestHeuristic_EmptySchedule(t *testing.T) {
	engine := NewHeuristicEngine()

	tip, err := engine.Suggest(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, ClearScheduleTip, tip)
}

func TestHeuristic_KeywordPicksHeadline(t *testing.T) {
	engine := NewHeuristicEngine()

	tasks := []*entities.Task{
		newTask("Water the plants", "", "Personal"),
		newTask("Pay electricity bill", "Deadline is today!", "Personal"),
		newTask("Tidy the desk", "", "Personal"),
	}

	tip, err := engine.Suggest(context.Background(), tasks)
	require.NoError(t, err)
	assert.Contains(t, tip, "'Pay electricity bill'")
	assert.Contains(t, tip, "Personal focus")
	assert.Contains(t, tip, "self-care")
}

func TestHeuristic_CategoryWeightBreaksKeywordTie(t *testing.T) {
	engine := NewHeuristicEngine()

	// Both carry a keyword, but the Work task gets the category bonus.
	tasks := []*entities.Task{
		newTask("Submit tax return", "", "Personal"),
		newTask("Submit project report", "", "Work"),
	}

	tip, err := engine.Suggest(context.Background(), tasks)
	require.NoError(t, err)
	assert.Contains(t, tip, "'Submit project report'")
}

func TestHeuristic_DominantCategoryTip(t *testing.T) {
	engine := NewHeuristicEngine()

	tasks := []*entities.Task{
		newTask("Read chapter 3", "", "Learning"),
		newTask("Practice katas", "", "Learning"),
		newTask("Buy milk", "", "Shopping"),
	}

	tip, err := engine.Suggest(context.Background(), tasks)
	require.NoError(t, err)
	assert.Contains(t, tip, "Learning focus")
	assert.Contains(t, tip, "Consistency is key")
}

func TestHeuristic_UnknownCategoryFallsBackToGenericTip(t *testing.T) {
	engine := NewHeuristicEngine()

	tasks := []*entities.Task{
		newTask("Practice scales", "", "Music"),
		newTask("Tune the guitar", "", "Music"),
	}

	tip, err := engine.Suggest(context.Background(), tasks)
	require.NoError(t, err)
	assert.Contains(t, tip, "Music focus")
	assert.Contains(t, tip, GenericTip)
}

func TestHeuristic_MissingGroupLabelsAsGeneral(t *testing.T) {
	engine := NewHeuristicEngine()

	tasks := []*entities.Task{
		newTask("Do the thing", "", ""),
	}

	tip, err := engine.Suggest(context.Background(), tasks)
	require.NoError(t, err)
	assert.Contains(t, tip, "General focus")
	assert.Contains(t, tip, GenericTip)
}

func TestHeuristic_TieKeepsFirstTask(t *testing.T) {
	engine := NewHeuristicEngine()

	tasks := []*entities.Task{
		newTask("Urgent call", "", "Personal"),
		newTask("Urgent email", "", "Personal"),
	}

	tip, err := engine.Suggest(context.Background(), tasks)
	require.NoError(t, err)
	assert.Contains(t, tip, "'Urgent call'")
}

func TestHeuristic_Name(t *testing.T) {
	engine := NewHeuristicEngine()
	assert.Equal(t, "Category-Aware Heuristic Stub v2.0", engine.Name())
}

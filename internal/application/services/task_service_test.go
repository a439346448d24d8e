package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

func newTaskService(t *testing.T) (*TaskService, *fakeTaskRepo, *fakeGroupRepo, *fakeSuggestionCache) {
	t.Helper()
	taskRepo := newFakeTaskRepo()
	groupRepo := newFakeGroupRepo(taskRepo)
	cache := newFakeSuggestionCache()
	return NewTaskService(taskRepo, groupRepo, cache, testLogger(t)), taskRepo, groupRepo, cache
}

func makeGroup(t *testing.T, groupRepo *fakeGroupRepo, ownerID int64, name string) *entities.Group {
	t.Helper()
	group, err := groupRepo.Create(context.Background(), &entities.Group{Name: name, UserID: ownerID})
	require.NoError(t, err)
	return group
}

func TestTaskService_CreateInCallerOwnedGroup(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")

	desc := "  Follow up on the invoice.  "
	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:       "  Email client  ",
		Description: &desc,
		GroupID:     group.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Email client", task.Title)
	require.NotNil(t, task.Description)
	assert.Equal(t, "Follow up on the invoice.", *task.Description)
	assert.Equal(t, int64(1), task.UserID)
	assert.Equal(t, group.ID, task.GroupID)
	require.NotNil(t, task.Group)
	assert.Equal(t, "Work", task.Group.Name)
}

func TestTaskService_CreateRequiresOwnedGroup(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	otherGroup := makeGroup(t, groupRepo, 2, "Work")

	_, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:   "Sneaky task",
		GroupID: otherGroup.ID,
	})
	assert.ErrorIs(t, err, entities.ErrGroupNotFound)
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")

	_, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:   "   ",
		GroupID: group.ID,
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:   strings.Repeat("x", 201),
		GroupID: group.ID,
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	longDesc := strings.Repeat("x", 1001)
	_, err = svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:       "Valid",
		Description: &longDesc,
		GroupID:     group.ID,
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	// A blank description is stored as absent.
	blank := "   "
	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:       "Valid",
		Description: &blank,
		GroupID:     group.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, task.Description)
}

// Length limits count characters, not bytes, so multibyte text within the
// limit passes even when its UTF-8 encoding is longer.
func TestTaskService_ValidationCountsRunes(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")

	title := strings.Repeat("é", 200)
	desc := strings.Repeat("ü", 1000)
	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:       title,
		Description: &desc,
		GroupID:     group.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, title, task.Title)

	over := strings.Repeat("é", 201)
	_, err = svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:   over,
		GroupID: group.ID,
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	overDesc := strings.Repeat("ü", 1001)
	_, err = svc.Create(context.Background(), 1, ports.CreateTaskRequest{
		Title:       "Valid",
		Description: &overDesc,
		GroupID:     group.ID,
	})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestTaskService_CreateDuplicateTitleInGroup(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")
	other := makeGroup(t, groupRepo, 1, "Personal")

	_, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: group.ID})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: group.ID})
	assert.ErrorIs(t, err, entities.ErrDuplicateTaskTitle)

	// Same title in another group is fine.
	_, err = svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: other.ID})
	assert.NoError(t, err)
}

func TestTaskService_UpdatePartial(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")

	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: group.ID})
	require.NoError(t, err)

	completed := true
	updated, err := svc.Update(context.Background(), task.ID, 1, ports.UpdateTaskRequest{IsCompleted: &completed})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Email client", updated.Title)
	assert.Equal(t, group.ID, updated.GroupID)
}

func TestTaskService_UpdateEmptyChangesetIsNoOp(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")

	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: group.ID})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), task.ID, 1, ports.UpdateTaskRequest{})
	require.NoError(t, err)
	assert.Equal(t, task.ID, updated.ID)
	assert.Nil(t, updated.UpdatedAt)
}

func TestTaskService_UpdateMoveChecksDestinationOwnership(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")
	foreign := makeGroup(t, groupRepo, 2, "Work")

	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: group.ID})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), task.ID, 1, ports.UpdateTaskRequest{GroupID: &foreign.ID})
	assert.ErrorIs(t, err, entities.ErrGroupNotFound)
}

func TestTaskService_OwnerScoping(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")

	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: group.ID})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), task.ID, 2)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	err = svc.Delete(context.Background(), task.ID, 2)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	tasks, total, err := svc.List(context.Background(), ports.TaskFilter{OwnerID: 2, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Zero(t, total)
}

func TestTaskService_ListFiltersAndPagination(t *testing.T) {
	svc, _, groupRepo, _ := newTaskService(t)
	work := makeGroup(t, groupRepo, 1, "Work")
	personal := makeGroup(t, groupRepo, 1, "Personal")

	completed := true
	for i, req := range []ports.CreateTaskRequest{
		{Title: "A", GroupID: work.ID},
		{Title: "B", GroupID: work.ID, IsCompleted: true},
		{Title: "C", GroupID: personal.ID},
		{Title: "D", GroupID: personal.ID},
	} {
		_, err := svc.Create(context.Background(), 1, req)
		require.NoError(t, err, "task %d", i)
	}

	tasks, total, err := svc.List(context.Background(), ports.TaskFilter{OwnerID: 1, GroupID: &work.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, tasks, 2)

	tasks, total, err = svc.List(context.Background(), ports.TaskFilter{OwnerID: 1, Completed: &completed, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, "B", tasks[0].Title)

	tasks, total, err = svc.List(context.Background(), ports.TaskFilter{OwnerID: 1, Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, "D", tasks[0].Title)
}

func TestTaskService_WritesInvalidateSuggestionCache(t *testing.T) {
	svc, _, groupRepo, cache := newTaskService(t)
	group := makeGroup(t, groupRepo, 1, "Work")

	task, err := svc.Create(context.Background(), 1, ports.CreateTaskRequest{Title: "Email client", GroupID: group.ID})
	require.NoError(t, err)

	completed := true
	_, err = svc.Update(context.Background(), task.ID, 1, ports.UpdateTaskRequest{IsCompleted: &completed})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), task.ID, 1))

	assert.Equal(t, 3, cache.invalidations)
}

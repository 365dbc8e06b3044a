package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
	"github.com/MohammedKaif037/ToDoImprovised/internal/store"
	"github.com/MohammedKaif037/ToDoImprovised/internal/testutils"
	"github.com/MohammedKaif037/ToDoImprovised/internal/ui/keys"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(testutils.NewMemoryBlobs(nil))
	require.NoError(t, err)
	return s
}

func addTask(t *testing.T, s *store.Store, in models.TaskInput) models.Task {
	t.Helper()
	task, err := s.AddTask(in)
	require.NoError(t, err)
	return task
}

func newTestView(t *testing.T, s *store.Store) *TaskListView {
	t.Helper()
	v := NewTaskListView(s, keys.DefaultKeyMap(), "")
	v.editor.loc = time.UTC
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v.Update(v.loadTasks())
	return v
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// press sends a key and feeds back any view message the resulting command
// produces. Commands from text inputs are not run.
func press(v *TaskListView, msg tea.KeyMsg) tea.Msg {
	_, cmd := v.Update(msg)
	return settle(v, cmd)
}

func settle(v *TaskListView, cmd tea.Cmd) tea.Msg {
	var last tea.Msg
	for cmd != nil {
		msg := cmd()
		last = msg
		switch msg.(type) {
		case tasksChangedMsg, tasksLoadedMsg, storeErrMsg, editorClosedMsg, detailClosedMsg, editTaskMsg:
			_, cmd = v.Update(msg)
		default:
			return msg
		}
	}
	return last
}

func typeText(v *TaskListView, s string) {
	for _, r := range s {
		v.Update(runes(string(r)))
	}
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDateTime(" 2024-03-10 09:30 ", time.UTC)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)))

	got, err = ParseDateTime("2024-03-10", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))

	_, err = ParseDateTime("10/03/2024", time.UTC)
	assert.Error(t, err)
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "", FormatDateTime(nil))

	at := time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)
	assert.Equal(t, "2024-03-10 09:30", FormatDateTime(&at))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"home", "errands"}, ParseTags(" home, errands,,home "))
	assert.Empty(t, ParseTags(""))
}

func TestValidHexColor(t *testing.T) {
	assert.True(t, validHexColor("#3B82F6"))
	assert.True(t, validHexColor("#a1b2c3"))
	assert.False(t, validHexColor("3B82F6"))
	assert.False(t, validHexColor("#3B82F"))
	assert.False(t, validHexColor("#GGGGGG"))
}

func TestCyclePriorityFilter(t *testing.T) {
	p := models.Priority("")
	var seen []models.Priority
	for range 4 {
		p = cyclePriorityFilter(p)
		seen = append(seen, p)
	}
	assert.Equal(t, []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow, ""}, seen)
}

func TestTaskList_ToggleWithSpace(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, models.TaskInput{Title: "Buy milk"})
	v := newTestView(t, s)

	press(v, keySpace)

	got, ok := s.Task(task.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	require.Len(t, v.Visible(), 1)
	assert.True(t, v.Visible()[0].Completed)

	press(v, keySpace)
	got, _ = s.Task(task.ID)
	assert.False(t, got.Completed)
}

func TestTaskList_DeleteNeedsConfirmation(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, models.TaskInput{Title: "Old chore"})
	v := newTestView(t, s)

	press(v, runes("d"))
	assert.True(t, v.confirmingDelete)
	assert.Contains(t, v.View(), "Delete Task?")

	press(v, runes("n"))
	assert.False(t, v.confirmingDelete)
	_, ok := s.Task(task.ID)
	assert.True(t, ok)

	press(v, runes("d"))
	press(v, runes("y"))
	_, ok = s.Task(task.ID)
	assert.False(t, ok)
	assert.Empty(t, v.Visible())
}

func TestTaskList_SearchAndClear(t *testing.T) {
	s := newTestStore(t)
	addTask(t, s, models.TaskInput{Title: "Buy milk"})
	addTask(t, s, models.TaskInput{Title: "Write report"})
	v := newTestView(t, s)

	press(v, runes("/"))
	typeText(v, "MILK")
	press(v, keyEnter)

	require.Len(t, v.Visible(), 1)
	assert.Equal(t, "Buy milk", v.Visible()[0].Title)

	press(v, runes("c"))
	assert.Len(t, v.Visible(), 2)
	assert.False(t, v.Filter().Active())
}

func TestTaskList_PriorityFilter(t *testing.T) {
	s := newTestStore(t)
	addTask(t, s, models.TaskInput{Title: "Urgent", Priority: models.PriorityHigh})
	addTask(t, s, models.TaskInput{Title: "Someday", Priority: models.PriorityLow})
	v := newTestView(t, s)

	press(v, runes("p"))
	assert.Equal(t, models.PriorityHigh, v.Filter().Priority)
	require.Len(t, v.Visible(), 1)
	assert.Equal(t, "Urgent", v.Visible()[0].Title)

	press(v, runes("p"))
	press(v, runes("p"))
	require.Len(t, v.Visible(), 1)
	assert.Equal(t, "Someday", v.Visible()[0].Title)
}

func TestTaskList_TagDropdown(t *testing.T) {
	s := newTestStore(t)
	addTask(t, s, models.TaskInput{Title: "Groceries", Tags: []string{"home"}})
	addTask(t, s, models.TaskInput{Title: "Slides", Tags: []string{"work"}})
	v := newTestView(t, s)

	press(v, runes("f"))
	assert.Equal(t, []string{"work", "home"}, v.dropdownOptions())
	press(v, keyDown)
	press(v, keyEnter)

	assert.Equal(t, "work", v.Filter().Tag)
	require.Len(t, v.Visible(), 1)
	assert.Equal(t, "Slides", v.Visible()[0].Title)
}

func TestTaskList_ProjectDropdownReportsChange(t *testing.T) {
	s := newTestStore(t)
	project, err := s.AddProject(models.ProjectInput{Name: "Home", Color: "#10B981"})
	require.NoError(t, err)
	addTask(t, s, models.TaskInput{Title: "Fix sink", ProjectID: project.ID})
	addTask(t, s, models.TaskInput{Title: "Loose task"})
	v := newTestView(t, s)

	press(v, runes("g"))
	press(v, keyDown)
	msg := press(v, keyEnter)

	assert.Equal(t, ProjectFilterChanged{ProjectID: project.ID}, msg)
	require.Len(t, v.Visible(), 1)
	assert.Equal(t, "Fix sink", v.Visible()[0].Title)

	msg = press(v, runes("c"))
	assert.Equal(t, ProjectFilterChanged{ProjectID: ""}, msg)
	assert.Len(t, v.Visible(), 2)
}

func TestTaskList_ProjectsKey(t *testing.T) {
	v := newTestView(t, newTestStore(t))
	assert.Equal(t, ShowProjects{}, press(v, runes("P")))
}

func TestEditor_CreatesTask(t *testing.T) {
	s := newTestStore(t)
	v := newTestView(t, s)

	press(v, runes("n"))
	require.True(t, v.editing)
	typeText(v, "Buy milk")
	press(v, keyTab) // description
	press(v, keyTab) // priority
	press(v, tea.KeyMsg{Type: tea.KeyRight})
	press(v, keyTab) // project
	press(v, keyTab) // due
	typeText(v, "2024-03-11 08:00")
	press(v, keyTab) // reminder
	typeText(v, "2024-03-11 07:45")
	press(v, keyTab) // tags
	typeText(v, "home, errands, home")
	press(v, keySave)

	assert.False(t, v.editing)
	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	got := tasks[0]
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"home", "errands"}, got.Tags)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)))
	require.NotNil(t, got.Reminder)
	assert.True(t, got.Reminder.Equal(time.Date(2024, 3, 11, 7, 45, 0, 0, time.UTC)))
	assert.Equal(t, got.ID, v.Visible()[v.cursor].ID)
}

func TestEditor_RejectsInvalidInput(t *testing.T) {
	s := newTestStore(t)
	v := newTestView(t, s)

	press(v, runes("n"))
	press(v, keySave)
	assert.True(t, v.editing)
	assert.Equal(t, "Title is required", v.editor.err)

	typeText(v, "Plan trip")
	for range 4 {
		press(v, keyTab)
	}
	typeText(v, "tomorrow")
	press(v, keySave)

	assert.True(t, v.editing)
	assert.Contains(t, v.editor.err, "Due")
	assert.Empty(t, s.Tasks())

	press(v, keyEsc)
	assert.False(t, v.editing)
	assert.Empty(t, s.Tasks())
}

func TestEditor_EditKeepsSubtasks(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, models.TaskInput{Title: "Release", Priority: models.PriorityLow})
	require.NoError(t, s.AddSubtask(task.ID, "tag build"))
	v := newTestView(t, s)

	press(v, runes("e"))
	require.True(t, v.editing)
	typeText(v, " v2")
	press(v, keySave)

	got, ok := s.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Release v2", got.Title)
	assert.Equal(t, models.PriorityLow, got.Priority)
	assert.Len(t, got.Subtasks, 1)
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
}

func TestEditor_EditKeepsExactTimes(t *testing.T) {
	s := newTestStore(t)
	due := time.Date(2024, 3, 12, 18, 0, 59, 0, time.UTC)
	reminder := time.Date(2024, 3, 11, 7, 45, 30, 500, time.UTC)
	task := addTask(t, s, models.TaskInput{Title: "Dentist", DueDate: &due, Reminder: &reminder})
	v := newTestView(t, s)

	press(v, runes("e"))
	require.True(t, v.editing)
	typeText(v, " checkup")
	press(v, keySave)

	got, ok := s.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Dentist checkup", got.Title)
	require.NotNil(t, got.DueDate)
	require.NotNil(t, got.Reminder)
	assert.True(t, due.Equal(*got.DueDate), "due changed to %s", got.DueDate)
	assert.True(t, reminder.Equal(*got.Reminder), "reminder changed to %s", got.Reminder)
}

func TestEditor_EditedTimeIsReparsed(t *testing.T) {
	s := newTestStore(t)
	reminder := time.Date(2024, 3, 11, 7, 45, 30, 0, time.UTC)
	task := addTask(t, s, models.TaskInput{Title: "Dentist", Reminder: &reminder})
	v := newTestView(t, s)

	press(v, runes("e"))
	v.editor.reminder.SetValue("2024-03-11 08:15")
	press(v, keySave)

	got, _ := s.Task(task.ID)
	require.NotNil(t, got.Reminder)
	assert.True(t, time.Date(2024, 3, 11, 8, 15, 0, 0, time.UTC).Equal(*got.Reminder))
}

func TestDetail_SubtaskLifecycle(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, models.TaskInput{Title: "Move house"})
	v := newTestView(t, s)

	press(v, keyEnter)
	require.True(t, v.viewingTask)

	press(v, runes("a"))
	typeText(v, "book van")
	press(v, keyEnter)

	got, _ := s.Task(task.ID)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, "book van", got.Subtasks[0].Title)
	assert.Contains(t, v.View(), "Subtasks 0/1")

	press(v, keySpace)
	got, _ = s.Task(task.ID)
	assert.True(t, got.Subtasks[0].Completed)
	assert.False(t, got.Completed)

	press(v, runes("x"))
	got, _ = s.Task(task.ID)
	assert.Empty(t, got.Subtasks)

	press(v, keyEsc)
	assert.False(t, v.viewingTask)
}

func TestDetail_BlankSubtaskIgnored(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, models.TaskInput{Title: "Move house"})
	v := newTestView(t, s)

	press(v, keyEnter)
	press(v, runes("a"))
	typeText(v, "   ")
	press(v, keyEnter)

	got, _ := s.Task(task.ID)
	assert.Empty(t, got.Subtasks)
	assert.True(t, v.viewingTask)
}

func TestStoreErrorShownInStatus(t *testing.T) {
	blobs := testutils.NewMemoryBlobs(nil)
	s, err := store.New(blobs)
	require.NoError(t, err)
	task := addTask(t, s, models.TaskInput{Title: "Buy milk"})
	v := newTestView(t, s)

	blobs.FailWrites = true
	press(v, keySpace)

	got, _ := s.Task(task.ID)
	assert.False(t, got.Completed)
	assert.Contains(t, v.status, testutils.ErrBlobWrite.Error())

	view := v.View()
	assert.Contains(t, view, "1 shown • 1 open • 1 total")
	assert.Contains(t, view, "Could not save")
}

func TestStatusBarCounts(t *testing.T) {
	s := newTestStore(t)
	addTask(t, s, models.TaskInput{Title: "Buy milk"})
	addTask(t, s, models.TaskInput{Title: "Walk dog", Completed: true})
	v := newTestView(t, s)

	assert.Contains(t, v.View(), "2 shown • 1 open • 2 total")

	press(v, runes("/"))
	typeText(v, "milk")
	press(v, keyEnter)
	assert.Contains(t, v.View(), "1 shown • 1 open • 2 total")
}

func TestProjectList_CreateProject(t *testing.T) {
	s := newTestStore(t)
	v := NewProjectListView(s, keys.DefaultKeyMap())
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v.Update(v.loadProjects())

	v.Update(runes("n"))
	require.True(t, v.creating)
	for _, r := range "Garden" {
		v.Update(runes(string(r)))
	}
	v.Update(keyTab)
	for _, r := range "#zz" {
		v.Update(runes(string(r)))
	}
	_, cmd := v.Update(keySave)
	assert.Nil(t, cmd)
	assert.Contains(t, v.err, "Colour")
	assert.Empty(t, s.Projects())

	v.newColor.SetValue("#10B981")
	_, cmd = v.Update(keySave)
	require.NotNil(t, cmd)
	assert.False(t, v.creating)

	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Garden", projects[0].Name)
	assert.Equal(t, "#10B981", projects[0].Color)
}

func TestProjectList_DefaultColourAndCounts(t *testing.T) {
	s := newTestStore(t)
	project, err := s.AddProject(models.ProjectInput{Name: "Work"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProjectColor, project.Color)
	done := addTask(t, s, models.TaskInput{Title: "a", ProjectID: project.ID})
	addTask(t, s, models.TaskInput{Title: "b", ProjectID: project.ID})
	require.NoError(t, s.ToggleTask(done.ID))

	v := NewProjectListView(s, keys.DefaultKeyMap())
	msg, ok := v.loadProjects().(projectsLoadedMsg)
	require.True(t, ok)
	require.Len(t, msg.items, 1)
	item := msg.items[0].(projectItem)
	assert.Equal(t, 1, item.open)
	assert.Equal(t, 2, item.total)
}

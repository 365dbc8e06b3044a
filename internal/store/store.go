package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

// BlobStore is the persistence port: an opaque string store keyed by name
type BlobStore interface {
	// Get returns the value stored under key and whether it was present
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how task, subtask and project IDs are minted
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store owns the task and project collections. Every mutation goes through
// it and is written back to the blob store before it becomes visible.
//
// Tasks are kept newest first; projects oldest first.
type Store struct {
	mu       sync.RWMutex
	blobs    BlobStore
	tasks    []models.Task
	projects []models.Project
	now      func() time.Time
	newID    func() string
}

// New rehydrates a Store from blobs. Missing keys yield empty collections;
// a blob that cannot be parsed is reported as ErrMalformedState.
func New(blobs BlobStore, opts ...Option) (*Store, error) {
	s := &Store{
		blobs: blobs,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	tasksBlob, ok, err := blobs.Get(TasksKey)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", TasksKey, err)
	}
	if ok {
		if s.tasks, err = decodeTasks(tasksBlob); err != nil {
			return nil, err
		}
	}

	projectsBlob, ok, err := blobs.Get(ProjectsKey)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ProjectsKey, err)
	}
	if ok {
		if s.projects, err = decodeProjects(projectsBlob); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Tasks returns a copy of all tasks, newest first
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Task looks up a task by ID
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// Projects returns a copy of all projects, oldest first
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Project{}, s.projects...)
}

// Project resolves a project ID. Tasks may reference projects that no
// longer resolve; callers treat that as "no project".
func (s *Store) Project(id string) (models.Project, bool) {
	if id == "" {
		return models.Project{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

// AddTask creates a task from in and puts it at the front of the collection
func (s *Store) AddTask(in models.TaskInput) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return models.Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    priority,
		Tags:        models.NormalizeTags(in.Tags),
		CreatedAt:   s.now(),
		ProjectID:   in.ProjectID,
		Subtasks:    []models.Subtask{},
	}
	if in.DueDate != nil {
		d := *in.DueDate
		task.DueDate = &d
	}
	if in.Reminder != nil {
		r := *in.Reminder
		task.Reminder = &r
	}

	tasks := make([]models.Task, 0, len(s.tasks)+1)
	tasks = append(tasks, task)
	tasks = append(tasks, s.tasks...)
	if err := s.commit(tasks, s.projects); err != nil {
		return models.Task{}, err
	}
	return task.Clone(), nil
}

// AddProject creates a project and appends it to the collection
func (s *Store) AddProject(in models.ProjectInput) (models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Project{}, ErrEmptyName
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.DefaultProjectColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project := models.Project{ID: s.newID(), Name: name, Color: color}
	projects := make([]models.Project, 0, len(s.projects)+1)
	projects = append(projects, s.projects...)
	projects = append(projects, project)
	if err := s.commit(s.tasks, projects); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// ToggleTask flips the completion of a task. Its subtasks are untouched.
func (s *Store) ToggleTask(id string) error {
	return s.mutateTask(id, func(t *models.Task) bool {
		t.Completed = !t.Completed
		return true
	})
}

// DeleteTask removes a task together with its subtasks
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	tasks := make([]models.Task, 0, len(s.tasks)-1)
	tasks = append(tasks, s.tasks[:i]...)
	tasks = append(tasks, s.tasks[i+1:]...)
	return s.commit(tasks, s.projects)
}

// UpdateTask replaces the stored task that has updated.ID. The stored ID and
// CreatedAt are kept; tags are normalised and duplicate subtask IDs dropped.
// The title and priority are checked the same way AddTask checks them.
func (s *Store) UpdateTask(updated models.Task) error {
	title := strings.TrimSpace(updated.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	priority := updated.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}

	return s.mutateTask(updated.ID, func(t *models.Task) bool {
		next := updated.Clone()
		next.ID = t.ID
		next.CreatedAt = t.CreatedAt
		next.Title = title
		next.Priority = priority
		next.Tags = models.NormalizeTags(next.Tags)
		next.Subtasks = dedupeSubtasks(next.Subtasks)
		*t = next
		return true
	})
}

// AddSubtask appends an open subtask to a task. Blank titles are ignored.
func (s *Store) AddSubtask(taskID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	return s.mutateTask(taskID, func(t *models.Task) bool {
		t.Subtasks = append(t.Subtasks, models.Subtask{
			ID:    s.newID(),
			Title: title,
		})
		return true
	})
}

// ToggleSubtask flips the completion of one subtask
func (s *Store) ToggleSubtask(taskID, subtaskID string) error {
	return s.mutateTask(taskID, func(t *models.Task) bool {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
				return true
			}
		}
		return false
	})
}

// DeleteSubtask removes one subtask from a task
func (s *Store) DeleteSubtask(taskID, subtaskID string) error {
	return s.mutateTask(taskID, func(t *models.Task) bool {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks = append(t.Subtasks[:i:i], t.Subtasks[i+1:]...)
				return true
			}
		}
		return false
	})
}

// mutateTask applies fn to a copy of the task with the given ID and commits
// the result. Unknown IDs, and fn returning false, leave state untouched.
func (s *Store) mutateTask(id string, fn func(*models.Task) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	task := s.tasks[i].Clone()
	if !fn(&task) {
		return nil
	}

	tasks := append([]models.Task{}, s.tasks...)
	tasks[i] = task
	return s.commit(tasks, s.projects)
}

// commit serialises both collections and swaps them in once written
func (s *Store) commit(tasks []models.Task, projects []models.Project) error {
	tasksBlob, err := encodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", TasksKey, err)
	}
	projectsBlob, err := encodeProjects(projects)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", ProjectsKey, err)
	}
	if err := s.blobs.Set(TasksKey, tasksBlob); err != nil {
		return fmt.Errorf("saving %s: %w", TasksKey, err)
	}
	if err := s.blobs.Set(ProjectsKey, projectsBlob); err != nil {
		return fmt.Errorf("saving %s: %w", ProjectsKey, err)
	}

	s.tasks = tasks
	s.projects = projects
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func dedupeSubtasks(subtasks []models.Subtask) []models.Subtask {
	out := make([]models.Subtask, 0, len(subtasks))
	seen := make(map[string]struct{}, len(subtasks))
	for _, st := range subtasks {
		if _, ok := seen[st.ID]; ok {
			continue
		}
		seen[st.ID] = struct{}{}
		out = append(out, st)
	}
	return out
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

// Keys under which the collections live in the blob store
const (
	TasksKey    = "tasks"
	ProjectsKey = "projects"
)

func encodeTasks(tasks []models.Task) (string, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeProjects(projects []models.Project) (string, error) {
	if projects == nil {
		projects = []models.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeTasks parses the tasks blob. Timestamps come back as time values;
// tasks written before subtasks or tags existed get empty slices.
func decodeTasks(blob string) ([]models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal([]byte(blob), &tasks); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedState, TasksKey, err)
	}
	for i := range tasks {
		if tasks[i].Subtasks == nil {
			tasks[i].Subtasks = []models.Subtask{}
		}
		if tasks[i].Tags == nil {
			tasks[i].Tags = []string{}
		}
	}
	return tasks, nil
}

func decodeProjects(blob string) ([]models.Project, error) {
	var projects []models.Project
	if err := json.Unmarshal([]byte(blob), &projects); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedState, ProjectsKey, err)
	}
	return projects, nil
}

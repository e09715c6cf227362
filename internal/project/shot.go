package project

import (
	"fmt"

	"shotmaster/internal/fstree"
	"shotmaster/internal/logging"
	"shotmaster/internal/media"
	"shotmaster/internal/providers"
	"shotmaster/internal/sidecar"
	"shotmaster/internal/tasks"
)

// ShotStates is the ordered shot pipeline. A missing shot_state field
// reads as the first entry.
var ShotStates = []string{"todo", "image", "video", "lipsync", "done"}

func shotStateIndex(state string) int {
	for i, s := range ShotStates {
		if s == state {
			return i
		}
	}
	return -1
}

// Tag vocabulary of the results folder. The exclusive tags mark at most
// one image each; ref_frame may mark several.
var (
	resultExclusiveTags = []string{"picked", "start_frame", "end_frame", "motion_ref"}
	resultMultiTags     = []string{"ref_frame"}
)

// TagPicked marks the image chosen as the shot's source frame.
const TagPicked = "picked"

// Shot is one folder under a scene with four fixed media folders and
// the outstanding generation tasks tracked in its sidecar.
type Shot struct {
	*fstree.Folder

	scene *Scene
	doc   *sidecar.Document

	results  *media.Folder
	genVideo *media.Folder
	refVideo *media.Folder
	audio    *media.Folder

	tasks []*tasks.Task
}

func newShot(s *Scene, name string) *Shot {
	shot := &Shot{
		Folder: fstree.NewFolder(s.Store(), s.Dir()+"/"+name),
		scene:  s,
	}
	fstree.Attach(s.Folder, shot)
	return shot
}

// Load opens shotinfo.json, builds the four media folders, and
// reconstructs task handles from the sidecar's tasks map.
func (sh *Shot) Load() error {
	p := sh.scene.project
	sh.doc = sidecar.Open(sh.Store(), sh.Dir(), "shotinfo.json", nil, p.log)

	// Reloading replaces the media folders, so drop the old nodes first.
	for _, old := range []*media.Folder{sh.results, sh.genVideo, sh.refVideo, sh.audio} {
		if old != nil {
			fstree.Detach(old)
		}
	}

	folders := []struct {
		dest      **media.Folder
		name      string
		exclusive []string
		multi     []string
	}{
		{&sh.results, "results", resultExclusiveTags, resultMultiTags},
		{&sh.genVideo, "genVideo", nil, nil},
		{&sh.refVideo, "refVideo", nil, nil},
		{&sh.audio, "audio", nil, nil},
	}
	for _, def := range folders {
		folder, err := media.NewFolder(sh.Folder, media.Config{
			Name:          def.name,
			ExclusiveTags: def.exclusive,
			MultiTags:     def.multi,
			Notifier:      p.notifier,
			Logger:        p.log,
			Client:        p.client,
		})
		if err != nil {
			return fmt.Errorf("shot %s: media folder %s: %w", sh.Name(), def.name, err)
		}
		if err := folder.Load(); err != nil {
			p.log.Error("loading media folder failed",
				logging.String(logging.FieldShot, sh.Name()),
				logging.String("folder", def.name),
				logging.Error(err))
		}
		*def.dest = folder
	}

	sh.tasks = nil
	if taskMap, ok := sh.doc.Get("tasks").(map[string]any); ok {
		for id := range taskMap {
			sh.tasks = append(sh.tasks, sh.newTask(id))
		}
	}
	return nil
}

func (sh *Shot) newTask(id string) *tasks.Task {
	p := sh.scene.project
	return tasks.New(id, sh.doc, p.provider, sh.genVideo, p.notifier, p.log)
}

// Sidecar returns the shotinfo.json document.
func (sh *Shot) Sidecar() *sidecar.Document { return sh.doc }

func (sh *Shot) Scene() *Scene { return sh.scene }

// Results holds generated still frames.
func (sh *Shot) Results() *media.Folder { return sh.results }

// GenVideo holds downloaded generation results.
func (sh *Shot) GenVideo() *media.Folder { return sh.genVideo }

// RefVideo holds reference footage.
func (sh *Shot) RefVideo() *media.Folder { return sh.refVideo }

// Audio holds the shot's audio takes.
func (sh *Shot) Audio() *media.Folder { return sh.audio }

// State returns the shot's pipeline state, defaulting to the first.
func (sh *Shot) State() string {
	if state := sh.doc.GetString("shot_state"); state != "" {
		return state
	}
	return ShotStates[0]
}

// SetState persists the pipeline state. Unknown states are rejected.
func (sh *Shot) SetState(state string) error {
	if shotStateIndex(state) == -1 {
		return fmt.Errorf("unknown shot state %q", state)
	}
	sh.doc.Set("shot_state", state)
	return nil
}

// PickedImage returns the result frame tagged picked, or nil.
func (sh *Shot) PickedImage() *media.Item {
	return sh.results.FirstWithTag(TagPicked)
}

// Tasks returns the live task handles.
func (sh *Shot) Tasks() []*tasks.Task { return sh.tasks }

// TaskByID returns the task with the given provider id, or nil.
func (sh *Shot) TaskByID(id string) *tasks.Task {
	for _, t := range sh.tasks {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// AddTask records a submitted generation request in the sidecar and
// returns its handle. Submitting an id twice returns the existing
// handle with its fields refreshed.
func (sh *Shot) AddTask(id string, fields map[string]any) *tasks.Task {
	if existing := sh.TaskByID(id); existing != nil {
		existing.Update(fields)
		return existing
	}
	task := sh.newTask(id)
	if fields == nil {
		fields = map[string]any{}
	}
	if _, ok := fields["status"]; !ok {
		fields["status"] = string(providers.StateSubmitted)
	}
	task.Update(fields)
	sh.tasks = append(sh.tasks, task)
	return task
}

// RemoveTask drops the task from the shot and its sidecar entry. An
// in-flight polling loop is not cancelled.
func (sh *Shot) RemoveTask(task *tasks.Task) {
	task.RemoveFromSidecar()
	kept := sh.tasks[:0]
	for _, t := range sh.tasks {
		if t != task {
			kept = append(kept, t)
		}
	}
	sh.tasks = kept
}

// RemoveTasksByStatus clears every task currently in the given state
// and returns how many were removed.
func (sh *Shot) RemoveTasksByStatus(state providers.State) int {
	var doomed []*tasks.Task
	for _, t := range sh.tasks {
		if t.Status() == state {
			doomed = append(doomed, t)
		}
	}
	for _, t := range doomed {
		sh.RemoveTask(t)
	}
	return len(doomed)
}

// Delete removes the shot directory recursively and unlinks it from
// the scene.
func (sh *Shot) Delete() error {
	if err := sh.Store().RemoveAll(sh.Dir()); err != nil {
		return fmt.Errorf("delete shot %s: %w", sh.Name(), err)
	}
	kept := sh.scene.shots[:0]
	for _, s := range sh.scene.shots {
		if s != sh {
			kept = append(kept, s)
		}
	}
	sh.scene.shots = kept
	fstree.Detach(sh)
	return nil
}

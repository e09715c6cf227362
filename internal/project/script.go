package project

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"shotmaster/internal/storage"
)

// ScriptFileName is the project script at the root.
const ScriptFileName = "script.txt"

// Scene headers are short SC_ lines on their own line.
var sceneHeaderRe = regexp.MustCompile(`(?m)^SC_[^\n]{1,32}$`)

// Script is the project screenplay, split into per-scene chunks on
// SC_ header lines. The chunk under the empty key is any text before
// the first header.
type Script struct {
	project *Project
	store   *storage.Store
	dir     string

	text   string
	scenes map[string]string
}

func newScript(p *Project) *Script {
	return &Script{
		project: p,
		store:   p.Store(),
		dir:     p.Dir(),
		scenes:  map[string]string{},
	}
}

func (sc *Script) reset() {
	sc.text = ""
	sc.scenes = map[string]string{}
}

// Load reads script.txt, normalizes line endings, and splits scenes.
// A missing file is an empty script, not an error.
func (sc *Script) Load() error {
	text, err := sc.store.ReadText(sc.dir, ScriptFileName)
	if err != nil {
		if storage.IsNotFound(err) {
			sc.setText("")
			return nil
		}
		return fmt.Errorf("load script: %w", err)
	}
	sc.setText(strings.ReplaceAll(text, "\r\n", "\n"))
	return nil
}

// Save writes the joined script text back to disk.
func (sc *Script) Save() error {
	return sc.store.WriteText(sc.dir, ScriptFileName, sc.text)
}

// Text returns the full script text.
func (sc *Script) Text() string { return sc.text }

// SetText replaces the script and re-splits scenes.
func (sc *Script) SetText(text string) { sc.setText(text) }

func (sc *Script) setText(text string) {
	sc.text = text
	sc.split()
}

func (sc *Script) split() {
	sc.scenes = map[string]string{}

	matches := sceneHeaderRe.FindAllStringIndex(sc.text, -1)
	if len(matches) == 0 {
		sc.scenes[""] = sc.text
		return
	}
	if matches[0][0] > 0 {
		sc.scenes[""] = sc.text[:matches[0][0]]
	}
	for i, match := range matches {
		header := sc.text[match[0]:match[1]]
		end := len(sc.text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sc.scenes[header] = sc.text[match[0]:end]
	}
}

// SortedKeys returns the scene headers in ascending order, including
// the empty pre-header key when present.
func (sc *Script) SortedKeys() []string {
	keys := make([]string, 0, len(sc.scenes))
	for key := range sc.scenes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SceneText returns the chunk for one header, empty when absent.
func (sc *Script) SceneText(key string) string { return sc.scenes[key] }

// SetSceneText replaces one scene's chunk and rebuilds the full text
// from the sorted chunks.
func (sc *Script) SetSceneText(key, text string) {
	sc.scenes[key] = text
	var joined strings.Builder
	for _, k := range sc.SortedKeys() {
		joined.WriteString(sc.scenes[k])
	}
	sc.setText(joined.String())
}

// CreateScenes materializes a project scene per header, storing each
// chunk as the scene's script text. The pre-header chunk is skipped.
func (sc *Script) CreateScenes() error {
	for _, key := range sc.SortedKeys() {
		if key == "" {
			continue
		}
		scene, err := sc.project.CreateScene(key)
		if err != nil {
			return fmt.Errorf("create scene %s: %w", key, err)
		}
		scene.SetScript(sc.scenes[key])
	}
	return nil
}

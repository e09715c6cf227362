package main

import (
	"fmt"
	"strings"

	"shotmaster/internal/media"
	"shotmaster/internal/project"
)

func findScene(p *project.Project, name string) (*project.Scene, error) {
	scene := p.SceneByName(name)
	if scene == nil {
		var names []string
		for _, s := range p.Scenes() {
			names = append(names, s.Name())
		}
		return nil, fmt.Errorf("scene %q not found (have: %s)", name, strings.Join(names, ", "))
	}
	return scene, nil
}

func findShot(p *project.Project, sceneName, shotName string) (*project.Shot, error) {
	scene, err := findScene(p, sceneName)
	if err != nil {
		return nil, err
	}
	shot := scene.ShotByName(shotName)
	if shot == nil {
		var names []string
		for _, s := range scene.Shots() {
			names = append(names, s.Name())
		}
		return nil, fmt.Errorf("shot %q not found in %s (have: %s)", shotName, sceneName, strings.Join(names, ", "))
	}
	return shot, nil
}

func mediaFolder(shot *project.Shot, name string) (*media.Folder, error) {
	switch name {
	case "results":
		return shot.Results(), nil
	case "genVideo":
		return shot.GenVideo(), nil
	case "refVideo":
		return shot.RefVideo(), nil
	case "audio":
		return shot.Audio(), nil
	default:
		return nil, fmt.Errorf("unknown media folder %q (results, genVideo, refVideo, audio)", name)
	}
}

package plan

import (
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	apperrors "github.com/kbukum/flowkernel/errors"
)

// Parse decodes a YAML or JSON pipeline document. The result is not
// validated.
func Parse(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, apperrors.InvalidPipeline("malformed pipeline document").WithCause(err)
	}
	return &p, nil
}

// LoadFile reads a pipeline document from path. An unnamed pipeline takes
// the file's base name.
func LoadFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("pipeline file", path).WithCause(err)
		}
		return nil, apperrors.Internal(err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// PipelineLoader loads pipeline definitions by name.
type PipelineLoader interface {
	Load(name string) (*Pipeline, error)
}

// FilePipelineLoader loads pipelines from YAML or JSON files on disk.
type FilePipelineLoader struct {
	dirs []string
}

// NewFilePipelineLoader creates a loader that searches dirs in order.
func NewFilePipelineLoader(dirs ...string) *FilePipelineLoader {
	return &FilePipelineLoader{dirs: dirs}
}

var pipelineExts = []string{".yaml", ".yml", ".json"}

// Load looks for {name}.yaml, {name}.yml or {name}.json directly in each
// directory, then one level of subdirectories below it. The first file that
// parses wins.
func (l *FilePipelineLoader) Load(name string) (*Pipeline, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, apperrors.InvalidInput("name", "pipeline name must be a plain file name")
	}
	for _, dir := range l.dirs {
		for _, ext := range pipelineExts {
			if p, err := LoadFile(filepath.Join(dir, name+ext)); err == nil {
				return p, nil
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			for _, match := range matches {
				if p, err := LoadFile(match); err == nil {
					return p, nil
				}
			}
		}
	}
	return nil, apperrors.NotFound("pipeline", name).WithDetail("dirs", l.dirs)
}

// Names lists the pipeline names available directly in the loader's
// directories, in search order without duplicates.
func (l *FilePipelineLoader) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if e.IsDir() || !isPipelineExt(ext) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ext)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

func isPipelineExt(ext string) bool {
	for _, e := range pipelineExts {
		if e == ext {
			return true
		}
	}
	return false
}

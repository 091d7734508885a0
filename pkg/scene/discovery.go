package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// BuiltinGroup is the group every built-in scene belongs to
const BuiltinGroup = "Built-in Scenes"

// ScriptExt is the file extension of scene scripts
const ScriptExt = ".zy"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // Display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "script"
	FilePath    string `json:"filePath"`    // Path to the script (script type only)
	Variant     string `json:"variant"`     // Variant name (optional)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ListScriptScenes scans dir for scene scripts. A missing directory yields
// an empty list.
func ListScriptScenes(dir string, logger core.Logger) ([]SceneInfo, error) {
	if logger == nil {
		logger = core.DiscardLogger{}
	}
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+ScriptExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseScriptMetadata(filePath)
		if err != nil {
			logger.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ParseScriptMetadata extracts metadata from the leading comment block of a
// scene script:
//
//	; Scene: Glass Spheres
//	; Variant: Low Angle
//	; Description: Two glass spheres over a checkered floor
//	; Group: Examples
func ParseScriptMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:          "script:" + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Scripts",
		Type:        "script",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ";") {
			break
		}

		content := strings.TrimSpace(strings.TrimLeft(line, ";"))
		key, value, ok := strings.Cut(content, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Scene":
			info.Name = value
		case "Variant":
			info.Variant = value
		case "Description":
			info.Description = value
		case "Group":
			info.Group = value
		}
	}

	if info.Variant != "" {
		info.DisplayName = fmt.Sprintf("%s - %s", info.Name, info.Variant)
	} else {
		info.DisplayName = info.Name
	}
	return info, scanner.Err()
}

// ListAllScenes returns the built-in scenes followed by the scripts in dir,
// grouped by category. Built-ins come first, other groups alphabetically.
func ListAllScenes(dir string, logger core.Logger) ([]SceneGroup, error) {
	scripts, err := ListScriptScenes(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to list scene scripts: %w", err)
	}

	groups := []SceneGroup{{Name: BuiltinGroup, Scenes: ListBuiltins()}}
	byGroup := make(map[string][]SceneInfo)
	for _, s := range scripts {
		byGroup[s.Group] = append(byGroup[s.Group], s)
	}
	names := make([]string, 0, len(byGroup))
	for name := range byGroup {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == BuiltinGroup {
			groups[0].Scenes = append(groups[0].Scenes, byGroup[name]...)
			continue
		}
		groups = append(groups, SceneGroup{Name: name, Scenes: byGroup[name]})
	}
	return groups, nil
}

// Load resolves a scene reference: a built-in id, or a path to a script
func Load(ref string, logger core.Logger) (*Scene, error) {
	if strings.HasSuffix(ref, ScriptExt) {
		return LoadFile(ref, logger)
	}
	return NewBuiltin(ref)
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

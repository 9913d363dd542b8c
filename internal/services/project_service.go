package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"devion/pkg/devtypes"
)

// projectMarkers are manifest files that identify a project's ecosystem.
var projectMarkers = []string{
	"go.mod", "package.json", "pyproject.toml", "requirements.txt", "setup.py",
	"Cargo.toml", "pom.xml", "build.gradle", "Gemfile", "composer.json",
	"Dockerfile", "docker-compose.yml",
}

// ProjectSummary is the result of analyzing a directory tree.
type ProjectSummary struct {
	ScannedAt      string         `json:"scanned_at"`
	Directory      string         `json:"directory"`
	Folders        int            `json:"folders"`
	Files          int            `json:"files"`
	FileTypes      map[string]int `json:"file_types"`
	ProjectStatus  string         `json:"project_status"`
	ProjectMarkers []string       `json:"project_markers"`
}

// DeployLog is written into the deploy output directory.
type DeployLog struct {
	DeployedAt    string `json:"deployed_at"`
	ProjectPath   string `json:"project_path"`
	OutputPath    string `json:"output_path"`
	Status        string `json:"status"`
	FilesPackaged int    `json:"files_packaged"`
}

// SystemInfo describes the host.
type SystemInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUs      int    `json:"cpus"`
	Hostname  string `json:"hostname"`
	GoVersion string `json:"go_version"`
}

// FolderInfo describes a directory and its direct entries.
type FolderInfo struct {
	Exists bool     `json:"exists"`
	Path   string   `json:"path"`
	Files  []string `json:"files"`
}

// DeployLogName is the file deploy writes.
const DeployLogName = "deploy_log.json"

// ProjectService inspects project directories.
type ProjectService struct {
	now func() time.Time
}

// NewProjectService creates a ProjectService.
func NewProjectService(now func() time.Time) *ProjectService {
	if now == nil {
		now = time.Now
	}
	return &ProjectService{now: now}
}

// Name returns the service name "project".
func (p *ProjectService) Name() string {
	return "project"
}

// Analyze walks root, skipping hidden directories, and counts folders,
// files and file extensions.
func (p *ProjectService) Analyze(root string) (ProjectSummary, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ProjectSummary{}, devtypes.InvalidArgumentf("path %s does not exist", root)
		}
		return ProjectSummary{}, devtypes.WrapIO(err, "failed to stat %s", root)
	}
	if !info.IsDir() {
		return ProjectSummary{}, devtypes.InvalidArgumentf("path %s is not a directory", root)
	}

	summary := ProjectSummary{
		ScannedAt:      p.now().Format(time.RFC3339),
		Directory:      root,
		FileTypes:      map[string]int{},
		ProjectMarkers: []string{},
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			summary.Folders++
			return nil
		}
		summary.Files++
		ext := filepath.Ext(d.Name())
		if ext == "" || ext == d.Name() {
			ext = "no_ext"
		}
		summary.FileTypes[ext]++
		return nil
	})
	if err != nil {
		return ProjectSummary{}, devtypes.WrapIO(err, "failed to walk %s", root)
	}

	for _, marker := range projectMarkers {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			summary.ProjectMarkers = append(summary.ProjectMarkers, marker)
		}
	}

	summary.ProjectStatus = "empty"
	if summary.Files > 0 {
		summary.ProjectStatus = "active"
	}
	return summary, nil
}

// CountTopLevel counts non-hidden direct entries of dir, ignoring the
// names in exclude.
func (p *ProjectService) CountTopLevel(dir string, exclude ...string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, devtypes.WrapIO(err, "failed to list %s", dir)
	}
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	count := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || skip[entry.Name()] {
			continue
		}
		count++
	}
	return count, nil
}

// WriteDeployLog writes log as pretty JSON into dir and returns its path.
func (p *ProjectService) WriteDeployLog(dir string, log DeployLog) (string, error) {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode deploy log: %w", err)
	}
	path := filepath.Join(dir, DeployLogName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", devtypes.WrapIO(err, "failed to write %s", path)
	}
	return path, nil
}

// Folder describes dir and its sorted entries. A missing dir is not an error.
func (p *ProjectService) Folder(dir string) (FolderInfo, error) {
	info := FolderInfo{Path: dir, Files: []string{}}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, devtypes.WrapIO(err, "failed to list %s", dir)
	}
	info.Exists = true
	for _, entry := range entries {
		info.Files = append(info.Files, entry.Name())
	}
	sort.Strings(info.Files)
	return info, nil
}

// System describes the host running Devion.
func (p *ProjectService) System() SystemInfo {
	host, _ := os.Hostname()
	return SystemInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		Hostname:  host,
		GoVersion: runtime.Version(),
	}
}

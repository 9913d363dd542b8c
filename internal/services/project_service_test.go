package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devion/pkg/devtypes"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestProjectService_Analyze(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module x\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "cmd", "tool", "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "README"), "hi\n")
	writeFile(t, filepath.Join(root, ".env"), "A=1\n")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref\n")

	summary, err := NewProjectService(fixedNow).Analyze(root)
	require.NoError(t, err)

	assert.Equal(t, "2026-01-02T03:04:05Z", summary.ScannedAt)
	assert.Equal(t, root, summary.Directory)
	assert.Equal(t, 2, summary.Folders, "cmd and cmd/tool; .git is skipped")
	assert.Equal(t, 5, summary.Files)
	assert.Equal(t, map[string]int{".mod": 1, ".go": 2, "no_ext": 2}, summary.FileTypes)
	assert.Equal(t, "active", summary.ProjectStatus)
	assert.Equal(t, []string{"go.mod"}, summary.ProjectMarkers)
}

func TestProjectService_Analyze_Empty(t *testing.T) {
	summary, err := NewProjectService(fixedNow).Analyze(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "empty", summary.ProjectStatus)
	assert.Zero(t, summary.Files)
	assert.Empty(t, summary.ProjectMarkers)
}

func TestProjectService_Analyze_BadPath(t *testing.T) {
	svc := NewProjectService(fixedNow)

	_, err := svc.Analyze(filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, devtypes.KindInvalidArgument, devtypes.KindOf(err))

	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, "x")
	_, err = svc.Analyze(file)
	assert.Equal(t, devtypes.KindInvalidArgument, devtypes.KindOf(err))
}

func TestProjectService_CountTopLevel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "src", "b.go"), "b")
	writeFile(t, filepath.Join(root, ".hidden"), "h")
	require.NoError(t, os.Mkdir(filepath.Join(root, "dist"), 0o755))

	svc := NewProjectService(fixedNow)
	count, err := svc.CountTopLevel(root, "dist")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = svc.CountTopLevel(root)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestProjectService_WriteDeployLog(t *testing.T) {
	dir := t.TempDir()
	path, err := NewProjectService(fixedNow).WriteDeployLog(dir, DeployLog{
		DeployedAt:    "2026-01-02T03:04:05Z",
		ProjectPath:   "/p",
		OutputPath:    dir,
		Status:        "success",
		FilesPackaged: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DeployLogName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"files_packaged": 3`)
	assert.Contains(t, string(data), `"status": "success"`)
}

func TestProjectService_Folder(t *testing.T) {
	svc := NewProjectService(fixedNow)

	missing, err := svc.Folder(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, missing.Exists)
	assert.Empty(t, missing.Files)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b"), "")
	writeFile(t, filepath.Join(dir, "a"), "")
	info, err := svc.Folder(dir)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, []string{"a", "b"}, info.Files)
}

func TestProjectService_System(t *testing.T) {
	info := NewProjectService(nil).System()
	assert.NotEmpty(t, info.OS)
	assert.NotEmpty(t, info.Arch)
	assert.Positive(t, info.CPUs)
}

package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
)

func writeWorkspace(t *testing.T, root, config string) {
	t.Helper()
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindRootFrom_Found(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeWorkspace(t, root, `{}`)

	found, err := FindRootFrom(root)
	if err != nil {
		t.Fatalf("FindRootFrom() error = %v", err)
	}
	if found != root {
		t.Errorf("FindRootFrom() = %q, want %q", found, root)
	}
}

func TestFindRootFrom_FoundFromSubdir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeWorkspace(t, root, `{}`)

	subdir := filepath.Join(root, "src", "Tests", "bin")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRootFrom(subdir)
	if err != nil {
		t.Fatalf("FindRootFrom() error = %v", err)
	}
	if found != root {
		t.Errorf("FindRootFrom() = %q, want %q", found, root)
	}
}

func TestFindRootFrom_NotFound(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := FindRootFrom(dir)
	if err != ErrNoProjectRoot {
		t.Errorf("FindRootFrom() error = %v, want ErrNoProjectRoot", err)
	}
}

func TestFindRoot_FromProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeWorkspace(t, root, `{}`)
	t.Chdir(root)

	found, err := FindRoot()
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	// Resolve symlinks since t.TempDir can live behind one on some platforms.
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(found)
	if got != want {
		t.Errorf("FindRoot() = %q, want %q", got, want)
	}
}

func TestLoadProjectFrom_Minimal(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeWorkspace(t, root, `{"reports": {"vstest": ["**/*.trx"]}}`)

	proj, err := LoadProjectFrom(root)
	if err != nil {
		t.Fatalf("LoadProjectFrom() error = %v", err)
	}
	if proj.Root != root {
		t.Errorf("Project.Root = %q, want %q", proj.Root, root)
	}
	if proj.ConfigPath != filepath.Join(root, ConfigDirName, ConfigFileName) {
		t.Errorf("Project.ConfigPath = %q", proj.ConfigPath)
	}
	if proj.BaseDir() != root {
		t.Errorf("Project.BaseDir() = %q, want %q", proj.BaseDir(), root)
	}
	if got := proj.Config.Reports.VSTest; len(got) != 1 || got[0] != "**/*.trx" {
		t.Errorf("Reports.VSTest = %v", got)
	}
}

func TestLoadProjectFrom_CustomBaseDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "build"), 0755); err != nil {
		t.Fatal(err)
	}
	writeWorkspace(t, root, `{"base_dir": "build"}`)

	proj, err := LoadProjectFrom(root)
	if err != nil {
		t.Fatalf("LoadProjectFrom() error = %v", err)
	}
	if want := filepath.Join(root, "build"); proj.BaseDir() != want {
		t.Errorf("Project.BaseDir() = %q, want %q", proj.BaseDir(), want)
	}
}

func TestLoadProjectFrom_MissingBaseDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeWorkspace(t, root, `{"base_dir": "nope"}`)

	_, err := LoadProjectFrom(root)
	if err == nil {
		t.Fatal("LoadProjectFrom() expected error for missing base_dir")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %q, want 'does not exist'", err.Error())
	}
	if code := ierrors.GetExitCode(err); code != ierrors.ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", code, ierrors.ExitConfigError)
	}
}

func TestLoadProjectFrom_BaseDirIsFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "file"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	writeWorkspace(t, root, `{"base_dir": "file"}`)

	_, err := LoadProjectFrom(root)
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("LoadProjectFrom() error = %v, want 'not a directory'", err)
	}
}

func TestLoadProjectFrom_InvalidConfig(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeWorkspace(t, root, `{"output": {"format": "xml"}}`)

	_, err := LoadProjectFrom(root)
	if err == nil {
		t.Fatal("LoadProjectFrom() expected error for invalid config")
	}
	var ie *ierrors.ImportError
	if !errors.As(err, &ie) || ie.Kind != ierrors.KindConfig {
		t.Errorf("error = %v, want config ImportError", err)
	}
	if code := ierrors.GetExitCode(err); code != ierrors.ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", code, ierrors.ExitConfigError)
	}
}

func TestLoadProjectFrom_Warnings(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeWorkspace(t, root, `{"targets": {}}`)

	proj, err := LoadProjectFrom(root)
	if err != nil {
		t.Fatalf("LoadProjectFrom() error = %v", err)
	}
	if len(proj.Warnings) != 1 || !strings.Contains(proj.Warnings[0], "targets") {
		t.Errorf("Warnings = %v", proj.Warnings)
	}
}

func TestLoadFile_OutsideConfigDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "ci-import.json")
	if err := os.WriteFile(path, []byte(`{"reports": {"junit": ["*.xml"]}}`), 0644); err != nil {
		t.Fatal(err)
	}

	proj, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if proj.Root != dir {
		t.Errorf("Project.Root = %q, want %q", proj.Root, dir)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("LoadFile() expected error for missing file")
	}
	if code := ierrors.GetExitCode(err); code != ierrors.ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", code, ierrors.ExitConfigError)
	}
}

func TestProject_Resolve(t *testing.T) {
	t.Parallel()
	p := &Project{Root: filepath.FromSlash("/work")}
	tests := []struct {
		in   string
		want string
	}{
		{"", filepath.FromSlash("/work")},
		{"reports", filepath.FromSlash("/work/reports")},
		{filepath.FromSlash("/abs/dir/"), filepath.FromSlash("/abs/dir")},
	}
	for _, tt := range tests {
		if got := p.Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

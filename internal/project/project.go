package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/testimport/internal/config"
	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
)

// Project is a loaded testimport workspace.
type Project struct {
	Root       string
	ConfigPath string
	Config     *config.Config
	Warnings   []string
}

// LoadProject finds and loads the workspace containing the current directory.
func LoadProject() (*Project, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, &ierrors.ImportError{Kind: ierrors.KindConfig, Message: err.Error(), Cause: err}
	}
	return LoadProjectFrom(root)
}

// LoadProjectFrom loads the workspace rooted at root.
func LoadProjectFrom(root string) (*Project, error) {
	return LoadFile(filepath.Join(root, ConfigDirName, ConfigFileName))
}

// LoadFile loads an explicit configuration file. When the file lives in a
// .testimport directory the workspace root is its parent, otherwise the
// directory holding the file.
func LoadFile(configPath string) (*Project, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, ierrors.Wrap(err, fmt.Sprintf("cannot resolve %s", configPath))
	}

	cfg, warnings, err := config.LoadAndValidate(abs)
	if err != nil {
		return nil, &ierrors.ImportError{
			Kind:    ierrors.KindConfig,
			Message: fmt.Sprintf("failed to load configuration: %v", err),
			Cause:   err,
		}
	}

	root := filepath.Dir(abs)
	if filepath.Base(root) == ConfigDirName {
		root = filepath.Dir(root)
	}

	p := &Project{
		Root:       root,
		ConfigPath: abs,
		Config:     cfg,
		Warnings:   warnings,
	}
	if err := validateBaseDir(p.BaseDir()); err != nil {
		return nil, err
	}
	return p, nil
}

// BaseDir returns the absolute directory report patterns are resolved against.
func (p *Project) BaseDir() string {
	return p.Resolve(p.Config.BaseDir)
}

// Resolve makes a configured path absolute relative to the workspace root.
func (p *Project) Resolve(path string) string {
	if path == "" {
		return p.Root
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.Root, path)
}

func validateBaseDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return &ierrors.ImportError{
			Kind:    ierrors.KindConfig,
			Message: fmt.Sprintf("base_dir: directory %q does not exist", dir),
		}
	}
	if err != nil {
		return ierrors.Wrap(err, fmt.Sprintf("base_dir: cannot access %q", dir))
	}
	if !info.IsDir() {
		return &ierrors.ImportError{
			Kind:    ierrors.KindConfig,
			Message: fmt.Sprintf("base_dir: %q is not a directory", dir),
		}
	}
	return nil
}

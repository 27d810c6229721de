// Package installer provisions the Python environment the analysis web app
// runs in: a virtual environment with the fixed dependency manifest, the
// working directories, and the default configuration documents.
package installer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Fatal installer failures. Each aborts the remaining sequence.
var (
	ErrMissingInterpreter  = errors.New("python interpreter not found")
	ErrEnvironmentCreation = errors.New("failed to create virtual environment")
	ErrDependencyInstall   = errors.New("failed to install dependencies")
	ErrSmokeTest           = errors.New("smoke test import failed")
)

// Requirements is the fixed dependency manifest the environment must
// contain for the application to run.
var Requirements = []string{
	"streamlit",
	"requests",
	"aiohttp",
	"beautifulsoup4",
	"jinja2",
	"ddgs",
}

// smokeTestImports are the module names imported after install as a proxy
// for "installation succeeded".
var smokeTestImports = []string{"streamlit", "requests", "aiohttp", "bs4", "jinja2"}

// workingDirs are created during scaffolding. They are plain containers;
// the application defines their contents.
var workingDirs = []string{"saved_images", "used_in_davinci", "cache", "templates"}

const (
	venvDir           = "venv"
	settingsFile      = "settings.json"
	customPromptsFile = "custom_prompts.json"
	requirementsFile  = "requirements.txt"

	pythonDownloadURL = "https://www.python.org/downloads/"
)

// Step statuses reported in the summary.
const (
	StatusCreated = "created"
	StatusReused  = "reused"
	StatusOK      = "ok"
	StatusWarning = "warning"
)

// StepResult records the outcome of one installer step.
type StepResult struct {
	Name   string
	Status string
	Detail string
}

// Installer runs the provisioning sequence in a target directory. Every
// creation step is guarded, so re-running on a provisioned machine performs
// no destructive action and reports what was reused.
type Installer struct {
	// Dir is the installation root. Defaults to the working directory.
	Dir string
	// Out receives the human-readable progress and summary output.
	Out io.Writer
	// In, when set, is read for the final acknowledgment pause.
	In io.Reader
	// SettingsJSON is the default settings document to emit.
	SettingsJSON []byte

	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)

	results []StepResult
}

// New returns an Installer targeting dir.
func New(dir string) *Installer {
	ins := &Installer{
		Dir: dir,
		Out: os.Stdout,
	}
	ins.lookPath = exec.LookPath
	ins.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Dir = ins.Dir
		return cmd.CombinedOutput()
	}
	return ins
}

// Run executes the full sequence and returns the per-step results. The
// first failing step aborts the rest; the returned results cover the steps
// that ran. When In is set, Run pauses for acknowledgment before returning,
// on failure as well as on success.
func (ins *Installer) Run(ctx context.Context) ([]StepResult, error) {
	ins.results = nil
	err := ins.runSteps(ctx)
	if err != nil {
		fmt.Fprintf(ins.Out, "\nInstallation failed: %v\n", err)
	} else {
		ins.printSummary()
	}
	ins.pause()
	return ins.results, err
}

func (ins *Installer) runSteps(ctx context.Context) error {
	python, err := ins.findInterpreter()
	if err != nil {
		return err
	}

	if err := ins.ensureVenv(ctx, python); err != nil {
		return err
	}

	// All remaining python work runs the venv's own interpreter; nothing
	// needs to mutate this process's environment.
	venvPython := ins.venvPython()

	ins.upgradePip(ctx, venvPython)

	if err := ins.installRequirements(ctx, venvPython); err != nil {
		return err
	}

	if err := ins.scaffoldDirectories(); err != nil {
		return err
	}

	if err := ins.emitConfig(settingsFile, ins.settingsDocument()); err != nil {
		return err
	}
	if err := ins.emitConfig(customPromptsFile, []byte("{}")); err != nil {
		return err
	}

	return ins.smokeTest(ctx, venvPython)
}

// findInterpreter locates a Python interpreter on PATH. It runs before any
// filesystem mutation.
func (ins *Installer) findInterpreter() (string, error) {
	for _, name := range []string{"python3", "python"} {
		path, err := ins.lookPath(name)
		if err == nil {
			slog.Info("Found Python interpreter", "path", path)
			ins.record("interpreter check", StatusOK, path)
			return path, nil
		}
	}
	fmt.Fprintf(ins.Out, "Python was not found on PATH.\nDownload it from %s and re-run the installer.\n", pythonDownloadURL)
	return "", ErrMissingInterpreter
}

func (ins *Installer) ensureVenv(ctx context.Context, python string) error {
	path := filepath.Join(ins.Dir, venvDir)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		slog.Info("Virtual environment already exists, reusing", "path", path)
		ins.record("virtual environment", StatusReused, path)
		return nil
	}

	fmt.Fprintf(ins.Out, "Creating virtual environment in %s...\n", path)
	if out, err := ins.run(ctx, python, "-m", "venv", venvDir); err != nil {
		slog.Error("venv creation failed", "error", err, "output", strings.TrimSpace(string(out)))
		return fmt.Errorf("%w: %v", ErrEnvironmentCreation, err)
	}
	ins.record("virtual environment", StatusCreated, path)
	return nil
}

// upgradePip is best-effort: a stale pip still installs the manifest, so a
// failure here only logs a warning.
func (ins *Installer) upgradePip(ctx context.Context, venvPython string) {
	if out, err := ins.run(ctx, venvPython, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		slog.Warn("pip upgrade failed, continuing", "error", err, "output", strings.TrimSpace(string(out)))
		ins.record("pip upgrade", StatusWarning, err.Error())
		return
	}
	ins.record("pip upgrade", StatusOK, "")
}

func (ins *Installer) installRequirements(ctx context.Context, venvPython string) error {
	path := filepath.Join(ins.Dir, requirementsFile)
	manifest := strings.Join(Requirements, "\n") + "\n"

	created, err := writeIfAbsent(path, []byte(manifest))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", requirementsFile, err)
	}
	if created {
		ins.record(requirementsFile, StatusCreated, path)
	} else {
		ins.record(requirementsFile, StatusReused, path)
	}

	fmt.Fprintln(ins.Out, "Installing dependencies...")
	out, err := ins.run(ctx, venvPython, "-m", "pip", "install", "-r", requirementsFile)
	if err != nil {
		slog.Error("dependency install failed", "error", err, "output", strings.TrimSpace(string(out)))
		fmt.Fprintf(ins.Out, "Dependency install failed. Try manually:\n  %s -m pip install -r %s\n", venvPython, requirementsFile)
		return fmt.Errorf("%w: %v", ErrDependencyInstall, err)
	}
	ins.record("dependencies", StatusOK, fmt.Sprintf("%d packages", len(Requirements)))
	return nil
}

func (ins *Installer) scaffoldDirectories() error {
	for _, dir := range workingDirs {
		path := filepath.Join(ins.Dir, dir)
		_, statErr := os.Stat(path)
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if statErr == nil {
			ins.record(dir+"/", StatusReused, "")
		} else {
			ins.record(dir+"/", StatusCreated, "")
		}
	}
	return nil
}

func (ins *Installer) settingsDocument() []byte {
	if len(ins.SettingsJSON) > 0 {
		return ins.SettingsJSON
	}
	return []byte("{}")
}

// emitConfig writes a default document atomically with O_EXCL, so an
// existing file (user edits included) is never overwritten.
func (ins *Installer) emitConfig(name string, content []byte) error {
	path := filepath.Join(ins.Dir, name)
	created, err := writeIfAbsent(path, content)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if created {
		ins.record(name, StatusCreated, path)
	} else {
		ins.record(name, StatusReused, path)
	}
	return nil
}

func (ins *Installer) smokeTest(ctx context.Context, venvPython string) error {
	stmt := "import " + strings.Join(smokeTestImports, ", ")
	if out, err := ins.run(ctx, venvPython, "-c", stmt); err != nil {
		slog.Error("smoke test failed", "error", err, "output", strings.TrimSpace(string(out)))
		return fmt.Errorf("%w: %v", ErrSmokeTest, err)
	}
	ins.record("smoke test", StatusOK, stmt)
	return nil
}

// venvPython returns the venv's interpreter path for the current platform.
func (ins *Installer) venvPython() string {
	return filepath.Join(ins.Dir, venvDir, venvBinDir, venvPythonName)
}

func (ins *Installer) record(name, status, detail string) {
	ins.results = append(ins.results, StepResult{Name: name, Status: status, Detail: detail})
}

func (ins *Installer) printSummary() {
	fmt.Fprintf(ins.Out, "\nInstallation complete!\n")
	for _, r := range ins.results {
		if r.Detail != "" {
			fmt.Fprintf(ins.Out, "  %-20s %-8s %s\n", r.Name, r.Status, r.Detail)
		} else {
			fmt.Fprintf(ins.Out, "  %-20s %s\n", r.Name, r.Status)
		}
	}
	fmt.Fprintf(ins.Out, "\nRun the app with:\n  %s -m streamlit run app.py\n", ins.venvPython())
}

func (ins *Installer) pause() {
	if ins.In == nil {
		return
	}
	fmt.Fprint(ins.Out, "\nPress Enter to finish...")
	_, _ = bufio.NewReader(ins.In).ReadString('\n')
}

// writeIfAbsent creates the file with content unless it already exists.
// It reports whether the file was created.
func writeIfAbsent(path string, content []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return false, err
	}
	return true, nil
}

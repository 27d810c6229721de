//go:build !windows

package installer

const (
	venvBinDir     = "bin"
	venvPythonName = "python"
)

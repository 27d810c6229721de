package installer

const (
	venvBinDir     = "Scripts"
	venvPythonName = "python.exe"
)

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/installer"
)

func newInstallCmd() *cobra.Command {
	var dir string
	var noPause bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Provision the Python analysis environment",
		Long: `Sets up everything the Streamlit analysis app needs in the target
directory: a Python virtual environment with the pinned dependency
manifest, the working directories, and the default configuration files.

Re-running is safe. Existing files and directories are reused and user
edits to settings.json and custom_prompts.json are never overwritten.`,
		Example: `  # Install into the current directory
  textlens install

  # Install into a project directory without the final pause
  textlens install --dir ~/projects/story --no-pause`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ins := installer.New(dir)
			ins.SettingsJSON = config.DefaultSettingsJSON()
			if !noPause {
				ins.In = os.Stdin
			}

			_, err := ins.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Installation directory")
	cmd.Flags().BoolVar(&noPause, "no-pause", false, "Skip the final acknowledgment pause")

	return cmd
}

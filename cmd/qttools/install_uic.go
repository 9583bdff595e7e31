package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/MethodJiao/qttools/pkg/bundle"
	qtlog "github.com/MethodJiao/qttools/pkg/log"
	"github.com/spf13/cobra"
)

var pythonFlag string

var installUICCmd = &cobra.Command{
	Use:   "install-uic",
	Short: "Install the interpreter's pyuic5 as the bundle's uic",
	Long: `Copy the pyuic5 script that sits next to the Python interpreter into
Qt/bin/bin/uic so that Qt tools asking for uic generate Python code.

The interpreter is taken from --python, else python3 or python on PATH.`,
	GroupID: groupCommands,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := currentLayout()
		if err != nil {
			return err
		}
		python := pythonFlag
		if python == "" {
			if python, err = findPython(); err != nil {
				return err
			}
		}
		dst, err := installUIC(python, layout, runtime.GOOS)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", dst)
		return nil
	},
}

func init() {
	installUICCmd.Flags().StringVar(&pythonFlag, "python", "", "Python interpreter whose pyuic5 is installed")
	rootCmd.AddCommand(installUICCmd)
}

func findPython() (string, error) {
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter on PATH; pass --python")
}

// installUIC copies pyuic5 from the interpreter's directory to
// <Qt/bin>/bin/uic and returns the destination.
func installUIC(python string, layout bundle.Layout, goos string) (string, error) {
	src := filepath.Join(filepath.Dir(python), bundle.ExecutableName("pyuic5", goos))
	dstDir := filepath.Join(layout.BinDir(), "bin")
	dst := filepath.Join(dstDir, bundle.ExecutableName("uic", goos))

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dstDir, err)
	}
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	qtlog.Debug("installed uic", "source", src, "destination", dst)
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

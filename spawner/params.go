package spawner

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Params captures everything Start needs to know other than the
// command itself.
type Params struct {
	// Shell is either the absolute path to the shell executable, or
	// a $PATH relative name. Every command is handed to it as one
	// opaque string via its -c flag.
	Shell string

	// WorkingDir is the working directory of the spawned process.
	WorkingDir string

	// ExtraEnv holds KEY=VALUE entries appended to the current
	// process environment for the spawned process.
	ExtraEnv []string
}

const defaultShell = "/bin/sh"

// Validate returns an error if there's a problem in the Params.
func (p *Params) Validate() error {
	p.setDefaults()
	if err := p.validateWorkDir(); err != nil {
		return err
	}
	return errIfNoCommand(p.Shell)
}

func (p *Params) setDefaults() {
	if p.Shell == "" {
		p.Shell = defaultShell
	}
}

func (p *Params) validateWorkDir() (err error) {
	p.WorkingDir, err = filepath.Abs(p.WorkingDir)
	if err != nil {
		return paramErrCaused(err, "bad working dir path")
	}
	var info os.FileInfo
	info, err = os.Stat(p.WorkingDir)
	if err != nil {
		return paramErrCaused(err, "bad working dir stat")
	}
	if !info.IsDir() {
		return paramErr("%q is not a directory that exists", p.WorkingDir)
	}
	return nil
}

func errIfNoCommand(name string) error {
	cmd := exec.Command("/bin/sh", "-c", "command -v "+name)
	if err := cmd.Run(); err != nil {
		return paramErrCaused(err, "shell %q not available", name)
	}
	return nil
}

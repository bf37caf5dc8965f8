package spawner

import (
	"errors"
	"os"
	"os/exec"
	"sync"
)

// Result is the single terminal event of a spawned command.
type Result struct {
	// Code is the exit code; meaningful only when Err is nil.
	// A process killed by a signal reports -1.
	Code int

	// Err is set when the command failed for some reason other than
	// exiting non-zero, e.g. an I/O failure around the process.
	Err error
}

// Handle controls one spawned command.
type Handle interface {
	// Done emits exactly one Result, then nothing else, ever.
	// The channel is buffered; the Result need not be consumed.
	Done() <-chan Result

	// Kill forcibly terminates the subprocess. It is idempotent and
	// best-effort; on an already-exited process it is a no-op.
	Kill()
}

// Start spawns the command under the shell named in Params and
// returns a Handle to it. A synchronous startup failure (bad params,
// unstartable shell) is returned here; everything after a successful
// start arrives as the Handle's one Result.
func Start(p *Params, command string) (Handle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cmd := exec.Command(p.Shell, "-c", command)
	cmd.Dir = p.WorkingDir
	if len(p.ExtraEnv) > 0 {
		cmd.Env = append(os.Environ(), p.ExtraEnv...)
	}
	logger.Printf("start; spawning %q via %s", abbrev(command), p.Shell)
	if err := cmd.Start(); err != nil {
		return nil, paramErrCaused(err, "trying to start %q", abbrev(command))
	}
	h := &procHandle{
		cmd:  cmd,
		done: make(chan Result, 1),
	}
	go h.await(command)
	return h, nil
}

// procHandle implements Handle over an os/exec subprocess.
type procHandle struct {
	cmd  *exec.Cmd
	done chan Result
	kill sync.Once
}

// await collects the subprocess's exit condition and forwards it as
// the handle's single Result.
func (h *procHandle) await(command string) {
	err := h.cmd.Wait()
	if err == nil {
		logger.Printf("await; %q exited cleanly", abbrev(command))
		h.done <- Result{Code: 0}
		return
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Printf(
			"await; %q exited with code %d", abbrev(command), exitErr.ExitCode())
		h.done <- Result{Code: exitErr.ExitCode()}
		return
	}
	logger.Printf("await; %q failed: %s", abbrev(command), err.Error())
	h.done <- Result{Err: err}
}

func (h *procHandle) Done() <-chan Result { return h.done }

func (h *procHandle) Kill() {
	h.kill.Do(func() {
		if h.cmd.Process == nil {
			return
		}
		logger.Printf("kill; terminating pid %d", h.cmd.Process.Pid)
		// The error is uninteresting; the process may have
		// exited already.
		_ = h.cmd.Process.Kill()
	})
}

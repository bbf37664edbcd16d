// Package shell runs external plugin commands.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

type ptyProcess struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()

	// The copy loop ends once the pty master reports EOF after exit.
	<-p.ioDone

	return err
}

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the command under a PTY so tools keep their colored output.
// Output lines are logged and copied to stdout; the PTY merges stderr into it.
func (e *Executor) Execute(ctx context.Context, cmd ports.Command, stdout, _ io.Writer) error {
	if len(cmd.Args) == 0 {
		return nil
	}

	stdoutLog := &logWriter{logger: e.logger}
	proc, err := start(ctx, cmd, io.MultiWriter(stdoutLog, stdout), stdoutLog)
	if err != nil {
		return err
	}

	if err := proc.Wait(); err != nil {
		return commandError(cmd, err, nil)
	}

	return nil
}

// Capture runs the command with plain pipes and returns its standard output.
func (e *Executor) Capture(ctx context.Context, cmd ports.Command) ([]byte, error) {
	if len(cmd.Args) == 0 {
		return nil, nil
	}

	c, err := command(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	if err := c.Run(); err != nil {
		return nil, commandError(cmd, err, stderr.Bytes())
	}

	return stdout.Bytes(), nil
}

func start(ctx context.Context, cmd ports.Command, stdout io.Writer, stdoutLog *logWriter) (*ptyProcess, error) {
	c, err := command(ctx, cmd)
	if err != nil {
		return nil, err
	}

	ptmx, err := pty.Start(c)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to start pty"), "command", cmd.Args[0])
	}

	if cmd.Stdin != nil {
		go func() {
			_, _ = ptmx.Write(cmd.Stdin)
		}()
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		defer func() { _ = stdoutLog.Close() }()

		_, _ = io.Copy(stdout, ptmx)
	}()

	return &ptyProcess{
		cmd:    c,
		ioDone: ioDone,
	}, nil
}

// command builds the exec.Cmd, resolving Args[0] against the merged PATH.
func command(ctx context.Context, cmd ports.Command) (*exec.Cmd, error) {
	name := cmd.Args[0]
	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := name
	if !filepath.IsAbs(name) {
		lp, err := lookPath(name, env)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrToolNotFound.Error()), "command", name)
		}
		executable = lp
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // argv comes from plait.yaml
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env
	return c, nil
}

func commandError(cmd ports.Command, err error, stderr []byte) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	wrapped := zerr.Wrap(err, domain.ErrCommandFailed.Error())
	wrapped = zerr.With(wrapped, "command", strings.Join(cmd.Args, " "))
	wrapped = zerr.With(wrapped, "exit_code", exitCode)
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		wrapped = zerr.With(wrapped, "stderr", msg)
	}
	return wrapped
}

type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r.
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}
	w.logger.Info(msg)
}

// allowListedEnvVars are the system environment variables inherited by plugin
// commands. Node-based tools need their module and option variables.
var allowListedEnvVars = map[string]struct{}{
	"HOME":         {},
	"TERM":         {},
	"USER":         {},
	"PATH":         {},
	"LANG":         {},
	"TMPDIR":       {},
	"NODE_PATH":    {},
	"NODE_OPTIONS": {},
	"SASS_PATH":    {},
}

// resolveEnvironment merges the filtered system environment with extra
// entries. An extra PATH is prepended to the system PATH.
func resolveEnvironment(sysEnv, extra []string) []string {
	envMap := filterSystemEnv(sysEnv)

	for _, entry := range extra {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env rather than the process environment.
func lookPath(file string, env []string) (string, error) {
	if strings.Contains(file, string(filepath.Separator)) {
		if err := findExecutable(file); err != nil {
			return "", exec.ErrNotFound
		}
		return file, nil
	}

	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

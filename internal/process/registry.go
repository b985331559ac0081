package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/events"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

const (
	readBufferSize = 4096
	// exitDrainDelay bounds how long output is still collected after the
	// child itself has exited.
	exitDrainDelay = 250 * time.Millisecond
)

// process is a registered child. Only the registry touches it.
type process struct {
	id      string
	argv    []string
	cmd     *exec.Cmd
	started time.Time
	done    chan struct{}

	mu     sync.Mutex
	output []api.OutputChunk
	code   *int
}

func (p *process) append(chunk api.OutputChunk) {
	p.mu.Lock()
	p.output = append(p.output, chunk)
	p.mu.Unlock()
}

func (p *process) snapshot() []api.OutputChunk {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]api.OutputChunk, len(p.output))
	copy(out, p.output)
	return out
}

// Registry owns every child process spawned for command and package servers.
// Entries are removed either by Stop or the moment the process exits, which
// ever comes first; the other path then sees NotFound.
type Registry struct {
	mu        sync.Mutex
	procs     map[string]*process
	publisher  events.Publisher
	newID      func() string
	drainDelay time.Duration
}

// NewRegistry creates an empty registry publishing output and exit events to pub.
func NewRegistry(pub events.Publisher) *Registry {
	if pub == nil {
		pub = events.Discard
	}
	return &Registry{
		procs:      make(map[string]*process),
		publisher:  pub,
		newID:      func() string { return uuid.New().String() },
		drainDelay: exitDrainDelay,
	}
}

// Spawn starts argv as a child process and returns its identifier. Output and
// exit are reported asynchronously on the event bus.
func (r *Registry) Spawn(argv []string, env map[string]string) (string, error) {
	p, err := r.spawn(argv, env)
	if err != nil {
		return "", err
	}
	return p.id, nil
}

// SpawnAndCollect spawns argv and waits up to settle for early output,
// returning it joined in arrival order. It returns sooner if the process
// exits or ctx is done. The process keeps running afterwards.
func (r *Registry) SpawnAndCollect(ctx context.Context, argv []string, env map[string]string, settle time.Duration) (string, string, error) {
	p, err := r.spawn(argv, env)
	if err != nil {
		return "", "", err
	}

	timer := time.NewTimer(settle)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-p.done:
	case <-ctx.Done():
	}

	var sb strings.Builder
	for _, chunk := range p.snapshot() {
		sb.WriteString(chunk.Data)
	}
	return p.id, sb.String(), nil
}

func (r *Registry) spawn(argv []string, env map[string]string) (*process, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("cannot spawn an empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	configureProcessGroup(cmd)

	// Plain pipes instead of cmd.StdoutPipe: Wait then returns when the child
	// exits, even if a grandchild still holds the write ends.
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	startErr := cmd.Start()
	outW.Close()
	errW.Close()
	if startErr != nil {
		outR.Close()
		errR.Close()
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], startErr)
	}

	p := &process{
		argv:    append([]string(nil), argv...),
		cmd:     cmd,
		started: time.Now(),
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	for {
		id := r.newID()
		if _, taken := r.procs[id]; !taken {
			p.id = id
			break
		}
	}
	r.procs[p.id] = p
	r.mu.Unlock()

	logging.Info("Process", "Spawned %s (pid %d) as %s", strings.Join(argv, " "), cmd.Process.Pid, p.id)

	chunks := make(chan api.OutputChunk, 64)
	var g errgroup.Group
	g.Go(func() error { return pump(outR, api.StreamStdout, chunks) })
	g.Go(func() error { return pump(errR, api.StreamStderr, chunks) })
	go func() {
		if err := g.Wait(); err != nil {
			logging.Debug("Process", "Output reader for %s stopped: %v", p.id, err)
		}
		close(chunks)
	}()

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	var closeOnce sync.Once
	closeReaders := func() {
		closeOnce.Do(func() {
			outR.Close()
			errR.Close()
		})
	}

	go r.dispatch(p, chunks, exited, closeReaders)

	return p, nil
}

// pump copies a pipe into chunks until EOF or until the pipe is closed.
func pump(rd io.Reader, stream api.Stream, chunks chan<- api.OutputChunk) error {
	buf := make([]byte, readBufferSize)
	for {
		n, err := rd.Read(buf)
		if n > 0 {
			chunks <- api.OutputChunk{Stream: stream, Data: string(buf[:n])}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// dispatch is the single consumer of a process's output, so events for one
// process are published in arrival order and the exit event comes last.
// Once the child exits, output still buffered in the pipes is drained for at
// most drainDelay; pipes held open by descendants are then closed.
func (r *Registry) dispatch(p *process, chunks <-chan api.OutputChunk, exited <-chan error, closeReaders func()) {
	defer closeReaders()

	var (
		waitErr  error
		hasExit  bool
		deadline <-chan time.Time
	)
	for chunks != nil {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			p.append(chunk)
			r.publisher.Publish(api.Event{
				Type:   api.EventServerOutput,
				ID:     p.id,
				Data:   chunk.Data,
				Stream: chunk.Stream,
			})
		case waitErr = <-exited:
			hasExit = true
			exited = nil
			deadline = time.After(r.drainDelay)
		case <-deadline:
			deadline = nil
			closeReaders()
		}
	}
	if !hasExit {
		waitErr = <-exited
	}

	code := exitCode(p.cmd, waitErr)

	p.mu.Lock()
	p.code = code
	p.mu.Unlock()

	r.mu.Lock()
	if current, ok := r.procs[p.id]; ok && current == p {
		delete(r.procs, p.id)
	}
	r.mu.Unlock()

	if code != nil {
		logging.Info("Process", "Process %s exited with code %d", p.id, *code)
	} else {
		logging.Info("Process", "Process %s terminated: %v", p.id, waitErr)
	}

	r.publisher.Publish(api.Event{Type: api.EventServerExit, ID: p.id, Code: code})
	close(p.done)
}

func exitCode(cmd *exec.Cmd, waitErr error) *int {
	if cmd.ProcessState == nil {
		return nil
	}
	code := cmd.ProcessState.ExitCode()
	if code < 0 {
		// Killed by a signal.
		return nil
	}
	return &code
}

// Stop removes the process from the registry and asks the OS to terminate it.
// It does not wait for the process to exit. Unknown or already exited ids
// yield a NotFoundError.
func (r *Registry) Stop(id string) error {
	r.mu.Lock()
	p, ok := r.procs[id]
	if ok {
		delete(r.procs, id)
	}
	r.mu.Unlock()

	if !ok {
		return api.NewProcessNotFoundError(id)
	}

	if err := terminate(p.cmd); err != nil {
		logging.Debug("Process", "Terminating %s: %v", id, err)
	}
	logging.Info("Process", "Stopped %s", id)
	return nil
}

// StopAll stops every registered process.
func (r *Registry) StopAll() {
	for _, info := range r.List() {
		_ = r.Stop(info.ID)
	}
}

// Output returns the output captured so far for a registered process.
func (r *Registry) Output(id string) ([]api.OutputChunk, error) {
	r.mu.Lock()
	p, ok := r.procs[id]
	r.mu.Unlock()

	if !ok {
		return nil, api.NewProcessNotFoundError(id)
	}
	return p.snapshot(), nil
}

// List returns the registered processes, oldest first.
func (r *Registry) List() []api.ProcessInfo {
	r.mu.Lock()
	procs := make([]*process, 0, len(r.procs))
	for _, p := range r.procs {
		procs = append(procs, p)
	}
	r.mu.Unlock()

	sort.Slice(procs, func(i, j int) bool { return procs[i].started.Before(procs[j].started) })

	infos := make([]api.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		infos = append(infos, api.ProcessInfo{ID: p.id, Argv: p.argv, PID: p.cmd.Process.Pid})
	}
	return infos
}

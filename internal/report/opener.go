package report

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Opener shows a generated file to the user
type Opener interface {
	Open(ctx context.Context, path string) error
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, path string) error

// Open implements Opener
func (f OpenerFunc) Open(ctx context.Context, path string) error {
	return f(ctx, path)
}

// SystemOpener opens files with the desktop's default viewer
type SystemOpener struct{}

// Open starts the platform viewer without waiting for it to exit. The
// viewer outlives ctx.
func (SystemOpener) Open(_ context.Context, path string) error {
	name, args := viewerCommand(runtime.GOOS, path)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

func viewerCommand(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

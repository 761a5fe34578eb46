// Package browser hands URLs to the desktop's default handler.
package browser

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Opener starts a browser for a URL without waiting for it to exit.
type Opener struct {
	// Command overrides the platform default, e.g. "firefox --new-tab".
	// The URL is appended as the last argument.
	Command string

	goos  string
	start func(*exec.Cmd) error
}

func New(command string) *Opener {
	return &Opener{
		Command: command,
		goos:    runtime.GOOS,
		start:   (*exec.Cmd).Start,
	}
}

func (o *Opener) Open(url string) error {
	name, args, err := o.command(url)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := o.start(cmd); err != nil {
		return goerr.Wrap(err, "failed to start browser", goerr.V("command", name), goerr.V("url", url))
	}
	return nil
}

func (o *Opener) command(url string) (string, []string, error) {
	if fields := strings.Fields(o.Command); len(fields) > 0 {
		return fields[0], append(fields[1:], url), nil
	}
	switch o.goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	}
	return "", nil, goerr.New("unsupported platform", goerr.V("goos", o.goos))
}

package shared

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
)

// browserCommand returns the launcher for goos. A non-empty $BROWSER takes precedence.
func browserCommand(goos, target string) (string, []string, error) {
	if browser := os.Getenv("BROWSER"); browser != "" {
		return browser, []string{target}, nil
	}

	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("%w: no browser launcher for %s", ErrServiceUnavailable, goos)
	}
}

// OpenBrowser opens an http(s) URL, such as an OAuth consent page, in the user's browser.
func OpenBrowser(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: refusing to open %q", ErrInvalidArgument, target)
	}

	name, args, err := browserCommand(runtime.GOOS, u.String())
	if err != nil {
		return err
	}

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go cmd.Wait()

	return nil
}

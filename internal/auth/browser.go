package auth

import (
	"os/exec"
	"runtime"
	"strings"
)

// BrowserFunc adapts a function to BrowserOpener.
type BrowserFunc func(url string) error

func (f BrowserFunc) Open(url string) error { return f(url) }

// SystemBrowser opens URLs with the platform's default handler.
var SystemBrowser BrowserOpener = BrowserFunc(openBrowser)

func openBrowser(target string) error {
	if strings.TrimSpace(target) == "" {
		return nil
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

// Package service writes per-user service definitions that keep the server
// running: a launchd plist on macOS and a systemd user unit on Linux.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/template"
)

// Label identifies the service for launchd and names the systemd unit.
const Label = "com.lecturenotes.server"

const launchdTemplate = `<?xml version='1.0' encoding='UTF-8'?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>Label</key><string>{{.Label}}</string>
  <key>ProgramArguments</key>
  <array>
    <string>{{.Binary}}</string>
    <string>serve</string>
    <string>--config</string>
    <string>{{.Config}}</string>
  </array>
  <key>RunAtLoad</key><true/>
  <key>KeepAlive</key><dict><key>SuccessfulExit</key><false/></dict>
  <key>StandardOutPath</key><string>{{.Log}}</string>
  <key>StandardErrorPath</key><string>{{.Log}}</string>
  {{- if .Env }}
  <key>EnvironmentVariables</key>
  <dict>
    {{- range $k, $v := .Env }}
    <key>{{$k}}</key><string>{{$v}}</string>
    {{- end }}
  </dict>
  {{- end }}
</dict>
</plist>
`

// Params describe the service to install.
type Params struct {
	Label  string
	Binary string
	Config string
	Log    string
	Env    map[string]string
}

// Kind returns "launchd" on macOS and "systemd" elsewhere.
func Kind() string {
	if runtime.GOOS == "darwin" {
		return "launchd"
	}
	return "systemd"
}

// Path returns where the definition for label lives on this platform.
func Path(home, label string) string {
	if Kind() == "launchd" {
		return LaunchdPath(home, label)
	}
	return SystemdPath(home, label)
}

// LaunchdPath returns the plist path for a label.
func LaunchdPath(home, label string) string {
	return filepath.Join(home, "Library", "LaunchAgents", fmt.Sprintf("%s.plist", label))
}

// Write renders the definition for this platform under home and returns its path.
func Write(home string, params Params) (string, error) {
	if Kind() == "launchd" {
		return writeTemplate(LaunchdPath(home, params.Label), launchdTemplate, params)
	}
	return writeTemplate(SystemdPath(home, params.Label), systemdTemplate, params)
}

func writeTemplate(path, text string, params Params) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	tpl := template.Must(template.New(filepath.Base(path)).Parse(text))
	if err := tpl.Execute(f, params); err != nil {
		return "", err
	}
	return path, f.Close()
}

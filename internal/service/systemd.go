package service

import "path/filepath"

const systemdTemplate = `[Unit]
Description=Lecture voice-to-notes server
After=network-online.target

[Service]
ExecStart="{{.Binary}}" serve --config "{{.Config}}"
Restart=on-failure
RestartSec=5
{{- range $k, $v := .Env }}
Environment="{{$k}}={{$v}}"
{{- end }}

[Install]
WantedBy=default.target
`

// SystemdPath returns the user unit path for label.
func SystemdPath(home, label string) string {
	return filepath.Join(home, ".config", "systemd", "user", label+".service")
}

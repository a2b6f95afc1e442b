package audio

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ListDevices enumerates capture devices by asking ffmpeg. Output is
// best-effort raw device lines suitable for printing next to indexes.
func ListDevices(ffmpegBin string) ([]string, error) {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""}
	default:
		args = []string{"-hide_banner", "-sources", "pulse"}
	}
	cmd := exec.CommandContext(ctx, ffmpegBin, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	// Device listing modes exit non-zero on some builds; keep the output.
	_ = cmd.Run()

	var devices []string
	for _, line := range strings.Split(buf.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		devices = append(devices, line)
	}
	return devices, nil
}

package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RequiredEncoders are the ffmpeg encoders every playlist part is produced with.
var RequiredEncoders = []string{"libx264", "aac"}

// RequiredFilters are the ffmpeg filters and sources the overlay chains use.
var RequiredFilters = []string{"drawtext", "drawbox", "scale", "anullsrc", "color"}

// CheckFFmpegCapabilities lists ffmpeg's encoders and filters and reports any
// that a run needs but the build lacks. drawtext in particular is missing
// from ffmpeg builds without libfreetype.
func CheckFFmpegCapabilities(ctx context.Context, binary string) Status {
	status := Status{
		Name:        "FFmpeg capabilities",
		Command:     binary,
		Description: "libx264, aac, and drawtext support",
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	encoders, err := listNames(ctx, binary, "-encoders")
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	filters, err := listNames(ctx, binary, "-filters")
	if err != nil {
		status.Detail = err.Error()
		return status
	}

	var missing []string
	for _, name := range RequiredEncoders {
		if _, ok := encoders[name]; !ok {
			missing = append(missing, "encoder "+name)
		}
	}
	for _, name := range RequiredFilters {
		if _, ok := filters[name]; !ok {
			missing = append(missing, "filter "+name)
		}
	}
	if len(missing) > 0 {
		status.Detail = "missing " + strings.Join(missing, ", ")
		return status
	}
	status.Available = true
	return status
}

// listNames runs `ffmpeg -hide_banner <flag>` and collects the second column
// of every listing row. The -encoders legend ends at a "------" separator;
// -filters has none, so every row is taken and legend noise is harmless.
func listNames(ctx context.Context, binary, flag string) (map[string]struct{}, error) {
	cmd := exec.CommandContext(ctx, binary, "-hide_banner", flag)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", binary, flag, err)
	}

	data := stdout.Bytes()
	names := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	inBody := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !inBody {
			if strings.HasPrefix(line, "---") {
				inBody = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		names[fields[1]] = struct{}{}
	}
	if !inBody {
		for _, line := range strings.Split(string(data), "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				names[fields[1]] = struct{}{}
			}
		}
	}
	return names, scanner.Err()
}

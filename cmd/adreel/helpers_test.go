package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	moviesDir  string
	outputDir  string
	adsDir     string
	workRoot   string
	program    string
	welcome    string
	ffmpeg     string
	ffprobe    string
}

const ffmpegStub = `#!/bin/sh
case "$2" in
-encoders)
	printf ' V..... = Video\n ------\n V....D libx264 H.264\n A....D aac AAC\n'
	;;
-filters)
	printf ' T.C drawtext V->V Draw text\n ... drawbox V->V Draw box\n ..C scale V->V Scale\n ... anullsrc |->A Null audio\n ... color |->V Color\n'
	;;
esac
exit 0
`

const ffprobeStub = `#!/bin/sh
for arg in "$@"; do
	if [ "$arg" = "-show_streams" ]; then
		printf '{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"}],"format":{"duration":"150.000000"}}\n'
		exit 0
	fi
done
echo 150.000000
`

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "adreel.toml"),
		moviesDir:  filepath.Join(base, "movies"),
		outputDir:  filepath.Join(base, "output"),
		adsDir:     filepath.Join(base, "ads"),
		workRoot:   filepath.Join(base, "work"),
		program:    filepath.Join(base, "configuration.txt"),
		welcome:    filepath.Join(base, "welcome.txt"),
		ffmpeg:     filepath.Join(base, "bin", "ffmpeg"),
		ffprobe:    filepath.Join(base, "bin", "ffprobe"),
	}
	for _, dir := range []string{env.moviesDir, env.adsDir, filepath.Dir(env.ffmpeg)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	writeFile(t, env.ffmpeg, ffmpegStub, 0o755)
	writeFile(t, env.ffprobe, ffprobeStub, 0o755)
	writeFile(t, env.program, "WELCOME_VIDEO_DURATION = 5\nADS_INBETWEEN_MOVIES_TIME = 1 // minutes\n", 0o644)
	writeFile(t, env.welcome, "Welcome aboard\n// staff note\nEnjoy the film\n", 0o644)
	env.writeConfig(t, "")
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T, extra string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
movies_dir = %q
output_dir = %q
ads_dir = %q
work_root = %q
welcome_text = %q
overlay_text = %q
program_config = %q
log_dir = %q

[ffmpeg]
ffmpeg_binary = %q
ffprobe_binary = %q

[encode]
min_free_gib = 0
%s`,
		e.moviesDir, e.outputDir, e.adsDir, e.workRoot, e.welcome,
		filepath.Join(e.baseDir, "overlay.txt"), e.program, filepath.Join(e.baseDir, "logs"),
		e.ffmpeg, e.ffprobe, extra,
	)
	writeFile(t, e.configPath, content, 0o644)
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

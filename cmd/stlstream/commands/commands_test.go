/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: Tests for the command implementations: dump, stats, check, convert and
configuration loading.
*/

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/kleascm/stlstream/pkg/stl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const cube = `solid cube
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
endsolid cube
`

// newCommand returns a command with captured output and fresh configuration
func newCommand(t *testing.T, settings map[string]interface{}) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for k, v := range settings {
		viper.Set(k, v)
	}

	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	return cmd, &out, &errOut
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestRunDump checks the event trace and parse log line
func TestRunDump(t *testing.T) {
	cmd, out, errOut := newCommand(t, nil)
	path := writeFile(t, "cube.stl", cube)

	require.NoError(t, RunDump(cmd, []string{path}))
	assert.True(t, strings.HasPrefix(out.String(), "ASCII STL started: \"cube\"\n"))
	assert.True(t, strings.HasSuffix(out.String(), "End of solid\n"))
	assert.Contains(t, errOut.String(), "Parse completed")
}

// TestRunDumpStdin checks reading from standard input
func TestRunDumpStdin(t *testing.T) {
	cmd, out, _ := newCommand(t, nil)
	cmd.SetIn(strings.NewReader(cube))

	require.NoError(t, RunDump(cmd, []string{"-"}))
	assert.Contains(t, out.String(), " Triangle\n    [0,0,0]\n    [1,0,0]\n    [1,1,0]\n")
}

// TestRunDumpFailure checks parse errors surface with their kind
func TestRunDumpFailure(t *testing.T) {
	cmd, _, errOut := newCommand(t, nil)
	path := writeFile(t, "bad.stl", strings.Replace(cube, "endloop", "endlop", 1))

	err := RunDump(cmd, []string{path})
	require.ErrorIs(t, err, stl.ErrMalformedLoopClose)
	assert.Contains(t, err.Error(), "line 7")
	assert.Contains(t, errOut.String(), "Parse failed")
}

// TestRunStatsFormats checks each report encoding
func TestRunStatsFormats(t *testing.T) {
	path := writeFile(t, "cube.stl", cube)

	t.Run("json", func(t *testing.T) {
		cmd, out, _ := newCommand(t, map[string]interface{}{"output_format": "json"})
		require.NoError(t, RunStats(cmd, []string{path}))

		var report sinks.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, "cube", report.Name)
		assert.Equal(t, uint64(1), report.Facets)
		assert.InDelta(t, 0.5, report.SurfaceArea, 1e-9)
	})

	t.Run("yaml", func(t *testing.T) {
		cmd, out, _ := newCommand(t, map[string]interface{}{"output_format": "yaml"})
		require.NoError(t, RunStats(cmd, []string{path}))

		var report sinks.Report
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, "ascii", report.Format)
		assert.Equal(t, uint64(1), report.Facets)
		require.NotNil(t, report.Bounds)
		assert.Equal(t, stl.Vector3{X: 1, Y: 1}, report.Bounds.Max)
	})

	t.Run("text", func(t *testing.T) {
		cmd, out, _ := newCommand(t, nil)
		require.NoError(t, RunStats(cmd, []string{path}))
		assert.Regexp(t, `Facets:\s+1\n`, out.String())
		assert.Regexp(t, `Bounds max:\s+\[1,1,0\]\n`, out.String())
	})

	t.Run("unknown", func(t *testing.T) {
		cmd, _, _ := newCommand(t, map[string]interface{}{"output_format": "xml"})
		assert.EqualError(t, RunStats(cmd, []string{path}), "unsupported output format: xml")
	})
}

// TestRunStatsSaveReport checks the archived JSON copy of a report
func TestRunStatsSaveReport(t *testing.T) {
	path := writeFile(t, "cube.stl", cube)
	dir := filepath.Join(t.TempDir(), "reports")

	cmd, _, _ := newCommand(t, map[string]interface{}{"report_dir": dir})
	require.NoError(t, RunStats(cmd, []string{path}))

	matches, err := filepath.Glob(filepath.Join(dir, "*_cube.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var report sinks.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, uint64(1), report.Facets)
}

// TestRunStatsSizeHint checks that a declared count beyond the file size is rejected
func TestRunStatsSizeHint(t *testing.T) {
	header := make([]byte, stl.HeaderSize)
	count := stl.EncodeCount(1000)
	path := writeFile(t, "lying.stl", string(header)+string(count[:]))

	cmd, _, _ := newCommand(t, nil)
	err := RunStats(cmd, []string{path})
	require.ErrorIs(t, err, stl.ErrInvalidCount)
}

// TestRunStatsMaxTriangles checks the configured triangle cap
func TestRunStatsMaxTriangles(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, stl.HeaderSize))
	count := stl.EncodeCount(2)
	buf.Write(count[:])
	for i := 0; i < 2; i++ {
		rec := stl.EncodeRecord(stl.Facet{Normal: stl.Vector3{Z: 1}}, 0)
		buf.Write(rec[:])
	}
	path := writeFile(t, "pair.stl", buf.String())

	cmd, _, _ := newCommand(t, map[string]interface{}{"max_triangles": 1})
	require.ErrorIs(t, RunStats(cmd, []string{path}), stl.ErrInvalidCount)

	cmd, _, _ = newCommand(t, map[string]interface{}{"max_triangles": 2})
	require.NoError(t, RunStats(cmd, []string{path}))
}

// TestRunCheck checks pass and fail reporting across files
func TestRunCheck(t *testing.T) {
	good := writeFile(t, "good.stl", cube)
	skewed := writeFile(t, "skewed.stl", strings.Replace(cube, "facet normal 0 0 1", "facet normal 0 0 2", 1))
	flat := writeFile(t, "flat.stl", strings.Replace(cube, "vertex 1 1 0", "vertex 2 0 0", 1))
	broken := writeFile(t, "broken.stl", strings.TrimSuffix(cube, "endsolid cube\n"))

	cmd, out, _ := newCommand(t, nil)
	require.NoError(t, RunCheck(cmd, []string{good}))
	assert.Equal(t, "✅ "+good+": ok (1 facets)\n", out.String())

	cmd, out, _ = newCommand(t, nil)
	err := RunCheck(cmd, []string{good, skewed, flat, broken})
	assert.EqualError(t, err, "3 of 4 files failed checks")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "✅ "))
	assert.Equal(t, "❌ "+skewed+": 1 non-unit normals", lines[1])
	assert.Equal(t, "❌ "+flat+": 1 degenerate triangles", lines[2])
	assert.Contains(t, lines[3], "unexpected end of file")

	cmd, _, _ = newCommand(t, map[string]interface{}{"allow_bad_normals": true, "allow_degenerate": true})
	assert.NoError(t, RunCheck(cmd, []string{skewed, flat}))
}

// TestRunConvertRoundTrip checks ASCII to binary and back
func TestRunConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, "cube.stl", cube)
	bin := filepath.Join(dir, "cube.bin.stl")
	back := filepath.Join(dir, "cube.ascii.stl")

	cmd, _, errOut := newCommand(t, map[string]interface{}{"convert_to": "binary"})
	require.NoError(t, RunConvert(cmd, []string{src, bin}))
	assert.Contains(t, errOut.String(), "Conversion completed")

	data, err := os.ReadFile(bin)
	require.NoError(t, err)
	assert.Len(t, data, stl.HeaderSize+4+stl.RecordSize)

	cmd, _, _ = newCommand(t, map[string]interface{}{"convert_to": "ascii"})
	require.NoError(t, RunConvert(cmd, []string{bin, back}))

	text, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(text), "solid binary STL cube\n"))

	stats := sinks.NewStats()
	require.NoError(t, stl.Parse(bytes.NewReader(text), stats))
	assert.Equal(t, uint64(1), stats.Report().Facets)
}

// TestRunConvertErrors checks argument and parse failures
func TestRunConvertErrors(t *testing.T) {
	src := writeFile(t, "cube.stl", cube)
	dst := filepath.Join(t.TempDir(), "out.stl")

	cmd, _, _ := newCommand(t, map[string]interface{}{"convert_to": "obj"})
	assert.Error(t, RunConvert(cmd, []string{src, dst}))

	cmd, _, _ = newCommand(t, map[string]interface{}{"convert_to": "ascii"})
	assert.Error(t, RunConvert(cmd, []string{src, src}))

	bad := writeFile(t, "bad.stl", "solid x\nfacet normal 0 0 1\n")
	cmd, _, _ = newCommand(t, map[string]interface{}{"convert_to": "ascii"})
	require.ErrorIs(t, RunConvert(cmd, []string{bad, dst}), stl.ErrUnexpectedEOF)
	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

// TestLoadConfigFile checks values from a config file and the environment
func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "stlstream.yaml", "log_level: debug\nmax_triangles: 7\n")
	newCommand(t, map[string]interface{}{"config": path})
	t.Setenv("STLSTREAM_LISTEN_ADDR", "127.0.0.1:9999")

	require.NoError(t, LoadConfig())
	assert.Equal(t, "debug", viper.GetString("log_level"))
	assert.Equal(t, uint32(7), viper.GetUint32("max_triangles"))
	assert.Equal(t, "text", viper.GetString("output_format"))

	cfg := ServerConfig()
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, uint32(7), cfg.MaxTriangles)
	assert.Equal(t, int64(256<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

// TestSetupLoggingRejectsBadLevel checks invalid logging configuration
func TestSetupLoggingRejectsBadLevel(t *testing.T) {
	cmd, _, _ := newCommand(t, map[string]interface{}{"log_level": "loud"})
	_, err := setup(cmd)
	assert.Error(t, err)
}

// TestProfiling checks a heap profile is written around a run
func TestProfiling(t *testing.T) {
	dir := t.TempDir()
	cmd, _, _ := newCommand(t, map[string]interface{}{"profile_memory": true, "profile_dir": dir})

	require.NoError(t, StartProfiling(cmd, nil))
	require.NoError(t, RunStats(cmd, []string{writeFile(t, "cube.stl", cube)}))
	require.NoError(t, StopProfiling())

	profiles, err := filepath.Glob(filepath.Join(dir, "memory_*.prof"))
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.NoError(t, StopProfiling())
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/depthviz/rimage"
	"go.viam.com/depthviz/utils"
)

func runMain(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := realMain(append([]string{"depthviz"}, args...), &out, &errOut)
	return out.String(), err
}

func generateInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	out, err := runMain(t, "generate", "--output", path, "--width", "8", "--height", "4", "--max-depth", "1000")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Saved 8x4 synthetic depth map to "+path)
	return path
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"depth.png", "depth.dat.gz"} {
		path := generateInput(t, dir, name)
		dm, err := rimage.ReadDepthMapFromFile(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, dm.Width(), test.ShouldEqual, 8)
		test.That(t, dm.Height(), test.ShouldEqual, 4)
		test.That(t, dm.GetDepth(0, 0), test.ShouldEqual, rimage.Depth(0))
		test.That(t, dm.GetDepth(7, 3), test.ShouldEqual, rimage.Depth(1000))
	}

	_, err := runMain(t, "generate")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = runMain(t, "generate", "--output", filepath.Join(dir, "x.png"), "--width", "0")
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)

	_, err = runMain(t, "generate", "--output", filepath.Join(dir, "x.png"), "--max-depth", "70000")
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	input := generateInput(t, dir, "depth.png")
	output := filepath.Join(dir, "gray.png")
	viz := filepath.Join(dir, "viz.png")

	out, err := runMain(t, "process", "--input", input, "--output", output, "--viz", viz, "--colormap", "hue")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "Original Resolution: 8x4\n"+
		"Data type: u16\n"+
		"Shape: (4, 8, 1)\n"+
		"Depth in meters (sample): 0 m\n"+
		"Min depth: 0\n"+
		"Max depth: 1000\n"+
		"Saved grayscale output to "+output+"\n"+
		"Saved visualization to "+viz+"\n")

	for _, path := range []string{output, viz} {
		_, err := os.Stat(path)
		test.That(t, err, test.ShouldBeNil)
	}
}

func TestRootDefaultsToProcess(t *testing.T) {
	dir := t.TempDir()
	input := generateInput(t, dir, "depth.dat")
	output := filepath.Join(dir, "gray.qoi")

	out, err := runMain(t, "--input", input, "--output", output, "--parallel")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Saved grayscale output to "+output)
	test.That(t, out, test.ShouldNotContainSubstring, "Saved visualization")

	_, err = runMain(t, "--input", input, "--output", output, "stray")
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)
}

func TestProcessFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := generateInput(t, dir, "depth.tiff")
	t.Setenv("DEPTHVIZ_TEST_DIR", dir)

	cfgPath := filepath.Join(dir, "depthviz.json5")
	test.That(t, os.WriteFile(cfgPath, []byte(`{
		// paths are expanded from the environment
		input: "${DEPTHVIZ_TEST_DIR}/depth.tiff",
		output: "${DEPTHVIZ_TEST_DIR}/from_file.png",
		colormap: "gray"
	}`), 0o600), test.ShouldBeNil)

	out, err := runMain(t, "--config", cfgPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Saved grayscale output to "+filepath.Join(dir, "from_file.png"))

	// flags win over the file.
	override := filepath.Join(dir, "override.png")
	out, err = runMain(t, "--config", cfgPath, "process", "--output", override, "--viz", filepath.Join(dir, "viz.bmp"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Saved grayscale output to "+override)
	test.That(t, out, test.ShouldContainSubstring, "Saved visualization to "+filepath.Join(dir, "viz.bmp"))
	_, err = os.Stat(input)
	test.That(t, err, test.ShouldBeNil)

	_, err = runMain(t, "--config", filepath.Join(dir, "missing.json5"))
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)
}

func TestProcessFromEnv(t *testing.T) {
	dir := t.TempDir()
	input := generateInput(t, dir, "depth.png")
	viz := filepath.Join(dir, "env_viz.ppm")
	t.Setenv("DEPTHVIZ_INPUT", input)
	t.Setenv("DEPTHVIZ_OUTPUT", filepath.Join(dir, "env_gray.png"))
	t.Setenv("DEPTHVIZ_VIZ", viz)

	out, err := runMain(t, "process")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Saved visualization to "+viz)
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := runMain(t, "process")
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)

	_, err = runMain(t, "process", "--input", filepath.Join(dir, "missing.png"))
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)

	input := generateInput(t, dir, "depth.png")
	_, err = runMain(t, "process", "--input", input, "--output", filepath.Join(dir, "gray.png"),
		"--viz", filepath.Join(dir, "viz.png"), "--colormap", "plasma")
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)

	_, err = runMain(t, "process", "--input", input, "--output", filepath.Join(dir, "nope", "gray.png"))
	test.That(t, utils.IsKind(err, utils.KindOutput), test.ShouldBeTrue)
}

func TestLogFile(t *testing.T) {
	dir := t.TempDir()
	input := generateInput(t, dir, "depth.png")
	logFile := filepath.Join(dir, "depthviz.log")

	_, err := runMain(t, "--debug", "--log-file", logFile, "--input", input, "--output", filepath.Join(dir, "gray.png"))
	test.That(t, err, test.ShouldBeNil)

	contents, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "read depth map")
	test.That(t, string(contents), test.ShouldContainSubstring, "found range")
}

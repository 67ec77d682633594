package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewApp(&out).Run(append([]string{"kestrel"}, args...))
	return out.String(), err
}

func TestCheck(t *testing.T) {
	out, err := runApp(t, "check")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "frame KES plus, mask 0x3F, 490 Hz")
	test.That(t, out, test.ShouldContainSubstring, "vane-fore")
	test.That(t, out, test.ShouldContainSubstring, "arming checks passed")

	path := filepath.Join(t.TempDir(), "kestrel.yaml")
	test.That(t, os.WriteFile(path, []byte(`
frame: {type: plusrev}
vanes:
  left: {present: false}
`), 0o600), test.ShouldBeNil)
	out, err = runApp(t, "--config", path, "check")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "vane left not present")
	test.That(t, out, test.ShouldContainSubstring, "mask 0x2F")
}

func TestFactors(t *testing.T) {
	out, err := runApp(t, "factors")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "-0.866025")
	test.That(t, out, test.ShouldContainSubstring, "motor-fore")
}

func TestMix(t *testing.T) {
	out, err := runApp(t, "mix", "--throttle", "0.5", "--pitch", "0.2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "throttle 0.500")
	test.That(t, out, test.ShouldContainSubstring, "0.7000")
	test.That(t, out, test.ShouldNotContainSubstring, "limits hit")

	out, err = runApp(t, "mix", "--throttle", "1", "--roll", "1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "limits hit: rpy")
}

func TestOrderAndTest(t *testing.T) {
	out, err := runApp(t, "order")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "motor-fore")

	out, err = runApp(t, "test", "--seq", "2", "--pwm", "1400", "--duration", "20ms")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "testing motor-right on pin motor-right at 1400 us")

	_, err = runApp(t, "test", "--seq", "7")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid test sequence")
}

func TestRun(t *testing.T) {
	out, err := runApp(t, "run", "--throttle", "0.4", "--duration", "50ms")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "cycles")
	test.That(t, out, test.ShouldContainSubstring, "0.400")
}

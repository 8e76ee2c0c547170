//go:build e2e && unix

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const maxOutput = 1 << 20     // bytes of terminal output kept
var binPath = "assetgrip_e2e" // built by TestMain

const (
	KeyEnter  = "\r"
	KeyEsc    = "\x1b"
	KeyCtrlC  = "\x03"
	KeyDown   = "j"
	KeyUp     = "k"
	KeyBottom = "G"
	KeySearch = "/"
	KeyReload = "r"
	KeyQuit   = "q"
)

// ansiRe strips CSI, OSC, charset and keypad sequences plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// TUITestFramework runs the assetgrip binary in a pty and records its output
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	cmd       *exec.Cmd
	workspace string

	mu      sync.Mutex
	out     []byte
	written int // total bytes ever read; out holds the tail
}

// NewTUITest creates a driver for one test
func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{t: t}
}

// StartApp launches assetgrip with args in a 120x40 pty
func (tf *TUITestFramework) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Dir = tf.workspace
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace,
		"XDG_CONFIG_HOME="+tf.workspace,
		"ASSETGRIP_LOG_FILE=",
		"ASSETGRIP_E2E_TEST=1",
	)

	f, err := pty.StartWithSize(tf.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return err
	}
	tf.pty = f
	go tf.record()
	return nil
}

// record copies pty output into the buffer until the pty closes
func (tf *TUITestFramework) record() {
	chunk := make([]byte, 8192)
	for {
		n, err := tf.pty.Read(chunk)
		if n > 0 {
			tf.mu.Lock()
			tf.out = append(tf.out, chunk[:n]...)
			tf.written += n
			if over := len(tf.out) - maxOutput; over > 0 {
				tf.out = append(tf.out[:0], tf.out[over:]...)
			}
			tf.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendKeys writes raw keystrokes to the app
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

func (tf *TUITestFramework) SendCtrlC() error { return tf.SendKeys(KeyCtrlC) }
func (tf *TUITestFramework) Enter() error     { return tf.SendKeys(KeyEnter) }
func (tf *TUITestFramework) Down() error      { return tf.SendKeys(KeyDown) }
func (tf *TUITestFramework) Up() error        { return tf.SendKeys(KeyUp) }
func (tf *TUITestFramework) Quit() error      { return tf.SendKeys(KeyQuit) }

// Search opens the search prompt and types query
func (tf *TUITestFramework) Search(query string) error {
	tf.t.Helper()
	return tf.SendKeys(KeySearch + query)
}

// Ready waits for the status line marker of the first drawn frame
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool { return strings.Contains(s, "__READY__") }, 5*time.Second)
}

// SeePlain waits for text in the ANSI-stripped output
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 3*time.Second)
}

// OutputContainsPlain waits up to timeout for text in the ANSI-stripped output
func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

// Mark returns the current output position for SeePlainSince
func (tf *TUITestFramework) Mark() int {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.written
}

// SeePlainSince waits for text in output written after mark
func (tf *TUITestFramework) SeePlainSince(mark int, text string) bool {
	tf.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		tf.mu.Lock()
		start := max(mark-(tf.written-len(tf.out)), 0)
		tail := string(tf.out[start:])
		tf.mu.Unlock()

		if strings.Contains(ansiRe.ReplaceAllString(tail, ""), text) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// WaitFor polls the raw output until pred holds or timeout passes
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Snapshot returns the recorded output
func (tf *TUITestFramework) Snapshot() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return string(tf.out)
}

// DumpTailOnFail writes the last n bytes of plain output next to the test
func (tf *TUITestFramework) DumpTailOnFail(t *testing.T, name string, n int) {
	s := ansiRe.ReplaceAllString(tf.Snapshot(), "")
	if len(s) > n {
		s = s[len(s)-n:]
	}
	p := filepath.Join(t.TempDir(), name+".txt")
	_ = os.WriteFile(p, []byte(s), 0o644)
	t.Logf("Saved tail to %s", p)
}

// Cleanup closes the pty, which hangs up the app, and reaps it
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}

package ui

import (
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"
)

// pagerCommand runs the ov pager over content as a tea.ExecCommand, so
// bubbletea releases and restores the terminal around it
type pagerCommand struct {
	content string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *pagerCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *pagerCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *pagerCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run shows the content until the user quits ov
func (c *pagerCommand) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(c.content))
	if err != nil {
		return err
	}

	// Keep ov from writing to our screen on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// showInPager returns a command that opens content in the pager
func showInPager(content string) tea.Cmd {
	return tea.Exec(&pagerCommand{content: content}, func(err error) tea.Msg {
		return pagerClosedMsg{err: err}
	})
}

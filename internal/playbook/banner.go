package playbook

import (
	"fmt"

	"github.com/ariel-frischer/progressdots/internal/lifecycle"
	"github.com/ariel-frischer/progressdots/internal/output"
)

// Displayer writes one message to the terminal. *dots.Plugin implements it,
// so banners share the plugin's open-line bookkeeping.
type Displayer interface {
	Display(msg string, opts output.DisplayOptions) error
}

// Banner is the host's own stdout callback: it prints play and task headers,
// per-host results and the final recap.
type Banner struct {
	display Displayer
	width   int
}

var (
	_ lifecycle.Callback       = (*Banner)(nil)
	_ lifecycle.ResultCallback = (*Banner)(nil)
)

// NewBanner creates a Banner writing headers padded to width columns.
func NewBanner(display Displayer, width int) *Banner {
	return &Banner{display: display, width: width}
}

// OnPlayStart prints the play header.
func (b *Banner) OnPlayStart(play lifecycle.Play) error {
	return b.header(fmt.Sprintf("PLAY [%s]", play.Name))
}

// OnTaskStart prints the task header.
func (b *Banner) OnTaskStart(task lifecycle.Task) error {
	return b.header(fmt.Sprintf("TASK [%s]", task.Name))
}

// OnResult prints one result line. Failures go to stderr.
func (b *Banner) OnResult(result lifecycle.Result) error {
	switch result.Status {
	case lifecycle.StatusFailed:
		msg := fmt.Sprintf("failed: [%s]", result.Host)
		if result.Message != "" {
			msg += " => " + result.Message
		}
		return b.display.Display(msg, output.DisplayOptions{Color: "red", Stream: output.Stderr})
	case lifecycle.StatusChanged:
		return b.display.Display(fmt.Sprintf("changed: [%s]", result.Host), output.DisplayOptions{Color: "yellow"})
	case lifecycle.StatusSkipped:
		return b.display.Display(fmt.Sprintf("skipping: [%s]", result.Host), output.DisplayOptions{Color: "cyan"})
	default:
		return b.display.Display(fmt.Sprintf("ok: [%s]", result.Host), output.DisplayOptions{Color: "green"})
	}
}

// OnStats prints the recap, one line per host.
func (b *Banner) OnStats(stats *lifecycle.Stats) error {
	if err := b.header("PLAY RECAP"); err != nil {
		return err
	}
	for _, host := range stats.Hosts() {
		sum := stats.Summary(host)
		color := "green"
		switch {
		case sum.Failed > 0:
			color = "red"
		case sum.Changed > 0:
			color = "yellow"
		}
		line := fmt.Sprintf("%-24s : %s", host, sum)
		if err := b.display.Display(line, output.DisplayOptions{Color: color}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Banner) header(title string) error {
	if err := b.display.Display("", output.DisplayOptions{}); err != nil {
		return err
	}
	return b.display.Display(output.Banner(title, b.width), output.DisplayOptions{})
}

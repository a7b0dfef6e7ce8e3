// Command screenstack is a small pager built on the buffer manager. It
// exists to exercise the full surface: stacked buffers, rolling, prompts
// with completion, the minibuffer, and shelling out.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/halvard/screenstack/pkg/completion"
	"github.com/halvard/screenstack/pkg/config"
	"github.com/halvard/screenstack/pkg/logging"
	"github.com/halvard/screenstack/pkg/screen"
	tcellbackend "github.com/halvard/screenstack/pkg/ui/backend/tcell"
	"github.com/halvard/screenstack/pkg/ui/terminal"
	"github.com/halvard/screenstack/pkg/ui/theme"
	"github.com/halvard/screenstack/pkg/views"
)

var configPath string

func main() {
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "screenstack:", err)
		os.Exit(1)
	}
}

func run(files []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Dir)
	if err != nil {
		return err
	}
	defer log.Close()
	if cfg.Log.Level != "" {
		log.SetMinLevel(logging.Level(cfg.Log.Level))
	}

	th, err := theme.FromColors(theme.Colors{
		StatusFG:        cfg.Theme.StatusFG,
		StatusBG:        cfg.Theme.StatusBG,
		FocusedStatusFG: cfg.Theme.FocusedStatusFG,
		FocusedStatusBG: cfg.Theme.FocusedStatusBG,
		FlashFG:         cfg.Theme.FlashFG,
		FlashBG:         cfg.Theme.FlashBG,
	})
	if err != nil {
		return err
	}

	be, err := tcellbackend.New()
	if err != nil {
		return err
	}
	if err := be.Init(); err != nil {
		return err
	}
	defer be.Fini()
	be.HideCursor()

	mgr := screen.NewManager(be, screen.Options{
		Theme:        th,
		Logger:       log,
		PollInterval: cfg.PollInterval(),
		Shell:        cfg.Shell,
		Accounts:     completion.NewPasswdSource(),
	})
	mgr.SetDirBrowser(func(dir string) screen.ModalView {
		return views.NewDirBrowser(dir)
	})

	// The log tail sits at the bottom of the stack, always present. New
	// events mark it dirty so an exposed tail repaints on the next pass.
	logBuf, err := mgr.Spawn("log", views.NewLogView(log), screen.SpawnOpts{Hidden: true})
	if err != nil {
		return err
	}
	log.Subscribe(func(logging.Event) { logBuf.MarkDirty() })

	for _, path := range files {
		if err := openFile(mgr, path); err != nil {
			mgr.Flash(fmt.Sprintf("cannot open %s", path))
		}
	}
	if len(files) == 0 {
		content, title := welcomeText, "welcome"
		if piped, ok := readPipedStdin(); ok {
			content, title = piped, "stdin"
		}
		if _, err := mgr.Spawn(title, views.NewTextView(content), screen.SpawnOpts{}); err != nil {
			return err
		}
	}

	log.Info(logging.CategoryScreen, "session started", nil)
	mgr.CompletelyRedrawScreen()
	return eventLoop(mgr)
}

func eventLoop(mgr *screen.Manager) error {
	var notes []int
	for {
		ev := mgr.PollEvent()
		if ev == nil {
			continue
		}

		k, ok := ev.(terminal.KeyEvent)
		if !ok {
			mgr.HandleInput(ev)
			continue
		}

		switch {
		case k.Rune == 'q' && k.Key == terminal.KeyRune:
			if err := mgr.KillAllBuffersSafely(); err == nil {
				return nil
			}
			if yes, ok := mgr.AskYesNo("Some buffers refuse to die. Quit anyway? "); ok && yes {
				return nil
			}

		case k.Rune == 'b' && k.Key == terminal.KeyRune:
			mgr.RollBuffers()

		case k.Rune == 'B' && k.Key == terminal.KeyRune:
			mgr.RollBuffersBackwards()

		case k.Rune == 'x' && k.Key == terminal.KeyRune:
			if top := mgr.Top(); top != nil {
				if err := mgr.KillBufferSafely(top); err != nil {
					mgr.Flash(fmt.Sprintf("%s is not killable", top.Title()))
				}
			}

		case k.Rune == 'o' && k.Key == terminal.KeyRune:
			paths, err := mgr.AskForFilenames("filename", "Open file: ", "")
			if err != nil {
				mgr.Flash(err.Error())
				continue
			}
			for _, path := range paths {
				if err := openFile(mgr, path); err != nil {
					mgr.Flash(fmt.Sprintf("cannot open %s", path))
				}
			}

		case k.Rune == 'm' && k.Key == terminal.KeyRune:
			msg, ok, err := mgr.Ask("note", "Note: ", "", nil)
			if err != nil || !ok {
				continue
			}
			notes = append(notes, mgr.Say(msg))

		case k.Rune == 'M' && k.Key == terminal.KeyRune:
			if n := len(notes); n > 0 {
				mgr.Clear(notes[n-1])
				notes = notes[:n-1]
			}

		case k.Rune == '!' && k.Key == terminal.KeyRune:
			cmd, ok, err := mgr.Ask("shell", "Shell command: ", "", nil)
			if err != nil || !ok {
				continue
			}
			if err := mgr.ShellOut(cmd); err != nil {
				mgr.Flash(err.Error())
			}

		case k.Key == terminal.KeyCtrlL:
			mgr.CompletelyRedrawScreen()

		default:
			mgr.HandleInput(ev)
		}
	}
}

func openFile(mgr *screen.Manager, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = mgr.Spawn(path, views.NewTextView(string(data)), screen.SpawnOpts{})
	return err
}

// readPipedStdin slurps stdin when it is a pipe rather than the terminal.
// tcell reads input from /dev/tty, so the two don't conflict.
func readPipedStdin() (string, bool) {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return "", false
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadDefault()
}

var welcomeText = strings.TrimSpace(`
screenstack demo pager

  o        open file (with completion; a directory opens the browser)
  b / B    roll buffers forward / backwards
  x        kill the top buffer
  m / M    pin a note to the status area / clear the last one
  !        run a shell command
  ctrl-l   redraw the screen
  q        quit
`)

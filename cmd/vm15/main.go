// Command vm15 runs a program image under the 16-bit virtual machine,
// either as an interactive console session or, with --debug, as a
// single-step TUI inspector.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"vm15/engine"
	"vm15/inspector"
	"vm15/internal/config"
	"vm15/internal/logging"
	"vm15/memory"
	"vm15/screen"
	"vm15/session"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		config.Usage()
		os.Exit(1)
	}
	if cfg.Help {
		config.Usage()
		return
	}

	logger, closeLog := setupLogger(cfg)
	defer closeLog()
	slog.SetDefault(logger)

	image, err := os.ReadFile(cfg.ImagePath)
	if err != nil {
		logger.Error("reading program image", "error", err)
		os.Exit(1)
	}

	var checkpoint []string
	if cfg.CheckpointPath != "" {
		checkpoint, err = loadTranscript(cfg.CheckpointPath)
		if err != nil {
			logger.Error("reading checkpoint", "error", err)
			os.Exit(1)
		}
	}

	if cfg.Debug {
		runDebug(logger, image, cfg)
		return
	}

	runConsole(logger, image, cfg, checkpoint)
}

func setupLogger(cfg config.Config) (*slog.Logger, func()) {
	var file *os.File
	if cfg.LogPath != "" {
		f, err := os.Create(cfg.LogPath)
		if err == nil {
			file = f
		}
	}
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	h := logging.NewHandler(file, level, false)
	closer := func() {
		if file != nil {
			file.Close()
		}
	}
	return slog.New(h), closer
}

func loadTranscript(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}

func runDebug(logger *slog.Logger, image []byte, cfg config.Config) {
	mem, err := memory.LoadImage(image)
	if err != nil {
		logger.Error("loading image", "error", err)
		os.Exit(1)
	}
	_, vmSide := screen.New()
	e := engine.New(mem, vmSide)
	if cfg.Override != nil {
		e.Register8Preset = cfg.Override
	}
	if err := inspector.Run(e); err != nil && !errors.Is(err, engine.ErrHalt) {
		logger.Error("inspector", "error", err)
	}
}

// runConsole drives the interactive liner-based console loop, restarting
// with a fresh engine after any fatal engine error, the way the original
// game's own runner restarts on death.
func runConsole(logger *slog.Logger, image []byte, cfg config.Config, checkpoint []string) {
	for {
		history, err := runOneSession(logger, image, cfg, checkpoint)
		if err == nil {
			return
		}
		logger.Error("engine stopped", "error", err)
		printSummary(history)
		fmt.Println("\n=================>")
		fmt.Println("=================> You died. Restarting the game")
		time.Sleep(2 * time.Second)
	}
}

// runOneSession runs a single console session to completion (clean halt,
// ctrl-c/prompt abort, or a fatal engine error). A nil error means the
// program exited cleanly or the user quit; a non-nil error means a fatal
// engine error that should trigger a restart.
func runOneSession(logger *slog.Logger, image []byte, cfg config.Config, checkpoint []string) ([]string, error) {
	mem, err := memory.LoadImage(image)
	if err != nil {
		return nil, err
	}
	host, vmSide := screen.New()
	e := engine.New(mem, vmSide)
	if cfg.Override != nil {
		e.Register8Preset = cfg.Override
	}

	sess := session.New(e, host)

	var out string
	if len(checkpoint) > 0 {
		err = sess.FromCheckpoint(checkpoint)
	} else {
		out, err = sess.Bootstrap()
	}
	if err != nil {
		return sess.History(), err
	}
	fmt.Print(out)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(string) []string { return nil })

	for {
		input, promptErr := line.Prompt("> ")
		if promptErr != nil {
			if errors.Is(promptErr, liner.ErrPromptAborted) {
				printSummary(sess.History())
				return sess.History(), nil
			}
			logger.Error("reading line", "error", promptErr)
			return sess.History(), nil
		}
		line.AppendHistory(input)

		if path, ok := strings.CutPrefix(input, "save "); ok {
			if err := saveTranscript(strings.TrimSpace(path), sess.History()); err != nil {
				fmt.Println("Error:", err)
			}
			continue
		}

		out, err = sess.Execute(input)
		fmt.Print(out)
		if err != nil {
			return sess.History(), err
		}
		if sess.Halted() {
			return sess.History(), nil
		}
	}
}

func printSummary(history []string) {
	fmt.Println("\n=========== Summary")
	for _, entry := range history {
		fmt.Println(strings.TrimSpace(entry))
	}
	fmt.Println("\n=========== End")
}

func saveTranscript(path string, history []string) error {
	return os.WriteFile(path, []byte(strings.Join(history, "\n")+"\n"), 0o644)
}

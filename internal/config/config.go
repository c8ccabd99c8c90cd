// Package config parses the interpreter's command-line flags.
package config

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"
)

// Config holds one parsed invocation of cmd/vm15.
type Config struct {
	ImagePath      string
	CheckpointPath string
	LogPath        string
	Override       *uint16
	Debug          bool
	Help           bool
}

// Parse reads args (excluding the program name) into a Config.
//
// args replaces os.Args for the duration of the call, since
// github.com/pborman/getopt/v2 parses the process-global command line
// rather than an argument slice passed in directly.
func Parse(args []string) (Config, error) {
	savedArgs := os.Args
	savedSet := getopt.CommandLine
	defer func() {
		os.Args = savedArgs
		getopt.CommandLine = savedSet
	}()
	getopt.CommandLine = getopt.New()
	os.Args = append([]string{"vm15"}, args...)

	optImage := getopt.StringLong("image", 'i', "", "Program image path")
	optCheckpoint := getopt.StringLong("checkpoint", 'c', "", "Transcript checkpoint to replay")
	optLog := getopt.StringLong("log", 'l', "", "Log file path")
	optOverride := getopt.StringLong("override", 'o', "", "Teleporter register-8 preset")
	optDebug := getopt.BoolLong("debug", 'd', "Launch the TUI inspector instead of the console loop")
	optHelp := getopt.BoolLong("help", 'h', "Show usage")

	getopt.Parse()

	cfg := Config{
		ImagePath:      *optImage,
		CheckpointPath: *optCheckpoint,
		LogPath:        *optLog,
		Debug:          *optDebug,
		Help:           *optHelp,
	}

	if cfg.Help {
		return cfg, nil
	}

	if *optOverride != "" {
		var val uint16
		if _, err := fmt.Sscanf(*optOverride, "%d", &val); err != nil {
			return Config{}, fmt.Errorf("config: invalid --override value %q: %w", *optOverride, err)
		}
		cfg.Override = &val
	}

	if cfg.ImagePath == "" {
		return Config{}, fmt.Errorf("config: --image is required")
	}

	return cfg, nil
}

// Usage writes the flag usage summary to stderr.
func Usage() {
	getopt.Usage()
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/cleankeys/cleankeys/pkg/blocker"
	"github.com/cleankeys/cleankeys/pkg/config"
)

func main() {
	var (
		modeName   string
		configPath string
		hotkeySpec string
		checkOnly  bool
		quiet      bool
		help       bool
	)

	flag.StringVarP(&modeName, "mode", "m", "keyboard", "Input class to lock: keyboard or mouse")
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&hotkeySpec, "hotkey", "", "Replace the unlock trigger, e.g. cmd+shift+k or ctrl+opt")
	flag.BoolVar(&checkOnly, "check-conflicts", false, "Check --hotkey against well-known shortcuts and exit")
	flag.BoolVar(&quiet, "quiet", false, "Disable notifications and the status line")
	flag.BoolVarP(&help, "help", "h", false, "Show help message")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if configPath != "" {
		if err := os.Setenv("CLEANKEYS_CONFIG", configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if quiet {
		cfg.Quiet = true
	}

	if checkOnly && hotkeySpec == "" {
		fmt.Fprintln(os.Stderr, "Error: --check-conflicts requires --hotkey")
		os.Exit(1)
	}

	if hotkeySpec != "" {
		trigger, err := parseHotkey(hotkeySpec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		conflicts := trigger.Conflicts()
		for _, c := range conflicts {
			fmt.Fprintf(os.Stderr, "Warning: %s conflicts with the system shortcut %q\n",
				trigger.Description(), c.Name)
		}

		if checkOnly {
			if len(conflicts) == 0 {
				fmt.Printf("%s has no conflicts\n", trigger.Description())
				os.Exit(0)
			}
			os.Exit(1)
		}

		// The UI decision from the conflict check is the user's: they
		// asked for this trigger, warnings and all.
		cfg.SetTrigger(trigger)
		if err := cfg.Save(config.Path()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist hotkey: %v\n", err)
		}
	}

	mode, err := parseMode(modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	deps := NewDependencies(cfg)
	defer deps.Close()

	app := NewApplication(deps)

	// Unlock on Ctrl-C / SIGTERM as well; a stuck lock would defeat
	// the whole point.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		app.Stop()
	}()

	if err := app.Run(mode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseMode maps a --mode value to a blocker mode.
func parseMode(name string) (blocker.Mode, error) {
	switch name {
	case "keyboard":
		return blocker.ModeKeyboard, nil
	case "mouse":
		return blocker.ModeMouse, nil
	default:
		return blocker.ModeNone, fmt.Errorf("unknown mode %q (use keyboard or mouse)", name)
	}
}

func printUsage() {
	fmt.Println("cleankeys - lock keyboard or mouse input while you clean your devices")
	fmt.Println()
	fmt.Println("Usage: cleankeys [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Unlock with the configured hotkey, or by double-pressing Shift if")
	fmt.Println("nothing is configured. Ctrl-C also unlocks.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  CLEANKEYS_CONFIG  Path to config file")
	fmt.Println("  CLEANKEYS_WINDOW  Double-press window, e.g. 500ms")
	fmt.Println("  CLEANKEYS_QUIET   Disable notifications (true/false)")
	fmt.Println("  CLEANKEYS_NOTIFY  Notify on unlock (true/false)")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/cleankeys/config.yaml")
}

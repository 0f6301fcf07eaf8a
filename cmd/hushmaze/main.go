package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/hushmaze/audio"
	"github.com/lixenwraith/hushmaze/config"
	"github.com/lixenwraith/hushmaze/level"
	"github.com/lixenwraith/hushmaze/spectate"
)

var (
	configFlag = flag.String("config", "hushmaze.toml", "Settings file (missing file uses defaults)")
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/hushmaze.log")
	addrFlag   = flag.String("addr", "", "Spectate listen address, overrides settings")
	seedFlag   = flag.Int64("seed", 0, "Maze seed, overrides settings (0 = keep)")
)

// recoverTerminal restores the terminal and prints the crash before exiting
func recoverTerminal(screen tcell.Screen) {
	if r := recover(); r != nil {
		if screen != nil {
			screen.Fini()
		}
		fmt.Fprintf(os.Stderr, "\n\x1b[31mHUSHMAZE CRASHED: %v\x1b[0m\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
		os.Exit(1)
	}
}

func main() {
	flag.Parse()

	logFile := setupLogging(*debugFlag)
	os.Exit(finish(logFile, run()))
}

// finish reports err and closes the log file, returning the process exit code
func finish(logFile *os.File, err error) int {
	code := 0
	if err != nil {
		log.Printf("hushmaze: %v", err)
		fmt.Fprintf(os.Stderr, "hushmaze: %v\n", err)
		code = 1
	}
	if logFile != nil {
		logFile.Close()
	}
	return code
}

func run() error {
	settings, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	settings.ApplyEnv()
	if *addrFlag != "" {
		settings.Spectate.Addr = *addrFlag
	}
	if *seedFlag != 0 {
		settings.Maze.Seed = *seedFlag
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	engine := audio.NewEngine(level.AudioConfig(settings))
	if settings.Audio.Enabled {
		if err := engine.StartSpeaker(); err != nil {
			log.Printf("audio: %v (continuing without speaker)", err)
		}
	}
	defer engine.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()
	defer recoverTerminal(screen)

	var server *spectate.Server
	if settings.Spectate.Addr != "" {
		server = spectate.NewServer(spectate.Options{
			EdgeThickness: settings.Navigation.EdgeThickness,
			AgentRadius:   settings.Navigation.AgentRadius,
		})
	}

	g, err := newGame(screen, settings, engine, server)
	if err != nil {
		return err
	}
	defer g.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg.Go(func() error {
		// Quitting the game stops the server
		defer cancel()
		return g.run(ctx)
	})
	if server != nil {
		eg.Go(func() error {
			return server.ListenAndServe(ctx, settings.Spectate.Addr)
		})
	}
	return eg.Wait()
}

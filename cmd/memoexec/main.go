// Command memoexec runs each of its arguments as a shell command,
// all concurrently as one group sharing a cancellation token, and
// prints a JSON report of the per-command outcomes. Ctrl-C cancels
// the token, aborting every command still running.
//
// Configuration comes from the environment:
//
//	MEMOEXEC_SHELL    shell to run commands under (default /bin/sh)
//	MEMOEXEC_DIR      working directory for the commands
//	MEMOEXEC_MEMOIZE  run commands as memoized views (default true)
//	MEMOEXEC_VERBOSE  enable detailed library logging
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-json"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"

	"github.com/monopole/memoexec"
	"github.com/monopole/memoexec/spawner"
)

type config struct {
	Shell      string `env:"MEMOEXEC_SHELL" envDefault:"/bin/sh"`
	WorkingDir string `env:"MEMOEXEC_DIR"`
	Memoize    bool   `env:"MEMOEXEC_MEMOIZE" envDefault:"true"`
	Verbose    bool   `env:"MEMOEXEC_VERBOSE"`
}

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log := zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelInfo}),
	))
}

type memberReport struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	Outcome string `json:"outcome"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("bad environment", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Verbose {
		memoexec.VerboseLoggingEnable()
	}
	commands := os.Args[1:]
	if len(commands) == 0 {
		fmt.Fprintln(os.Stderr, "usage: memoexec <command> [command...]")
		os.Exit(2)
	}

	params := spawner.Params{
		Shell:      cfg.Shell,
		WorkingDir: cfg.WorkingDir,
	}
	group := memoexec.NewGroup()
	for _, c := range commands {
		mc := memoexec.New(c, memoexec.WithSpawnParams(params))
		if cfg.Memoize {
			mc = mc.Memoized()
		}
		group.Add(mc)
	}

	tok := memoexec.NewToken()
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	go func() {
		<-interrupted
		slog.Warn("interrupted, cancelling the batch")
		tok.Cancel()
	}()

	err := group.RunAll(tok)
	if err != nil {
		slog.Error("group failed", slog.String("error", err.Error()))
	}

	report(group)
	if err != nil {
		os.Exit(1)
	}
}

// report prints the per-member outcomes as JSON, in member order.
func report(group *memoexec.CommandGroup) {
	outcomes := group.Outcomes()
	members := make([]memberReport, 0, len(group.Members()))
	for _, mc := range group.Members() {
		entry := memberReport{
			ID:      mc.ID().String(),
			Command: mc.Command(),
			Outcome: "ok",
		}
		if err, settled := outcomes[mc.ID().String()]; settled && err != nil {
			entry.Outcome = err.Error()
		} else if !settled {
			entry.Outcome = "did not settle"
		}
		members = append(members, entry)
	}
	out, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		slog.Error("report", slog.String("error", err.Error()))
		return
	}
	fmt.Println(string(out))
}

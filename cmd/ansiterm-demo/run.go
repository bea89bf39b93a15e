package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/lineterm/lineterm"
	"github.com/lineterm/lineterm/internal/config"
	"github.com/lineterm/lineterm/internal/obslog"
	"github.com/lineterm/lineterm/internal/render"
	"github.com/lineterm/lineterm/internal/server"
)

type options struct {
	configPath string
	listenAddr string
	serve      bool
	pretty     bool
}

func defaultOptions() options {
	return options{
		configPath: "ansiterm.toml",
		listenAddr: ":8088",
	}
}

func run(opts options, args []string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.LogLevel = orDefault(cfg.LogLevel, "info")

	log := obslog.New(obslog.Config{Level: cfg.LogLevel, Pretty: opts.pretty}, "ansiterm-demo")
	sessionID := uuid.NewString()
	log = log.With().Str("session_id", sessionID).Logger()

	cmd := exec.Command(args[0], args[1:]...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}
	defer ptmx.Close()

	term := lineterm.NewTerminal()
	strategy := config.BuildStrategy(cfg)
	downgrader := render.NewDowngrader(os.Stdout)

	var srv *server.Server
	var sess *server.Session
	if opts.serve {
		srv = server.New(log)
		sess = server.NewSession(sessionID, log)
	}

	adapterOpts := []lineterm.AdapterOption{
		lineterm.WithStream(writerFunc(func(p []byte) (int, error) {
			line := trimNewline(p)
			if err := downgrader.WriteLine(line); err != nil {
				return 0, err
			}
			if sess != nil {
				return sess.Write(p)
			}
			return len(p), nil
		})),
		lineterm.WithMaxPending(cfg.MaxPending),
		lineterm.WithErrorHandler(func(e *lineterm.AdapterError) {
			log.Warn().Err(e.Err).Str("line", e.Line).Msg("adapter error")
		}),
		lineterm.WithLineEvent(func(line string) {
			log.Debug().Int("line_len", len(line)).Str("plain", render.PlainText(line)).Msg("line flushed")
			if sess != nil {
				sess.Broadcast(line)
			}
		}),
	}

	adapter := lineterm.NewAdapter(term, strategy, adapterOpts...)

	if sess != nil {
		sess.Adapter = adapter
		srv.Register(sess)
		go func() {
			log.Info().Str("addr", opts.listenAddr).Msg("serving session over http")
			if err := srv.Routes().Run(opts.listenAddr); err != nil {
				log.Error().Err(err).Msg("http server exited")
			}
		}()
	}

	watcher, err := config.WatchFile(opts.configPath, func(next config.Config) {
		adapter.SetStrategy(config.BuildStrategy(next))
		log.Info().Str("strategy", next.Strategy).Msg("strategy hot-reloaded")
	})
	if err == nil {
		defer watcher.Stop()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		ptmx.Close()
	}()

	buf := make([]byte, 4096)
	for {
		n, readErr := ptmx.Read(buf)
		if n > 0 {
			adapter.WriteChunk(string(buf[:n]))
		}
		if readErr != nil {
			break
		}
	}

	adapter.Close()
	if srv != nil {
		srv.Unregister(sessionID)
	}
	return cmd.Wait()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func trimNewline(p []byte) string {
	s := string(p)
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

var _ io.Writer = writerFunc(nil)

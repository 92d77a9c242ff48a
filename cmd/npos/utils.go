// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/npos/config"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/lvldb"
)

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	verbosity := ctx.Int(verbosityFlag.Name)
	if verbosity < 0 || verbosity > 5 {
		return nil, errors.Errorf("invalid verbosity %d, want 0-5", verbosity)
	}
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(verbosity))
	log.SetDefault(log.NewLogger(newLogHandler(os.Stderr, level, ctx.Bool(jsonLogsFlag.Name))))
	return level, nil
}

func newLogHandler(w io.Writer, level *slog.LevelVar, json bool) slog.Handler {
	if json {
		return log.JSONHandlerWithLevel(w, level)
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
	}
	return log.NewTerminalHandlerWithLevel(w, level, useColor)
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func openStore(ctx *cli.Context) (*lvldb.LevelDB, string, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		db, err := lvldb.NewMem()
		return db, "memory", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", errors.Wrapf(err, "create data dir [%v]", dir)
	}
	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              normalizeCacheSize(ctx.Int(cacheFlag.Name)),
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "open state database [%v]", path)
	}
	return db, path, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

// startAPIServer serves handler on addr until the returned server is shut down.
func startAPIServer(addr string, handler http.Handler) (*http.Server, string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("API server stopped", "err", err)
		}
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

// handleExitSignal returns a context canceled on the first interrupt or termination signal.
func handleExitSignal() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(exitSignalCh)

		select {
		case sig := <-exitSignalCh:
			log.Info("exit signal received", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/npos/api"
	"github.com/vechain/npos/api/admin/health"
	"github.com/vechain/npos/engine"
	"github.com/vechain/npos/genesis"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "npos",
		Usage:   "Nominated proof of stake simulator",
		Commands: []cli.Command{
			{
				Name:  "run",
				Usage: "bootstrap a network and drive it through scripted sessions",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					cacheFlag,
					sessionsFlag,
					sessionIntervalFlag,
					apiAddrFlag,
					apiCorsFlag,
					enableAPILogsFlag,
					enableMetricsFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: runAction,
			},
			{
				Name:  "digest",
				Usage: "print the state digest of a data dir",
				Flags: []cli.Flag{
					dataDirFlag,
					verbosityFlag,
				},
				Action: digestAction,
			},
			{
				Name:  "verify",
				Usage: "replay the configured network in memory and compare it with a data dir",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					cacheFlag,
					verbosityFlag,
				},
				Action: verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db, location, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing state database..."); db.Close() }()

	eng := engine.New(db, cfg)
	id, err := eng.Init()
	if err != nil {
		return err
	}
	log.Info("network ready", "genesis", id, "state", location)

	exitCtx, exit := handleExitSignal()
	defer exit()
	group, groupCtx := errgroup.WithContext(exitCtx)

	healthStatus := health.New()
	eng.OnSessionEnd(healthStatus.SessionEnded)

	var apiSrv *http.Server
	if addr := ctx.String(apiAddrFlag.Name); addr != "" {
		handler, apiCloser := api.New(eng, api.Options{
			AllowedOrigins:  ctx.String(apiCorsFlag.Name),
			EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
			EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
			LogLevel:        logLevel,
			Health:          healthStatus,
		})
		var url string
		if apiSrv, url, err = startAPIServer(addr, handler); err != nil {
			return err
		}
		log.Info("API server started", "url", url)
		group.Go(func() error {
			<-groupCtx.Done()
			log.Info("stopping API server...")
			defer apiCloser()
			return apiSrv.Shutdown(context.Background())
		})
	}

	group.Go(func() error {
		healthStatus.SetRunning(true)
		defer healthStatus.SetRunning(false)
		err := eng.Run(groupCtx, int(ctx.Uint(sessionsFlag.Name)), ctx.Duration(sessionIntervalFlag.Name))
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		digest, err := eng.Digest()
		if err != nil {
			return err
		}
		log.Info("simulation finished", "digest", digest)
		if apiSrv == nil {
			exit()
		}
		return nil
	})
	return group.Wait()
}

func digestAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.String(dataDirFlag.Name) == "" {
		return errors.New("--data-dir is required")
	}
	db, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	st := state.New(db)
	id, ok, err := genesis.Load(st)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no network found in data dir")
	}
	digest, err := st.Digest()
	if err != nil {
		return err
	}
	fmt.Printf("genesis: %v\ndigest:  %v\n", id, digest)
	return nil
}

func verifyAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.String(dataDirFlag.Name) == "" {
		return errors.New("--data-dir is required")
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	db, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return verifyState(cfg, db, os.Stdout)
}

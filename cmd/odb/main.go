// Copyright 2026 The odb Authors
// This file is part of the odb library.
//
// The odb library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The odb library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the odb library. If not, see <http://www.gnu.org/licenses/>.

// Command odb is the standalone demo binary: it boots the bundled mockvm
// adapter behind a debugger and, per config, an on-stdin CLI and/or a TCP
// server, so the runtime can be driven without embedding it into a real
// host VM.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"

	"gopkg.in/urfave/cli.v1"

	"github.com/obs145628/odb/cliutil"
	"github.com/obs145628/odb/client"
	"github.com/obs145628/odb/debugger"
	"github.com/obs145628/odb/internal/mockvm"
	"github.com/obs145628/odb/log"
	"github.com/obs145628/odb/probeconfig"
	"github.com/obs145628/odb/server"
	"github.com/obs145628/odb/wire"
)

var (
	enabledFlag = cli.BoolFlag{
		Name:  "enabled",
		Usage: "master switch for the debugger runtime",
	}
	noStartFlag = cli.BoolFlag{
		Name:  "nostart",
		Usage: "stop the debugger before the first instruction",
	}
	serverCLIFlag = cli.BoolFlag{
		Name:  "mode-server-cli",
		Usage: "run the interactive stdin/stdout CLI",
	}
	sigHandlerFlag = cli.BoolTFlag{
		Name:  "server-cli-sighandler",
		Usage: "install a SIGINT handler that stops the debugger (default true)",
	}
	tcpFlag = cli.BoolFlag{
		Name:  "mode-tcp",
		Usage: "run the TCP server handler",
	}
	tcpPortFlag = cli.IntFlag{
		Name:  "tcp-port",
		Value: 12644,
		Usage: "TCP listen port",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "odb"
	app.Usage = "out-of-band VM debugger runtime demo"
	app.Flags = []cli.Flag{enabledFlag, noStartFlag, serverCLIFlag, sigHandlerFlag, tcpFlag, tcpPortFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Crit("odb: fatal error", "err", err)
	}
}

// configFromContext starts from probeconfig.Load() (defaults overridden by
// ODB_* environment variables) and then layers any cli flags the operator
// set explicitly on top, mirroring the teacher's flags-then-env precedence
// in cmd/gprobe.
func configFromContext(ctx *cli.Context) (probeconfig.Config, error) {
	cfg, err := probeconfig.Load()
	if err != nil {
		return probeconfig.Config{}, err
	}
	if ctx.IsSet(enabledFlag.Name) {
		cfg.Enabled = ctx.Bool(enabledFlag.Name)
	}
	if ctx.IsSet(noStartFlag.Name) {
		cfg.NoStart = ctx.Bool(noStartFlag.Name)
	}
	if ctx.IsSet(serverCLIFlag.Name) {
		cfg.ModeServerCLI = ctx.Bool(serverCLIFlag.Name)
	}
	if ctx.IsSet(sigHandlerFlag.Name) {
		cfg.ServerCLISigHandler = ctx.BoolT(sigHandlerFlag.Name)
	}
	if ctx.IsSet(tcpFlag.Name) {
		cfg.ModeTCP = ctx.Bool(tcpFlag.Name)
	}
	if ctx.IsSet(tcpPortFlag.Name) {
		cfg.TCPPort = ctx.Int(tcpPortFlag.Name)
	}
	return cfg, nil
}

// demoProgram is the same add-two-numbers fixture used throughout the test
// suite, bundled here so the binary has something to debug out of the box.
func demoProgram() ([]mockvm.Instr, []mockvm.Symbol) {
	code := []mockvm.Instr{
		{Op: mockvm.OpMovi, A: 12, B: int64(mockvm.R0)},
		{Op: mockvm.OpMovi, A: 45, B: int64(mockvm.R1)},
		{Op: mockvm.OpCall, A: 6, SymTgt: true, SymID: 1},
		{Op: mockvm.OpMov, A: int64(mockvm.R0), B: int64(mockvm.R10)},
		{Op: mockvm.OpMovi, A: 0, B: int64(mockvm.R0)},
		{Op: mockvm.OpSys, A: 0},
		{Op: mockvm.OpAdd, A: int64(mockvm.R1), B: int64(mockvm.R0)},
		{Op: mockvm.OpRet},
	}
	syms := []mockvm.Symbol{{Name: "_start", Addr: 0}, {Name: "my_add", Addr: 6}}
	return code, syms
}

func run(ctx *cli.Context) error {
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		log.Info("odb: disabled, exiting")
		return nil
	}

	code, syms := demoProgram()
	vm := mockvm.New(code, syms)
	dbg := debugger.New(vm, debugger.Options{})
	if err := dbg.OnInit(); err != nil {
		return fmt.Errorf("odb: debugger init: %w", err)
	}
	if cfg.NoStart {
		if err := dbg.Stop(); err != nil {
			return fmt.Errorf("odb: nostart: %w", err)
		}
		// Apply the pending stop now, before the loop ticks the first instruction.
		if err := dbg.OnUpdate(); err != nil {
			return fmt.Errorf("odb: nostart: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := server.NewLoop(dbg, vm)
	go loop.Run(runCtx)

	if cfg.ModeServerCLI && cfg.ServerCLISigHandler {
		installSigHandler(runCtx, loop)
	}

	if cfg.ModeTCP {
		go func() {
			if err := serveTCP(runCtx, loop, cfg.TCPPort); err != nil {
				log.Error("odb: tcp server stopped", "err", err)
			}
		}()
	}

	if cfg.ModeServerCLI {
		backend := &client.InProcessBackend{Loop: loop, Ctx: runCtx}
		c := client.New(backend)
		if _, err := c.Connect(); err != nil {
			return fmt.Errorf("odb: connect: %w", err)
		}
		ev := &cliutil.Evaluator{Client: c, Out: os.Stdout}
		return runInteractiveCLI(runCtx, ev)
	}

	<-runCtx.Done()
	return nil
}

// installSigHandler stops the debugger on SIGINT instead of letting the
// process die mid-run, so an operator can always inspect final state. The
// debugger is owned exclusively by loop's goroutine (debugger.Debugger is
// not safe for concurrent use), so the handler never touches it directly —
// it submits a StopReq through the same ReqCh/RespCh path every other
// caller uses, and the main loop's on_tick polling picks it up on the next
// instruction.
func installSigHandler(ctx context.Context, loop *server.Loop) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			log.Info("odb: received interrupt, stopping debugger")
			if err := loop.Submit(ctx, &wire.StopReq{}); err != nil {
				log.Warn("odb: stop on interrupt failed", "err", err)
			}
		case <-ctx.Done():
		}
	}()
}

func serveTCP(ctx context.Context, loop *server.Loop, port int) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	log.Info("odb: tcp server listening", "addr", ln.Addr())
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go func() {
			if err := server.Serve(ctx, loop, conn); err != nil {
				log.Debug("odb: session ended", "err", err)
			}
		}()
	}
}

func runInteractiveCLI(ctx context.Context, ev *cliutil.Evaluator) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		line := scanner.Text()
		if err := ev.Eval(line); err != nil {
			fmt.Fprintf(os.Stdout, "Error: %s\n", err)
		}
	}
	return scanner.Err()
}

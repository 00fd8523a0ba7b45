package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spencer-p/ordering/pkg/clock"
	"github.com/spencer-p/ordering/pkg/config"
	"github.com/spencer-p/ordering/pkg/gc"
	"github.com/spencer-p/ordering/pkg/handlers"
	"github.com/spencer-p/ordering/pkg/logcfg"
	"github.com/spencer-p/ordering/pkg/metrics"
	"github.com/spencer-p/ordering/pkg/node"
	"github.com/spencer-p/ordering/pkg/process"
	"github.com/spencer-p/ordering/pkg/snapshot"
	"github.com/spencer-p/ordering/pkg/transport"
	"github.com/spencer-p/ordering/pkg/util"
	"github.com/spencer-p/ordering/pkg/wire"
	"github.com/spencer-p/ordering/pkg/workload"

	logs "github.com/danmuck/smplog"
	"github.com/gorilla/mux"
)

const (
	TIMEOUT = 5 * time.Second
)

// runner is a started node of any clock kind.
type runner interface {
	node.API
	Stop() error
}

func main() {
	logs.Configure(logcfg.Load())

	env, err := config.Load()
	if err != nil {
		logs.Fatalf(err, "failed to configure")
	}
	logs.Infof("Configured: %+v", env)

	addrs, err := env.Addrs()
	if err != nil {
		logs.Fatalf(err, "failed to read peers")
	}

	var n runner
	switch env.Clock {
	case config.Vector:
		n, err = start(env, addrs, wire.VectorCodec{}, func(node.Link[clock.Vector]) node.Host[clock.Vector] {
			return process.NewVector(env.Pid, env.NProcs)
		})
	case config.Matrix:
		n, err = start(env, addrs, wire.MatrixCodec{}, func(node.Link[clock.Matrix]) node.Host[clock.Matrix] {
			return gc.New(env.Pid, env.NProcs)
		})
	case config.Snapshot:
		n, err = start(env, addrs, wire.MarkerCodec{}, func(l node.Link[clock.Marker]) node.Host[clock.Marker] {
			return snapshot.New(env.Pid, env.NProcs, l.Broadcast)
		})
	}
	if err != nil {
		logs.Fatalf(err, "failed to start node")
	}

	// Create a mux and route handlers
	r := mux.NewRouter()
	r.Use(util.WithLog)
	handlers.New(n).Route(r)
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		ReadTimeout:  TIMEOUT,
		WriteTimeout: TIMEOUT,
	}

	// Run the server watching for errors
	go func() {
		logs.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logs.Fatalf(err, "server exited")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	if env.Rate > 0 {
		go drive(ctx, env, n)
	}

	// Wait for signals to stop the server
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logs.Infof("Shutdown signal received, exiting...")

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), TIMEOUT)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logs.Errorf(err, "shutdown error")
	}
	if err := n.Stop(); err != nil {
		logs.Errorf(err, "failed to stop node")
	}
}

// start listens for peers and runs a node around the host built by newHost.
func start[C any](env config.Config, addrs []string, codec wire.Codec[C], newHost func(node.Link[C]) node.Host[C]) (*node.Node[C], error) {
	tr := transport.NewTCP(env.Pid, addrs, codec)
	if err := tr.ListenAndAccept(); err != nil {
		return nil, err
	}

	n := node.New(newHost(tr), node.Link[C](tr))
	n.Start()
	return n, nil
}

func drive(ctx context.Context, env config.Config, n node.API) {
	d := workload.New(workload.Config{
		Pid:       env.Pid,
		N:         env.NProcs,
		Rate:      env.Rate,
		SendRatio: env.SendRatio,
		Seed:      time.Now().UnixNano(),
	})

	err := d.Run(ctx, func(s workload.Step) error {
		var err error
		switch s.Kind {
		case workload.Send:
			_, err = n.Send(s.To)
		default:
			_, err = n.Exec()
		}
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logs.Errorf(err, "workload stopped")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nstehr/tidewatch/tidewatch-core/config"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/rules"
	"github.com/nstehr/tidewatch/tidewatch-core/sim"
	"github.com/nstehr/tidewatch/tidewatch-core/stats"
	"github.com/nstehr/tidewatch/tidewatch-core/trace"
)

const banner = `
 _____ _     _                     _       _
|_   _(_) __| | _____      ____ _| |_ ___| |__
  | | | |/ _` + "`" + ` |/ _ \ \ /\ / / _` + "`" + ` | __/ __| '_ \
  | | | | (_| |  __/\ V  V / (_| | || (__| | | |
  |_| |_|\__,_|\___| \_/\_/ \__,_|\__\___|_| |_|

Budgeted Swarm Intelligence`

type options struct {
	tuning   string
	opponent string
	seed     int64
	width    int
	height   int
	symmetry string
	rounds   int
	trace    string
	replay   string
	db       string
	observe  string
	verbose  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.tuning, "tuning", "", "tuning YAML overlaid on the embedded defaults")
	flag.StringVar(&opts.opponent, "opponent", "", "tuning YAML whose doctrine team B plays (default: same as team A)")
	flag.Int64Var(&opts.seed, "seed", 0, "map and agent seed (0 picks one from the clock)")
	flag.IntVar(&opts.width, "width", 40, "map width")
	flag.IntVar(&opts.height, "height", 40, "map height")
	flag.StringVar(&opts.symmetry, "symmetry", "random", "map symmetry: rotational, vertical, horizontal or random")
	flag.IntVar(&opts.rounds, "rounds", 2000, "round limit")
	flag.StringVar(&opts.trace, "trace", "", "write a zstd match trace to this path")
	flag.StringVar(&opts.replay, "replay", "", "summarise a recorded trace instead of playing")
	flag.StringVar(&opts.db, "db", "", "record the result in this SQLite database")
	flag.StringVar(&opts.observe, "observe", "", "serve a live websocket feed on this address, e.g. 127.0.0.1:8088")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	if opts.replay != "" {
		err = replay(opts.replay)
	} else {
		err = play(ctx, opts)
	}
	if err != nil {
		slog.Error("tidewatch failed", "error", err)
		os.Exit(1)
	}
}

func parseSymmetry(s string) (model.Symmetry, error) {
	if strings.EqualFold(s, "random") {
		return model.Unknown, nil
	}
	for _, sym := range model.KnownSymmetries {
		if strings.EqualFold(s, sym.String()) {
			return sym, nil
		}
	}
	return model.Unknown, fmt.Errorf("unknown symmetry %q", s)
}

func play(ctx context.Context, opts options) error {
	tun, err := config.Load(opts.tuning)
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}
	sym, err := parseSymmetry(opts.symmetry)
	if err != nil {
		return err
	}
	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	setup := sim.Setup{
		Width:     opts.width,
		Height:    opts.height,
		Symmetry:  sym,
		Seed:      seed,
		Params:    tun.Sim,
		Layout:    tun.Channel,
		Costs:     tun.Costs,
		Nav:       tun.Navigation,
		Doctrines: [2]rules.Doctrine{tun.Doctrine, tun.Doctrine},
	}
	if opts.opponent != "" {
		opp, err := config.Load(opts.opponent)
		if err != nil {
			return fmt.Errorf("load opponent: %w", err)
		}
		setup.Doctrines[1] = opp.Doctrine
	}

	m, err := sim.NewMatch(setup)
	if err != nil {
		return err
	}

	var sinks []trace.Sink
	if opts.trace != "" {
		fw, err := trace.Create(opts.trace)
		if err != nil {
			return fmt.Errorf("create trace: %w", err)
		}
		defer func() {
			if err := fw.Close(); err != nil {
				slog.Error("failed to close trace", "path", opts.trace, "error", err)
			}
		}()
		sinks = append(sinks, fw)
		slog.Info("recording trace", "path", opts.trace)
	}
	if opts.observe != "" {
		obs := trace.NewObserver()
		mux := http.NewServeMux()
		mux.Handle("/observe", obs.Handler())
		srv := &http.Server{Addr: opts.observe, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("observer server failed", "addr", opts.observe, "error", err)
			}
		}()
		defer func() {
			obs.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		sinks = append(sinks, trace.ObserverSink(obs))
		slog.Info("serving live observer feed", "url", "ws://"+opts.observe+"/observe")
	}

	rec := trace.NewRecorder(sinks...)
	if err := rec.Header(trace.HeaderFor(m, seed)); err != nil {
		return fmt.Errorf("record header: %w", err)
	}
	m.Record = rec.Round

	res, runErr := m.Run(ctx, opts.rounds)
	if err := rec.Result(res); err != nil {
		slog.Error("failed to record result", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	fmt.Printf("\nmatch %s: winner %s (%s) after %d rounds, zones %d-%d, robots %d-%d\n",
		res.Match, res.Winner, res.Reason, res.Rounds, res.Zones[0], res.Zones[1], res.Robots[0], res.Robots[1])

	if opts.db != "" {
		if err := store(ctx, opts.db, res, [2]string{setup.Doctrines[0].Name, setup.Doctrines[1].Name}); err != nil {
			return err
		}
	}
	return nil
}

func store(ctx context.Context, path string, res sim.Result, doctrines [2]string) error {
	// The match may have been interrupted; the result is still worth keeping.
	ctx = context.WithoutCancel(ctx)

	st, err := stats.Open(path)
	if err != nil {
		return fmt.Errorf("open stats: %w", err)
	}
	defer st.Close()

	if _, err := st.Record(ctx, res, doctrines); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	standings, err := st.Standings(ctx)
	if err != nil {
		return fmt.Errorf("standings: %w", err)
	}
	for _, s := range standings {
		slog.Info("standing", "doctrine", s.Doctrine, "played", s.Played, "won", s.Won, "drawn", s.Drawn)
	}
	return nil
}

func replay(path string) error {
	r, err := trace.Open(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer r.Close()

	var (
		header trace.Header
		last   sim.RoundRecord
		result *sim.Result
	)
	d := trace.NewDispatcher(nil)
	d.RegisterHandler(trace.TypeHeader, func(env trace.Envelope) error {
		if err := env.Decode(&header); err != nil {
			return err
		}
		slog.Info("trace header", "match", header.Match, "width", header.Width, "height", header.Height,
			"symmetry", header.Symmetry.String(), "zones", len(header.Zones), "walls", len(header.Walls))
		return nil
	})
	d.RegisterHandler(trace.TypeRound, func(env trace.Envelope) error {
		return env.Decode(&last)
	})
	d.RegisterHandler(trace.TypeResult, func(env trace.Envelope) error {
		result = &sim.Result{}
		return env.Decode(result)
	})

	n, err := d.Run(r.Reader())
	if err != nil {
		return fmt.Errorf("replay %s: %w", path, err)
	}
	slog.Info("trace read", "envelopes", n, "last_round", last.Round, "robots", len(last.Robots))
	if result == nil {
		return fmt.Errorf("trace %s has no result", path)
	}
	fmt.Printf("\nmatch %s: winner %s (%s) after %d rounds\n", result.Match, result.Winner, result.Reason, result.Rounds)
	return nil
}

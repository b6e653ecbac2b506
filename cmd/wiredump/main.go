package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	logger "github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-bus/pkg/bus"
	"github.com/ZentaChain/zentalk-bus/pkg/config"
	"github.com/ZentaChain/zentalk-bus/pkg/logging"
	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
	"github.com/ZentaChain/zentalk-bus/pkg/telemetry"
)

var (
	configPath  = flag.String("config", "", "Path to TOML config file")
	inPath      = flag.String("in", "-", "Input file (- for stdin)")
	types       = flag.String("types", "", "Comma separated message names to dump (default all)")
	relative    = flag.Bool("relative", true, "Print timestamps relative to the first frame")
	printConfig = flag.Bool("print-config", false, "Print the effective config and exit")
)

var log = logger.WithField("process", "wiredump")

func main() {
	flag.Parse()

	cfg := loadConfig(*configPath)
	logging.Configure(cfg.Log.Logging())

	if *printConfig {
		data, err := config.Encode(cfg)
		if err != nil {
			log.Fatalf("Failed to encode config: %v", err)
		}
		os.Stdout.Write(data)
		return
	}

	p, err := telemetry.New()
	if err != nil {
		log.Fatalf("Failed to build protocol: %v", err)
	}
	backoff, err := cfg.Poll.Backoff()
	if err != nil {
		log.Fatalf("Invalid poll config: %v", err)
	}

	board := bus.NewBoard(
		bus.WithCopyOnDelivery(cfg.Board.CopyOnDelivery),
		bus.WithLogger(log.WithField("component", "board")),
	)
	q := bus.NewQueue()
	if err := subscribe(board, p, q, *types); err != nil {
		log.Fatalf("Invalid -types: %v", err)
	}

	in, err := openInput(*inPath)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readCtx, readDone := context.WithCancel(ctx)
	readErr := make(chan error, 1)
	go func() {
		readErr <- pump(readCtx, p, bufio.NewReader(in), board)
		readDone()
	}()

	d := &dumper{out: bufio.NewWriter(os.Stdout), relative: *relative}
	for {
		m, err := q.Poll(readCtx, backoff)
		if err != nil {
			break
		}
		d.dump(m)
	}
	for {
		m, ok := q.Remove()
		if !ok {
			break
		}
		d.dump(m)
	}
	if err := d.out.Flush(); err != nil {
		log.WithError(err).Errorln("flush output")
	}

	select {
	case err := <-readErr:
		if err != nil {
			log.Fatalf("Read failed after %d frames: %v", d.count, err)
		}
	case <-ctx.Done():
		log.Warnln("interrupted")
	}
	log.WithField("frames", d.count).Infoln("done")
}

func loadConfig(path string) config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// subscribe registers q for the named message types, or for all of them
// when names is empty.
func subscribe(board *bus.Board, p *protocol.Protocol, q *bus.Queue, names string) error {
	if strings.TrimSpace(names) == "" {
		board.SubscribeAll(q)
		return nil
	}
	for _, name := range strings.Split(names, ",") {
		m, err := p.NewMessageByName(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		board.Subscribe(bus.TypeOf(m), q)
	}
	return nil
}

// pump decodes frames from r and publishes them until EOF.
func pump(ctx context.Context, p *protocol.Protocol, r io.Reader, board *bus.Board) error {
	for ctx.Err() == nil {
		m, err := p.ReadMessage(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		board.Publish(m)
	}
	return nil
}

type dumper struct {
	out      *bufio.Writer
	relative bool
	base     float64
	count    int
}

func (d *dumper) dump(m protocol.Message) {
	if d.count == 0 && d.relative {
		if ts, err := protocol.Timestamp(m); err == nil {
			d.base = ts
		}
	}
	d.count++
	fmt.Fprintf(d.out, "%6d %s\n", d.count, protocol.Dump(m, d.base))
}

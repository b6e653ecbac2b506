package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-bus/pkg/config"
	"github.com/ZentaChain/zentalk-bus/pkg/logging"
	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
	"github.com/ZentaChain/zentalk-bus/pkg/telemetry"
)

var (
	configPath = flag.String("config", "", "Path to TOML config file")
	outPath    = flag.String("out", "-", "Output file (- for stdout)")
	count      = flag.Int("count", 20, "Number of frames to write")
	source     = flag.String("source", "wiregen", "Source name sent in Announce frames")
	byteOrder  = flag.String("order", "", "Byte order override (big or little)")
)

var log = logger.WithField("process", "wiregen")

func main() {
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *byteOrder != "" {
		cfg.Codec.ByteOrder = *byteOrder
	}
	logging.Configure(cfg.Log.Logging())

	order, err := cfg.Codec.Order()
	if err != nil {
		log.Fatalf("Invalid byte order: %v", err)
	}

	p, err := telemetry.New(telemetry.WithByteOrder(order))
	if err != nil {
		log.Fatalf("Failed to build protocol: %v", err)
	}

	out, closeOut, err := openOutput(*outPath)
	if err != nil {
		log.Fatalf("Failed to open output: %v", err)
	}
	defer closeOut()

	if *outPath != "-" {
		printBanner()
	}

	w := bufio.NewWriter(out)
	seq := telemetry.NewSequencer()
	written := 0
	for i := 0; i < *count; i++ {
		m := sample(i, *source)
		if _, err := seq.Stamp(m); err != nil {
			log.Fatalf("Failed to stamp %s: %v", m.Name(), err)
		}
		if err := p.WriteMessage(w, m); err != nil {
			log.WithError(err).WithField("message", m.Name()).Errorln("frame dropped")
			continue
		}
		written++
		log.WithField("frame", protocol.Dump(m, 0)).Debugln("written")
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to flush output: %v", err)
	}

	log.WithFields(logger.Fields{
		"frames": written,
		"order":  cfg.Codec.ByteOrder,
		"out":    *outPath,
	}).Infoln("done")
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

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warnln("close output")
		}
	}, nil
}

// sample cycles through every telemetry message type.
func sample(i int, source string) protocol.Message {
	switch i % 7 {
	case 0:
		return &telemetry.Announce{
			Source:    source,
			Latitude:  45 * math.Sin(float64(i)),
			Longitude: 90 * math.Cos(float64(i)),
			Height:    float32(i),
		}
	case 1:
		return &telemetry.Heartbeat{Uptime: uint32(i), Status: telemetry.StatusNominal, Load: uint8(i % 101)}
	case 2:
		return &telemetry.EntityState{Entity: uint16(i), State: uint8(i % 5), Reason: "cycle"}
	case 3:
		return &telemetry.Measurement{
			I8: int8(-i), U8: uint8(i), I16: int16(-i * 100), U16: uint16(i * 100),
			I32: int32(-i * 1e6), U32: uint32(i * 1e6), I64: -int64(i) << 40, U64: int64(i) << 40,
			F32: float32(i) / 3, F64: float64(i) / 7,
		}
	case 4:
		data := make([]byte, 16)
		for j := range data {
			data[j] = byte(i + j)
		}
		return &telemetry.DataChunk{Offset: uint32(i * len(data)), Data: data}
	case 5:
		return &telemetry.Envelope{
			Origin:  uint16(i),
			TTL:     3,
			Payload: &telemetry.Heartbeat{Uptime: uint32(i), Status: telemetry.StatusDegraded},
		}
	default:
		return &telemetry.Abort{Code: uint16(i), Reason: fmt.Sprintf("abort %d", i)}
	}
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════════╗")
	fmt.Println("║            Zentalk Bus Frame Generator           ║")
	fmt.Println("║        Synthetic telemetry for wire testing      ║")
	fmt.Println("╚═══════════════════════════════════════════════════╝")
	fmt.Println()
}

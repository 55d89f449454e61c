// ABOUTME: Entry point for the PCM bridge command
// ABOUTME: Reads PCM from a source, pushes it through a bridge and into a sink
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/pcmbridge/internal/source"
	"github.com/Resonate-Protocol/pcmbridge/internal/version"
	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/Resonate-Protocol/pcmbridge/pkg/bridge"
)

var (
	inFile      = flag.String("in", "", "Audio file to read (MP3, FLAC). If not specified, uses a test tone")
	floatInput  = flag.Bool("float", false, "Write 32-bit float PCM instead of 16-bit integer")
	loop        = flag.Bool("loop", false, "Restart the input file at end of stream")
	duration    = flag.Duration("duration", 10*time.Second, "Stop after this much audio (0 = until end of input)")
	chunkMs     = flag.Int("chunk-ms", 10, "PCM buffer size per write in milliseconds")
	realtime    = flag.Bool("realtime", false, "Pace writes to the wall clock")
	sinkKind    = flag.String("sink", "file", "Sink: file, ws or play")
	codec       = flag.String("codec", "opus", "Encoded codec for file and ws sinks: opus or pcm")
	outFile     = flag.String("out", "pcmbridge.pkt", "Packet file for -sink file")
	wsAddr      = flag.String("ws", "", "Receiver host:port for -sink ws")
	discover    = flag.Bool("discover", false, "Find the -sink ws receiver via mDNS")
	logFile     = flag.String("log-file", "pcmbridge.log", "Log file path")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(os.Stdout, f))

	log.Printf("Starting %s", version.String())
	log.Printf("Logging to: %s", *logFile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Printf("Error: %v", err)
		f.Close()
		os.Exit(1)
	}
	log.Printf("Done")
}

func run(ctx context.Context) error {
	src, err := source.Open(*inFile, source.Options{Float: *floatInput, Loop: *loop})
	if err != nil {
		return err
	}
	defer src.Close()

	format := src.Format()
	log.Printf("Source: %s", format)
	if msg := floatWarning(format); msg != "" {
		log.Printf("Warning: %s", msg)
	}

	out, err := openSink(ctx, format)
	if err != nil {
		return err
	}

	b := bridge.New(out.sink, bridge.Config{
		StreamIndex: out.stream,
		SampleRate:  format.SampleRate,
		Channels:    format.Channels,
		InputFloat:  *floatInput,
	})

	if !b.Ready() {
		b.Close()
		out.Close()
		return fmt.Errorf("bridge negotiation failed: %s", b.LastError())
	}

	written, pumpErr := pump(ctx, src, b, *chunkMs, audio.TicksFromDuration(*duration), *realtime)
	log.Printf("Wrote %.2fs of audio (%d units)", written.Duration().Seconds(), b.Stats().UnitsWritten)

	if err := b.Finalize(); err != nil && pumpErr == nil {
		pumpErr = err
	}
	b.Close()

	if err := out.Close(); err != nil && pumpErr == nil {
		pumpErr = err
	}
	return pumpErr
}

// floatWarning explains that float input reaches every sink unconverted.
// Sinks are always declared 16-bit PCM, so the samples are misread.
func floatWarning(format audio.Format) string {
	if format.Representation != audio.Float32 {
		return ""
	}
	return fmt.Sprintf("%s input reaches the %s sink unconverted; it expects 16-bit PCM and will misread the samples",
		format.Representation, *sinkKind)
}

// pump copies chunkMs buffers from src into b, stamping each with the
// running frame position, until limit ticks were written (0 = no limit),
// the source ends or ctx is cancelled. It returns the ticks written.
func pump(ctx context.Context, src source.Source, b *bridge.Bridge, chunkMs int, limit audio.Ticks, paced bool) (audio.Ticks, error) {
	format := b.InputFormat()
	blockAlign := format.BlockAlign()

	frames := format.SampleRate * chunkMs / 1000
	if frames < 1 {
		frames = 1
	}
	buf := make([]byte, frames*blockAlign)

	var ticker *time.Ticker
	if paced {
		ticker = time.NewTicker(time.Duration(chunkMs) * time.Millisecond)
		defer ticker.Stop()
	}

	var total int
	for {
		ts := audio.DurationTicks(total, format.SampleRate, blockAlign)
		if limit > 0 && ts >= limit {
			return ts, nil
		}

		select {
		case <-ctx.Done():
			log.Printf("Stopping: %v", ctx.Err())
			return ts, nil
		default:
		}

		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if werr := b.Write(buf[:n], ts); werr != nil {
				return ts, werr
			}
			total += n
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return audio.DurationTicks(total, format.SampleRate, blockAlign), nil
		}
		if err != nil {
			return ts, fmt.Errorf("failed to read source: %w", err)
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
			}
		}
	}
}

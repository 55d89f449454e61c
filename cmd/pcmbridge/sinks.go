// ABOUTME: Sink construction for the PCM bridge command
// ABOUTME: Builds a transcoder over a packet file or WebSocket, or a playback sink
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Resonate-Protocol/pcmbridge/internal/discovery"
	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/Resonate-Protocol/pcmbridge/pkg/sink"
)

const discoverTimeout = 10 * time.Second

// output is a sink the command owns, plus the stream index the bridge feeds
type output struct {
	sink   sink.Sink
	stream uint32
	close  []func() error
}

// Close releases the sink, then whatever it writes into
func (o *output) Close() error {
	var firstErr error
	for _, fn := range o.close {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openSink(ctx context.Context, format audio.Format) (*output, error) {
	switch *sinkKind {
	case "play":
		p := sink.NewPlayback(0)
		return &output{sink: p, close: []func() error{p.Close}}, nil

	case "file":
		w, err := sink.CreateFile(*outFile)
		if err != nil {
			return nil, err
		}
		log.Printf("Writing %s packets to %s", *codec, *outFile)
		return transcoderOutput(w, format)

	case "ws":
		addr, path := *wsAddr, ""
		if addr == "" {
			if !*discover {
				return nil, fmt.Errorf("-sink ws needs -ws or -discover")
			}
			r, err := findReceiver(ctx)
			if err != nil {
				return nil, err
			}
			addr, path = r.Addr(), r.Path
		}

		w, err := sink.DialWebSocket(sink.WebSocketConfig{Addr: addr, Path: path, Codec: *codec})
		if err != nil {
			return nil, err
		}
		log.Printf("Streaming %s packets to %s (session %s)", *codec, addr, w.Session())
		return transcoderOutput(w, format)

	default:
		return nil, fmt.Errorf("unknown sink: %s", *sinkKind)
	}
}

// transcoderOutput adds one stream encoding format's rate and channels to *codec
func transcoderOutput(w sink.PacketWriter, format audio.Format) (*output, error) {
	tc, err := sink.NewTranscoder(sink.TranscoderConfig{Writer: w})
	if err != nil {
		w.Close()
		return nil, err
	}

	stream, err := tc.AddStream(audio.Format{Codec: *codec, SampleRate: format.SampleRate, Channels: format.Channels})
	if err != nil {
		w.Close()
		return nil, err
	}

	return &output{sink: tc, stream: stream, close: []func() error{tc.Close, w.Close}}, nil
}

func findReceiver(ctx context.Context) (*discovery.ReceiverInfo, error) {
	log.Printf("Browsing for receivers (%s)", discovery.ServiceType)

	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	return discovery.FindReceiver(ctx)
}

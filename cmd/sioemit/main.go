// Command sioemit connects to a socket.io server, emits one event and prints
// what comes back.
//
//	sioemit -url http://localhost:3000 -wait 2s chat:message '"hello"' '{"room":1}'
//
// Every argument after the event name is sent as JSON when it parses as JSON
// and as a string otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	hclog "github.com/hashicorp/go-hclog"
	jsoniter "github.com/json-iterator/go"
	"github.com/njones/sioengine"
	"github.com/njones/sioengine/callback"
	"github.com/njones/sioengine/engineio/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("sioemit: %v", err))
		os.Exit(1)
	}
}

type config struct {
	url    string
	file   string
	wait   time.Duration
	ack    bool
	fs     *flag.FlagSet
	values map[string]*string
	debug  *bool
	ssl    *bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("sioemit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := &config{fs: fs, values: map[string]*string{}}
	fs.StringVar(&cfg.url, "url", "http://localhost:3000", "socket.io server `url`")
	fs.StringVar(&cfg.file, "config", "", "YAML options `file`")
	fs.DurationVar(&cfg.wait, "wait", 0, "how long to print incoming packets after the emit")
	fs.BoolVar(&cfg.ack, "ack", false, "ask the server to acknowledge the event and print the answer")

	cfg.values[transport.OptTransport] = fs.String("transport", "", "polling or websocket")
	cfg.values[transport.OptNamespace] = fs.String("namespace", "", "namespace to connect to")
	cfg.values[transport.OptParser] = fs.String("parser", "", "json or msgpack")
	cfg.values[transport.OptTimeout] = fs.String("timeout", "", "connect timeout")
	cfg.debug = fs.Bool("debug", false, "log the protocol traffic")
	cfg.ssl = fs.Bool("check-ssl", false, "verify the server certificate")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return nil, ErrUsage
	}
	return cfg, nil
}

// overrides layers the flags that were set on top of the config file.
func (cfg *config) overrides() (map[string]interface{}, error) {
	overrides := map[string]interface{}{}
	if cfg.file != "" {
		f, err := os.Open(cfg.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if overrides, err = sioengine.LoadOptions(f); err != nil {
			return nil, err
		}
	}

	cfg.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			overrides[sioengine.OptDebug] = *cfg.debug
		case "check-ssl":
			overrides[sioengine.OptCheckSSL] = *cfg.ssl
		default:
			if v, ok := cfg.values[f.Name]; ok {
				overrides[f.Name] = *v
			}
		}
	})
	return overrides, nil
}

// eventArgs decodes each argument as JSON, keeping it as a string when it
// is not valid JSON.
func eventArgs(raw []string) []interface{} {
	args := make([]interface{}, 0, len(raw))
	for _, s := range raw {
		var v interface{}
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			v = s
		}
		args = append(args, v)
	}
	return args
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	overrides, err := cfg.overrides()
	if err != nil {
		return err
	}

	level := hclog.Warn
	if sioengine.MergeOptions(sioengine.DefaultOptions(), overrides).Debug() {
		level = hclog.Trace
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "sioemit",
		Output: stderr,
		Level:  level,
	})

	e, err := transport.New(cfg.url, overrides, sioengine.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := e.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Warn("close", "error", err)
		}
	}()

	event := cfg.fs.Arg(0)
	if cfg.ack {
		return emitWithAck(ctx, e, event, eventArgs(cfg.fs.Args()[1:]), cfg.timeout(), stdout)
	}

	if err := e.Emit(ctx, event, eventArgs(cfg.fs.Args()[1:])...); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(stdout, "-> %s\n", event)

	if cfg.wait <= 0 {
		return nil
	}
	return printIncoming(ctx, e, cfg.wait, stdout)
}

// timeout is how long to wait for an acknowledgement.
func (cfg *config) timeout() time.Duration {
	if cfg.wait > 0 {
		return cfg.wait
	}
	return 5 * time.Second
}

type acker interface {
	EmitWithAck(context.Context, callback.Callback, string, ...interface{}) error
}

func emitWithAck(ctx context.Context, e sioengine.Engine, event string, args []interface{}, wait time.Duration, stdout io.Writer) error {
	a, ok := e.(acker)
	if !ok {
		return ErrNoAcks.F(e.Name())
	}

	acked := make(chan []interface{}, 1)
	cb := callback.FuncAny(func(v ...interface{}) error { acked <- v; return nil })
	if err := a.EmitWithAck(ctx, cb, event, args...); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(stdout, "-> %s\n", event)

	select {
	case v := <-acked:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		color.New(color.FgCyan).Fprintf(stdout, "<- ACK %s\n", data)
		return nil
	case <-time.After(wait):
		return ErrNoAck.F(event, wait)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func printIncoming(ctx context.Context, e sioengine.Engine, wait time.Duration, stdout io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	for {
		pac, err := e.Read(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		data, err := json.Marshal(pac.Data)
		if err != nil {
			data = []byte(fmt.Sprint(pac.Data))
		}
		color.New(color.FgCyan).Fprintf(stdout, "<- %s %s\n", pac, data)
	}
}

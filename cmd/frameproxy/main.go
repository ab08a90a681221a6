package main

import (
	"context"
	"net/http"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"gray4bin/pkg/device/remote"
	"gray4bin/pkg/device/ssd1322"
	"gray4bin/pkg/device/virtual"
	"gray4bin/pkg/proto"
)

var serial = flag.String("serial", "ttyACM0", "serial name, or \"virtual\" to only log frames")
var baud = flag.Int("baud", 115200, "serial baud rate")
var spiBus = flag.String("spi", "", "SPI bus of an SSD1322 panel (e.g. SPI0.0), used instead of serial")
var dc = flag.String("dc", "GPIO25", "data/command pin of the SSD1322 panel")
var listen = flag.String("listen", ":9123", "listen addr")
var debug = flag.Bool("debug", false, "set debug")

func newLogger() (*zap.Logger, error) {
	if *debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}

func newSink(logger *zap.Logger, lifecycle fx.Lifecycle) (proto.Sink, error) {
	if *spiBus != "" {
		d, err := ssd1322.Open(*spiBus, *dc, logger.With(zap.String("via", "ssd1322")))
		if err != nil {
			return nil, err
		}
		lifecycle.Append(fx.Hook{OnStop: func(ctx context.Context) error {
			return d.Close()
		}})
		return d, nil
	}

	if *serial == "virtual" {
		return virtual.Mock(logger), nil
	}

	s := proto.NewSerial(*serial)
	if err := s.Open(&proto.Options{DTR: true, RTS: true, BaudRate: *baud}); err != nil {
		return nil, err
	}
	lifecycle.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		return s.Close()
	}})
	return s, nil
}

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			func() *http.Server {
				return &http.Server{Addr: *listen}
			},
			newLogger,
			newSink,
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}

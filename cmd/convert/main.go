package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"gray4bin/pkg/convert"
	"gray4bin/pkg/storage"
)

const (
	exitOK = iota
	exitArgument
	exitDecode
	exitSizeMismatch
	exitIO
)

const usageText = `Usage: convert [flags] <input_image> [output_file]

Arguments:
  <input_image>   Path or http(s) URL of the input image (required).
  [output_file]   Optional. Path to the output binary file. If not provided, the output
                  will be named as the input image with '-4bit.bin' appended.

Flags:
`

type options struct {
	target   storage.Target
	resample imaging.ResampleFilter
	preview  string
	serial   string
	baud     int
	spi      string
	dc       string
	remote   string
	dryRun   bool
	debug    bool
}

type cli struct {
	flags  *flag.FlagSet
	out    io.Writer
	help   *bool
	filter *string
	opts   options
}

func newCLI(out io.Writer) *cli {
	c := &cli{
		flags: flag.NewFlagSet("convert", flag.ContinueOnError),
		out:   out,
	}

	c.flags.SetOutput(io.Discard)
	c.flags.SortFlags = false
	c.help = c.flags.BoolP("help", "h", false, "show this help message and exit")
	c.filter = c.flags.String("filter", convert.DefaultFilter, "resample filter ("+strings.Join(convert.FilterNames(), ", ")+")")
	c.flags.StringVar(&c.opts.preview, "preview", "", "also write a PNG rendering of the 4-bit frame")
	c.flags.StringVar(&c.opts.serial, "serial", "", "also stream the frame to the serial port matching this name")
	c.flags.IntVar(&c.opts.baud, "baud", 115200, "serial baud rate")
	c.flags.StringVar(&c.opts.spi, "spi", "", "also draw the frame on an SSD1322 panel on this SPI bus (e.g. SPI0.0)")
	c.flags.StringVar(&c.opts.dc, "dc", "GPIO25", "data/command pin of the SSD1322 panel")
	c.flags.StringVar(&c.opts.remote, "remote", "", "also send the frame to a frameproxy at host:port")
	c.flags.BoolVar(&c.opts.dryRun, "dry-run", false, "convert and log the frame without writing anything")
	c.flags.BoolVar(&c.opts.debug, "debug", false, "set debug")

	return c
}

func (c *cli) usage(w io.Writer) {
	fmt.Fprint(w, usageText)
	fmt.Fprint(w, c.flags.FlagUsages())
}

// parse returns flag.ErrHelp after printing usage when help is requested.
func (c *cli) parse(args []string) (*options, error) {
	if err := c.flags.Parse(args); err != nil {
		return nil, errors.Wrap(convert.ErrArgument, err.Error())
	}

	if *c.help {
		c.usage(c.out)
		return nil, flag.ErrHelp
	}

	switch rest := c.flags.Args(); {
	case len(rest) == 0:
		return nil, errors.Wrap(convert.ErrArgument, "input image is required")
	case len(rest) > 2:
		return nil, errors.Wrapf(convert.ErrArgument, "unexpected arguments: %s", strings.Join(rest[2:], " "))
	default:
		c.opts.target.Source = rest[0]
		if len(rest) == 2 {
			c.opts.target.Destination = rest[1]
		}
	}

	f, err := convert.ParseFilter(*c.filter)
	if err != nil {
		return nil, err
	}
	c.opts.resample = f

	return &c.opts, nil
}

func newLogger(opts *options) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !opts.debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.DisableStacktrace = true
	}
	return cfg.Build()
}

func newConverter(opts *options, logger *zap.Logger) *convert.Converter {
	return convert.New(
		convert.WithFilter(opts.resample),
		convert.WithLogger(logger.With(zap.String("via", "converter"))),
	)
}

func appOptions(opts *options, fs afero.Fs) fx.Option {
	return fx.Options(
		fx.NopLogger,
		fx.Supply(opts),
		fx.Provide(
			func() afero.Fs { return fs },
			newLogger,
			storage.NewLoader,
			storage.NewWriter,
			newConverter,
			newRunner,
		),
	)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, convert.ErrArgument):
		return exitArgument
	case errors.Is(err, convert.ErrDecode):
		return exitDecode
	case errors.Is(err, convert.ErrSizeMismatch):
		return exitSizeMismatch
	default:
		return exitIO
	}
}

func main() {
	c := newCLI(os.Stdout)
	opts, err := c.parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		c.usage(os.Stderr)
		os.Exit(exitCode(err))
	}

	var runErr error
	app := fx.New(
		appOptions(opts, afero.NewOsFs()),
		fx.Invoke(func(r *runner, logger *zap.Logger) {
			runErr = r.Run()
			if runErr != nil {
				logger.With(zap.Error(runErr)).Error("conversion failed")
			}
			_ = logger.Sync()
		}),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitIO)
	}

	os.Exit(exitCode(runErr))
}

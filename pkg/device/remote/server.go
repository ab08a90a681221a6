package remote

import (
	"context"
	"net"
	"net/http"
	"net/rpc"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"gray4bin/pkg/bitmap"
	"gray4bin/pkg/proto"
)

// Handler serves frames received over net/rpc to dev.
func Handler(dev proto.Sink, logger *zap.Logger) (http.Handler, error) {
	srv := rpc.NewServer()
	if err := srv.Register(&Service{dev: dev, log: logger}); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)
	return mux, nil
}

func Proxy(dev proto.Sink, srv *http.Server, lifecycle fx.Lifecycle, logger *zap.Logger) error {
	h, err := Handler(dev, logger)
	if err != nil {
		return err
	}
	srv.Handler = h

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.With(zap.String("addr", ln.Addr().String()), zap.String("sink", dev.Name())).Info("listening")
			go func() {
				if err := srv.Serve(ln); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Error("serve failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

type Service struct {
	dev proto.Sink
	log *zap.Logger
}

func (s *Service) DrawFrame(req *DrawFrameRequest, _ *EmptyResponse) error {
	if len(req.Frame) != bitmap.Size {
		return errors.Wrapf(bitmap.ErrSizeMismatch, "got %d bytes, want %d", len(req.Frame), bitmap.Size)
	}

	if err := s.dev.Send(req.Frame); err != nil {
		return errors.Wrapf(err, "send to %s failed", s.dev.Name())
	}

	s.log.With(zap.String("sink", s.dev.Name())).Debug("frame forwarded")
	return nil
}

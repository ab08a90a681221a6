package storage

import (
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// MaxDownload caps the body of a downloaded source image.
const MaxDownload = 32 << 20

func NewLoader(fs afero.Fs, logger *zap.Logger) *Loader {
	return &Loader{
		fs:  fs,
		cli: resty.New().SetTimeout(30 * time.Second).SetDoNotParseResponse(true),
		max: MaxDownload,
		log: logger,
	}
}

type Loader struct {
	fs  afero.Fs
	cli *resty.Client
	max int64
	log *zap.Logger
}

// Open returns the raw bytes of source, a local path or an http(s) URL.
// The caller closes the reader.
func (l *Loader) Open(source string) (io.ReadCloser, error) {
	if IsURL(source) {
		return l.download(source)
	}

	f, err := l.fs.Open(source)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s failed", source)
	}

	return f, nil
}

func (l *Loader) download(u string) (io.ReadCloser, error) {
	resp, err := l.cli.R().Get(u)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s failed", u)
	}

	if resp.IsError() {
		_ = resp.RawBody().Close()
		return nil, errors.Errorf("download %s failed: %s", u, resp.Status())
	}

	l.log.With(zap.String("url", u), zap.Int64("length", resp.RawResponse.ContentLength)).Debug("downloading")
	body := resp.RawBody()
	return &limitedBody{
		r:      io.LimitReader(body, l.max+1),
		Closer: body,
		max:    l.max,
		url:    u,
	}, nil
}

// limitedBody fails the read once more than max bytes have arrived.
type limitedBody struct {
	r io.Reader
	io.Closer
	max  int64
	read int64
	url  string
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.max {
		return 0, errors.Errorf("download %s exceeds %s", b.url, bytesize.New(float64(b.max)))
	}
	return n, err
}

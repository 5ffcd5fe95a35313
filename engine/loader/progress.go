package loader

import (
	"context"
	"io"
)

// progressReader counts bytes as they are read, reports them to fn and aborts once ctx is done.
type progressReader struct {
	ctx    context.Context
	r      io.Reader
	total  int64
	loaded int64
	fn     ProgressFunc
}

func newProgressReader(ctx context.Context, r io.Reader, total int64, fn ProgressFunc) io.Reader {
	return &progressReader{ctx: ctx, r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.fn != nil {
			p.fn(p.loaded, p.total)
		}
	}
	return n, err
}

// Percent converts a progress report into a percentage in [0, 100], or -1 when total is unknown.
func Percent(loaded, total int64) float64 {
	if total <= 0 {
		return -1
	}
	return min(100, float64(loaded)/float64(total)*100)
}

// Package progress decorates byte sources so upload transports can report
// fractional completion to the caller.
package progress

import "io"

// Func receives the cumulative upload fraction in [0.0, 1.0].
type Func func(fraction float64)

// Reader wraps a byte source of known total length and reports a cumulative
// fraction after every non-empty read. When the total is zero or unknown the
// callback is never invoked.
type Reader struct {
	r     io.Reader
	total int64
	read  int64
	cb    Func
}

func NewReader(r io.Reader, total int64, cb Func) *Reader {
	return &Reader{r: r, total: total, cb: cb}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.cb != nil && p.total > 0 {
			f := float64(p.read) / float64(p.total)
			if f > 1.0 {
				f = 1.0
			}
			p.cb(f)
		}
	}
	return n, err
}

// Len returns the declared total length, independent of how many bytes have
// been consumed. HTTP clients need it for the Content-Length header before
// the body is read.
func (p *Reader) Len() int64 {
	return p.total
}

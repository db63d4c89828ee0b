package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

const (
	prettyIndent = "    "
	recordIndent = prettyIndent + prettyIndent
)

// JSONLines writes one compact JSON object per line.
type JSONLines struct {
	w     *bufio.Writer
	c     io.Closer
	enc   *json.Encoder
	count int
}

// NewJSONLines writes to w. If w is an io.Closer it is closed by Close.
func NewJSONLines(w io.Writer) *JSONLines {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	c, _ := w.(io.Closer)
	return &JSONLines{w: bw, c: c, enc: enc}
}

func (j *JSONLines) Write(rec engine.CommentRecord) error {
	if err := j.enc.Encode(rec); err != nil {
		return err
	}
	j.count++
	return nil
}

func (j *JSONLines) Count() int { return j.count }

func (j *JSONLines) Close() error {
	err := j.w.Flush()
	if j.c != nil {
		if cerr := j.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Pretty writes a single indented {"comments": [...]} document.
//
// Each record is held until the next one arrives, so the separator is only
// written between records and the document stays valid however the stream ends.
type Pretty struct {
	w       *bufio.Writer
	c       io.Closer
	pending []byte
	count   int
	err     error
}

// NewPretty writes to w. If w is an io.Closer it is closed by Close.
func NewPretty(w io.Writer) *Pretty {
	bw := bufio.NewWriter(w)
	c, _ := w.(io.Closer)
	p := &Pretty{w: bw, c: c}
	_, p.err = bw.WriteString("{\n" + prettyIndent + `"comments": [` + "\n")
	return p
}

func (p *Pretty) Write(rec engine.CommentRecord) error {
	if p.err != nil {
		return p.err
	}
	var buf bytes.Buffer
	buf.WriteString(recordIndent)
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(recordIndent, prettyIndent)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	if err := p.flushPending(",\n"); err != nil {
		return err
	}
	p.pending = bytes.TrimRight(buf.Bytes(), "\n")
	p.count++
	return nil
}

func (p *Pretty) flushPending(sep string) error {
	if p.pending == nil {
		return nil
	}
	if _, err := p.w.Write(p.pending); err != nil {
		p.err = err
		return err
	}
	if _, err := p.w.WriteString(sep); err != nil {
		p.err = err
		return err
	}
	p.pending = nil
	return nil
}

func (p *Pretty) Count() int { return p.count }

func (p *Pretty) Close() error {
	err := p.err
	if err == nil {
		err = p.flushPending("\n")
	}
	if err == nil {
		_, err = p.w.WriteString(prettyIndent + "]\n}")
	}
	if err == nil {
		err = p.w.Flush()
	}
	if p.c != nil {
		if cerr := p.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

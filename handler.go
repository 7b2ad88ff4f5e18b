package main

import (
	"errors"
	"log"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"github.com/funny-falcon/bitheap/alloc"
)

var jsonConfig = jsoniter.Config{
	OnlyTaggedField: true,
	CaseSensitive:   true,
}.Froze()

// server exposes one heap over HTTP. The heap itself knows nothing about
// concurrency, so every request holds the lock for its whole duration.
type server struct {
	sync.Mutex
	heap *alloc.Heap
}

type allocOut struct {
	Off  int    `json:"off"`
	Pool string `json:"pool"`
}

type errorOut struct {
	Error string `json:"error"`
}

func (s *server) handler(ctx *fasthttp.RequestCtx) {
	s.Lock()
	defer s.Unlock()
	path := string(ctx.Path())
	logf("%s %s, args: %s", ctx.Method(), path, ctx.QueryArgs())
	switch {
	case ctx.IsGet():
		s.getHandler(ctx, path)
	case ctx.IsPost():
		s.postHandler(ctx, path)
	default:
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
	}
}

func (s *server) getHandler(ctx *fasthttp.RequestCtx, path string) {
	switch path {
	case "/stats":
		writeJSON(ctx, fasthttp.StatusOK, s.heap.Stats())
	case "/map":
		ctx.SetContentType("text/plain")
		if err := s.heap.Map(ctx); err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		}
	case "/fullmap":
		ctx.SetContentType("text/plain")
		if err := s.heap.FullMap(ctx); err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		}
	case "/classify":
		off, ok := queryInt(ctx, "off")
		if !ok {
			return
		}
		pool := alloc.Invalid
		if off < s.heap.Capacity() {
			pool = s.heap.Classify(s.heap.Addr(alloc.Ptr(off)))
		}
		writeJSON(ctx, fasthttp.StatusOK, allocOut{Off: off, Pool: pool.String()})
	case "/read":
		off, ok := queryInt(ctx, "off")
		if !ok {
			return
		}
		n, ok := queryInt(ctx, "len")
		if !ok || !s.inArena(ctx, off, n) {
			return
		}
		ctx.SetContentType("application/octet-stream")
		ctx.SetBody(s.heap.Bytes(s.heap.Addr(alloc.Ptr(off)), n))
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *server) postHandler(ctx *fasthttp.RequestCtx, path string) {
	switch path {
	case "/alloc":
		n, ok := queryInt(ctx, "size")
		if !ok {
			return
		}
		s.doAlloc(ctx, n)
	case "/free":
		off, ok := queryInt(ctx, "off")
		if !ok {
			return
		}
		// offsets outside the arena are ignored, like any foreign pointer
		if off < s.heap.Capacity() {
			s.heap.Dealloc(s.heap.Addr(alloc.Ptr(off)))
		}
	case "/write":
		off, ok := queryInt(ctx, "off")
		if !ok {
			return
		}
		body := ctx.PostBody()
		if !s.inArena(ctx, off, len(body)) {
			return
		}
		copy(s.heap.Bytes(s.heap.Addr(alloc.Ptr(off)), len(body)), body)
	case "/reinit":
		if err := s.heap.Reinit(); err != nil {
			log.Print(err)
			writeJSON(ctx, fasthttp.StatusInternalServerError, errorOut{err.Error()})
		}
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *server) doAlloc(ctx *fasthttp.RequestCtx, n int) {
	p, err := s.heap.TryAlloc(n)
	switch {
	case err == nil:
		writeJSON(ctx, fasthttp.StatusOK, allocOut{
			Off:  s.heap.ToOffset(p),
			Pool: s.heap.Classify(p).String(),
		})
	case errors.Is(err, alloc.ErrZeroSize):
		writeJSON(ctx, fasthttp.StatusBadRequest, errorOut{err.Error()})
	default:
		logf("alloc %d: %v", n, err)
		writeJSON(ctx, fasthttp.StatusInsufficientStorage, errorOut{err.Error()})
	}
}

func (s *server) inArena(ctx *fasthttp.RequestCtx, off, n int) bool {
	if n <= 0 || off+n > s.heap.Capacity() {
		writeJSON(ctx, fasthttp.StatusBadRequest, errorOut{"range outside the arena"})
		return false
	}
	return true
}

func queryInt(ctx *fasthttp.RequestCtx, key string) (int, bool) {
	v, err := ctx.QueryArgs().GetUint(key)
	if err != nil {
		logf("bad %s: %v", key, err)
		writeJSON(ctx, fasthttp.StatusBadRequest, errorOut{"bad " + key})
		return 0, false
	}
	return v, true
}

func writeJSON(ctx *fasthttp.RequestCtx, code int, v interface{}) {
	stream := jsonConfig.BorrowStream(nil)
	stream.WriteVal(v)
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	ctx.SetBody(stream.Buffer())
	jsonConfig.ReturnStream(stream)
}

package main

import (
	"flag"
	"log"

	"github.com/valyala/fasthttp"

	"github.com/funny-falcon/bitheap/alloc"
)

var port = flag.String("port", "8080", "port to listen")
var size = flag.Int("size", 1<<16, "usable arena capacity in bytes")
var debug = flag.Bool("debug", false, "trace requests and heap events")

func main() {
	log.SetFlags(log.Lmicroseconds | log.Lshortfile)
	flag.Parse()

	heap, err := alloc.New(*size)
	if err != nil {
		log.Fatal(err)
	}
	if *debug {
		heap.Log = "heap"
	}
	st := heap.Stats()
	log.Printf("arena ready: capacity %d, reserved %d", st.Capacity, st.Reserved)

	s := &server{heap: heap}
	err = fasthttp.ListenAndServe(":"+*port, s.handler)
	if err != nil {
		log.Fatal(err)
	}
}

func logf(format string, args ...interface{}) {
	if *debug {
		log.Printf(format, args...)
	}
}

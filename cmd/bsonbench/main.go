// Command bsonbench measures Writer and Reader throughput building and
// parsing a synthetic document of a given field count, the way jibbyperf
// measured this package's ancestor against a JSON input file.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/xdg-go/okmongo"
)

func main() {
	fields := flag.Int("fields", 1000, "number of int32 fields in the synthetic document")
	iters := flag.Int("iters", 10000, "number of build/parse iterations")
	flag.Parse()

	var w okmongo.Writer
	buildDoc(&w, *fields)
	doc := append([]byte{}, w.Bytes()...)

	benchWrite(*fields, *iters)
	benchReadValue(doc, *iters)
	benchReadStream(doc, *iters)
}

func buildDoc(w *okmongo.Writer, fields int) {
	w.Clear()
	w.Document()
	for i := 0; i < fields; i++ {
		w.Int32(okmongo.Elem(i), int32(i))
	}
	w.Pop()
}

func benchWrite(fields, iters int) {
	var w okmongo.Writer
	start := time.Now()
	for i := 0; i < iters; i++ {
		buildDoc(&w, fields)
	}
	elapsed := time.Since(start)
	reportResult("writer", w.Len(), iters, elapsed)
}

func benchReadValue(doc []byte, iters int) {
	start := time.Now()
	for i := 0; i < iters; i++ {
		v := okmongo.NewDocument(doc)
		var sum int64
		for it := okmongo.NewIterator(v); !it.Done(); it.Next() {
			sum += int64(it.Value().GetInt32())
		}
	}
	elapsed := time.Since(start)
	reportResult("value+iterator", int32(len(doc)), iters, elapsed)
}

type countingSink struct {
	okmongo.NopSink
	n int64
}

func (c *countingSink) Int32(v int32) { c.n += int64(v) }

func benchReadStream(doc []byte, iters int) {
	start := time.Now()
	for i := 0; i < iters; i++ {
		sink := &countingSink{}
		r := okmongo.NewReader(sink)
		if _, err := r.Consume(doc); err != nil {
			log.Fatal(err)
		}
		if !r.Done() {
			log.Fatal("stream benchmark document did not finish parsing")
		}
	}
	elapsed := time.Since(start)
	reportResult("reader", int32(len(doc)), iters, elapsed)
}

func reportResult(label string, size int32, iters int, elapsed time.Duration) {
	total := float64(size) * float64(iters)
	throughput := total / float64(elapsed.Microseconds())
	fmt.Printf("%15s %8.2f MB/s (%d iters, %d bytes/doc)\n", label, throughput, iters, size)
}

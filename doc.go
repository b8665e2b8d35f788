// Package datatable provides a parallel chunked reader for delimited text
// data. It partitions an in-memory byte range into speculative chunks,
// dispatches them to worker goroutines, reconciles tentative chunk
// boundaries against the record structure each worker actually discovers,
// and commits parsed rows into a column-oriented store in input order.
//
// The package is the work-partitioning and ordering engine: the byte-level
// field parser and the destination column store are pluggable through the
// ParseContext and ColumnStore interfaces. Concrete defaults are provided
// (DelimitedParseContext, ArrowColumnStore) so the reader works end-to-end
// without supplying either.
//
// # Basic usage
//
//	cfg := datatable.ReaderConfig{
//		SOF:      0,
//		EOF:      int64(len(data)),
//		NThreads: 4,
//	}
//	r, err := datatable.NewReader(data, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := r.ReadAll(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Store.GetNRows())
//
// # Loading from a file
//
// LoadFile reads an optionally compressed file fully into memory (the
// core never streams from a non-seekable source) and builds a ReaderConfig
// from it:
//
//	data, cfg, cleanup, err := datatable.LoadFile("data.csv.gz", datatable.ReaderConfig{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cleanup()
//	r, err := datatable.NewReader(data, cfg)
package datatable

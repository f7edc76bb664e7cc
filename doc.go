// Package epublate translates the textual content of EPUB books while
// preserving the book's internal structure: chapter files, markup, paragraph
// boundaries, images, styles, and metadata all survive the round trip.
//
// The pipeline extracts text nodes from each chapter document, segments them
// into sentence-bounded chunks, sends each chunk to a pluggable translation
// backend under a fixed prompt contract, and reassembles the translated
// chunks back into valid markup. Bilingual output (original and translation
// interleaved) is supported.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/epublate/epublate"
//	    "github.com/epublate/epublate/backend"
//	    "github.com/epublate/epublate/pipeline"
//	)
//
//	func main() {
//	    b := backend.NewOpenAIBackend(backend.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    runner, err := pipeline.NewRunner(epublate.Config{
//	        TargetLanguage: "fr_FR",
//	        Genre:          "Mystery",
//	    }, b)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    report, err := runner.Run(context.Background(), "book.epub", "book.fr.epub")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(report.Summary())
//	}
package epublate

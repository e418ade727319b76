// Package invoicer provides an embeddable invoice issuance engine for Go
// applications.
//
// Invoicer is designed as a library, not a service. Import it directly
// into your application; HTTP routing, authentication, and mail transport
// stay outside. It provides:
//
//   - Collision-free sequential invoice numbering backed by an atomic
//     durable counter (INV-00001, INV-00002, ...)
//   - A deterministic layout engine producing positioned draw instructions
//     for a fixed A4 invoice design
//   - A PDF emitter that paints instructions in order
//   - Draft/issue record lifecycle over a pluggable store
//   - Lifecycle hooks for audit and notification plugins
//
// # Quick Start
//
// Create an issuer with your preferred store:
//
//	import (
//	    "github.com/elevatehq/invoicer"
//	    "github.com/elevatehq/invoicer/store/memory"
//	)
//
//	iss := invoicer.New(memory.New())
//	if err := iss.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer iss.Stop()
//
// Create a draft and issue it:
//
//	rec := &invoice.Record{
//	    ClientName: "Acme Events",
//	    LineItems: []invoice.LineItem{
//	        invoice.NewLineItem("Cleaning", 1000, "KSH"),
//	        invoice.NewLineItem("Supplies", 250, "KSH"),
//	    },
//	}
//	if err := iss.CreateDraft(ctx, rec); err != nil { ... }
//	issued, err := iss.Issue(ctx, rec.ID) // binds INV-00001
//
// Produce the document:
//
//	doc, name, err := iss.Document(ctx, issued.ID) // invoice-INV-00001.pdf
//
// # Numbering
//
// Every number comes from one atomic increment-and-fetch against the
// durable counter in the store. Two racing issuance requests can never
// observe the same value, across any number of process instances. Numbers
// consumed by an aborted issuance are never reused: gaps are tolerated,
// duplicates are not.
//
// # Layout
//
// The layout engine is a pure function from record to draw instructions:
// the same record always yields the same document. Totals are computed by
// the money model before rendering and passed in, never re-summed by the
// engine. When a long table would collide with the reserved footer the
// engine either paginates (default) or fails closed, by configuration.
//
// All monetary amounts use exact decimal arithmetic; display formatting
// keeps the precision the amount was given ("KSH 1,250", "KSH 1,250.5").
//
// # TypeID
//
// Records use TypeID storage keys, distinct from the sequential invoice
// number:
//
//	inv_01h455vb4pex5vsknk084sn02q  // record key, assigned at draft time
//	INV-00042                       // invoice number, bound at issuance
package invoicer

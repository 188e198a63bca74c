// Package hoshintest provides documents for tests in other packages.
package hoshintest

import "github.com/dusk-indust/hoshin/internal/hoshin"

// Texts are five statements that pass the prefix and word-count rules.
var Texts = [5]string{
	"I/We must establish weekly planning rituals",
	"I/We must define measurable revenue goals",
	"I/We must improve cross-team communication cadence",
	"I/We must automate repetitive reporting tasks",
	"I/We must reduce blocked dependency handoffs",
}

// Ready returns a named document with valid statements, orders 1..5 and no
// directions set.
func Ready(name string) hoshin.Document {
	doc := hoshin.NewDocument(name)
	for i := range doc.Statements {
		doc.Statements[i].Text = Texts[i]
		doc.Statements[i].InitialOrder = hoshin.IntPtr(i + 1)
	}
	return doc
}

// Complete returns Ready(name) with every connection pointing from the lower
// slot to the higher one. Its ranking is s1..s5.
func Complete(name string) hoshin.Document {
	doc := Ready(name)
	for i := range doc.Connections {
		p := doc.Connections[i].Pair
		doc.Connections[i].Direction = &hoshin.Direction{From: p[0], To: p[1]}
	}
	return doc
}

// Package nlp provides the text handling used to annotate reviews.
//
// A Context bundles the three linguistic resources the annotator depends on:
//   - a rule-based English tokenizer that splits punctuation and clitics
//   - a fixed English stopword table
//   - a polarity model: VADER by default, or an embedded lexicon with
//     intensifier and negation handling
//
// The Context is built once with New and passed explicitly to every caller.
// It is safe for concurrent use after construction.
package nlp

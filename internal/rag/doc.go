// Package rag answers questions from stored document chunks.
//
// The Engine embeds a question, searches for the most similar chunks and then
// decides, from the best similarity score, whether to answer with confidence,
// answer with a low-confidence note, or refuse. Refusal is a normal outcome,
// not an error; embedding and search failures are always returned as errors.
package rag

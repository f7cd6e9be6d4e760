// Package docqa provides a local-first document question answering engine.
// It ingests documents into an encrypted SQLite store, indexes chunk
// embeddings for semantic retrieval, and answers natural language questions
// by streaming tokens from a locally running language model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, ollama/, gopsutil/).
package docqa

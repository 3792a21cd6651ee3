// Package writers turns aligned hits into serialized outputs.
//
// Writers own all presentation knowledge (TSV, JSON, JSONL, XLSX). The search
// engine stays domain-only and the pipeline stays orchestration-only.
// JSON and JSONL go through pkg/api (v1) for a stable wire format.
package writers

// Package engine is the boundary to the external statistical engine. Each procedure is an R
// script run in a fresh Rscript process: arguments travel as a JSON document and results come
// back the same way. Fitted models never live in this process, they are passed around as the
// engine's own serialized objects.
//
// Process launches are rate limited and launch failures that are not raised by the script
// itself are retried with exponential backoff.
package engine

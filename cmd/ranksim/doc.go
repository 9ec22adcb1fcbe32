// Ranksim inspects the scoring configuration of a Ranker from the command
// line: it prints the norm decode table, quantizes values through the norm
// codec, evaluates the scoring formulas for given collection statistics,
// and moves norm snapshots in and out of a configured store.
//
// Usage:
//
//	ranksim [--config FILE] [--verbose] <command> [flags] [args]
//
// Commands:
//
//	table                 print the 256-entry norm decode table
//	encode VALUE...       quantize values to norm bytes
//	decode BYTE...        decode norm bytes
//	score                 evaluate the scoring formulas
//	export --field F      write a norm snapshot of a field
//	import                restore a norm snapshot
package main

package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

// maxOccurrences is how many transactions may share one dedup key before
// further repeats are discarded. Statements legitimately repeat entries
// (two identical ATM fees on one day), so the first repeat is kept.
const maxOccurrences = 2

// Deduplicator removes in-batch repeats. The key set is shared across all
// files of one batch so a duplicate spanning two uploads is still caught.
type Deduplicator struct {
	keyCounts    map[string]int
	checkNumbers map[string]bool
}

// NewDeduplicator creates an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		keyCounts:    make(map[string]int),
		checkNumbers: make(map[string]bool),
	}
}

// Deduplicate filters txns against everything this deduplicator has seen.
// Checks dedupe by check number alone: a check number is unique within an
// account, so a second sighting is a duplicate no matter its date or
// amount. The operation is idempotent over its output: feeding the result
// through a fresh deduplicator changes nothing.
func (d *Deduplicator) Deduplicate(txns []model.RawTransaction) []model.RawTransaction {
	out := make([]model.RawTransaction, 0, len(txns))
	for i := range txns {
		txn := txns[i]

		if txn.CheckNumber != "" {
			if d.checkNumbers[txn.CheckNumber] {
				slog.Debug("Dropping duplicate check",
					"check_number", txn.CheckNumber,
					"amount", txn.Amount)
				continue
			}
			d.checkNumbers[txn.CheckNumber] = true
			out = append(out, txn)
			continue
		}

		key := txn.DedupKey()
		if d.keyCounts[key] >= maxOccurrences {
			slog.Debug("Dropping repeated transaction",
				"key", key,
				"occurrences", d.keyCounts[key])
			continue
		}
		d.keyCounts[key]++
		out = append(out, txn)
	}
	return out
}

// PostedLookup answers whether transactions were already posted in a prior
// batch. Backed by the storage layer's posted-transaction table; kept as an
// interface so the duplicate contract stays a pure function over it.
type PostedLookup interface {
	GetPostedHashes(ctx context.Context, hashes []string) (map[string]bool, error)
	GetPostedCheckNumbers(ctx context.Context, checkNumbers []string) (map[string]bool, error)
}

// FlagDuplicates flags batch transactions that repeat within the batch or
// already exist in the posted history. It mutates nothing: the caller
// decides what to do with the flags.
func FlagDuplicates(ctx context.Context, txns []model.RawTransaction, lookup PostedLookup) ([]model.DuplicateFlag, error) {
	var flags []model.DuplicateFlag

	seenHashes := make(map[string]int)
	seenChecks := make(map[string]int)

	hashes := make([]string, 0, len(txns))
	var checkNumbers []string
	for i := range txns {
		hashes = append(hashes, txns[i].Hash())
		if txns[i].CheckNumber != "" {
			checkNumbers = append(checkNumbers, txns[i].CheckNumber)
		}
	}

	var postedHashes, postedChecks map[string]bool
	if lookup != nil {
		var err error
		postedHashes, err = lookup.GetPostedHashes(ctx, hashes)
		if err != nil {
			return nil, fmt.Errorf("failed to query posted hashes: %w", err)
		}
		if len(checkNumbers) > 0 {
			postedChecks, err = lookup.GetPostedCheckNumbers(ctx, checkNumbers)
			if err != nil {
				return nil, fmt.Errorf("failed to query posted check numbers: %w", err)
			}
		}
	}

	for i := range txns {
		hash := txns[i].Hash()
		check := txns[i].CheckNumber

		switch {
		case check != "" && postedChecks[check]:
			flags = append(flags, model.DuplicateFlag{Index: i, Source: model.DuplicateInDatabase, Match: check})
		case check != "" && seenChecks[check] > 0:
			flags = append(flags, model.DuplicateFlag{Index: i, Source: model.DuplicateInBatch, Match: check})
		case postedHashes[hash]:
			flags = append(flags, model.DuplicateFlag{Index: i, Source: model.DuplicateInDatabase, Match: hash})
		case seenHashes[hash] >= maxOccurrences:
			// Same tolerance as Deduplicate: a single repeat can be a
			// genuine second entry; a third occurrence cannot.
			flags = append(flags, model.DuplicateFlag{Index: i, Source: model.DuplicateInBatch, Match: hash})
		}

		seenHashes[hash]++
		if check != "" {
			seenChecks[check]++
		}
	}

	return flags, nil
}

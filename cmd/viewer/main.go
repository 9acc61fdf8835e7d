// Viewer is a read-only inspection CLI for the chat database. It scans
// a key prefix and renders the records as a table, which is handy when
// debugging ordering or membership issues without stopping the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"collab-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data/chat", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, conv:, member:, user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				table.Append(describe(key, v))
				rows++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	color.Cyan.Printf("Scanned prefix %q: %d record(s)\n\n", *prefix, rows)
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	// BypassLockGuard allows opening while the server holds the lock.
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}

// describe renders one record per key family. Unknown prefixes and
// undecodable values degrade to a RAW row instead of aborting the scan.
func describe(key string, value []byte) []string {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var record struct {
			Sender   int64  `cbor:"sender"`
			Kind     string `cbor:"kind"`
			Body     string `cbor:"body"`
			FileName string `cbor:"file_name"`
			At       int64  `cbor:"at"`
		}
		if err := cbor.Unmarshal(value, &record); err != nil {
			break
		}
		detail := record.Body
		if record.Kind == string(domain.MessageFile) {
			detail = record.FileName
		}
		return []string{key, record.Kind, formatNano(record.At), fmt.Sprintf("sender=%d %s", record.Sender, detail)}
	case strings.HasPrefix(key, "conv:"):
		var record struct {
			Name      string `cbor:"name"`
			CreatedBy int64  `cbor:"created_by"`
			CreatedAt int64  `cbor:"created_at"`
			Kind      string `cbor:"kind"`
		}
		if err := cbor.Unmarshal(value, &record); err != nil {
			break
		}
		return []string{key, record.Kind, formatNano(record.CreatedAt), fmt.Sprintf("name=%q created_by=%d", record.Name, record.CreatedBy)}
	case strings.HasPrefix(key, "user:"):
		var record struct {
			Name   string `cbor:"name"`
			Active bool   `cbor:"active"`
		}
		if err := cbor.Unmarshal(value, &record); err != nil {
			break
		}
		return []string{key, "USER", "", fmt.Sprintf("name=%q active=%t", record.Name, record.Active)}
	}
	return []string{key, "RAW", "", fmt.Sprintf("%d byte(s)", len(value))}
}

func formatNano(nano int64) string {
	return time.Unix(0, nano).UTC().Format("15:04:05")
}

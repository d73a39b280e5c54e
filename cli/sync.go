// ABOUTME: CRM sync CLI commands
// ABOUTME: Runs Pipedrive and Redtail imports and merges CSV files
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/brokerdesk/models"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

// SyncCommand imports from the named sources, or from both when none is given.
// A failing source does not stop the others.
func SyncCommand(ctx context.Context, syncer *crmsync.Syncer, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	_ = fs.Parse(args)

	sources := fs.Args()
	if len(sources) == 0 {
		sources = []string{models.SourcePipedrive, models.SourceRedtail}
	}

	var errs []error
	for _, source := range sources {
		fmt.Printf("Syncing %s...\n", source)
		res, err := syncer.Sync(ctx, source)
		if err != nil {
			fmt.Println(errorStyle.Render("  ✗ " + err.Error()))
			errs = append(errs, err)
			continue
		}
		fmt.Println(okStyle.Render("  " + res.Message))
		fmt.Printf("  %d created, %d updated\n", res.Merge.Created, res.Merge.Updated)
	}

	return errors.Join(errs...)
}

// ImportCSVCommand merges the clients in a CSV file. Use "-" to read stdin.
func ImportCSVCommand(syncer *crmsync.Syncer, args []string) error {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: import-csv <file|->")
	}

	data, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	res, err := syncer.ImportCSV(string(data))
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", fs.Arg(0), err)
	}

	fmt.Println(res.Message)
	fmt.Printf("  %d created, %d updated\n", res.Merge.Created, res.Merge.Updated)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

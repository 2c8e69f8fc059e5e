// icview prints a dispatch profile snapshot as a per-site polymorphism
// report.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/hollis/verdin/vm/dispatch"
)

var log = commonlog.GetLogger("verdin.icview")

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	megaOnly := flag.Bool("mega", false, "Show only megamorphic sites")
	minMisses := flag.Uint64("min-misses", 0, "Hide sites with fewer misses")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: icview [options] <snapshot-file>\n\n")
		fmt.Fprintf(os.Stderr, "Prints a per-call-site inline cache report from a dispatch snapshot.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	path := flag.Arg(0)
	snap, err := dispatch.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "icview: %v\n", err)
		os.Exit(1)
	}
	log.Infof("loaded snapshot %s (%d sites)", snap.Session, len(snap.Sites))

	sites := snap.Sites
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Owner != sites[j].Owner {
			return sites[i].Owner < sites[j].Owner
		}
		return sites[i].Ordinal < sites[j].Ordinal
	})

	fmt.Printf("snapshot %s taken %s (max depth %d)\n\n", snap.Session, snap.TakenAt.Format("2006-01-02 15:04:05"), snap.MaxDepth)
	fmt.Printf("%-32s %-16s %-12s %5s %10s %10s %8s\n", "SITE", "SELECTOR", "STATE", "DEPTH", "HITS", "MISSES", "REBUILDS")

	var hits, misses uint64
	var mega int
	shown := 0
	for _, site := range sites {
		hits += site.Hits
		misses += site.Misses
		if site.State == "megamorphic" {
			mega++
		}
		if *megaOnly && site.State != "megamorphic" {
			continue
		}
		if site.Misses < *minMisses {
			continue
		}
		fmt.Printf("%-32s %-16s %-12s %5d %10d %10d %8d\n",
			fmt.Sprintf("%s[%d]", site.Owner, site.Ordinal),
			site.Selector, site.State, site.Depth, site.Hits, site.Misses, site.Rebuilds)
		shown++
	}

	fmt.Printf("\n%d sites shown (%d total, %d megamorphic)\n", shown, len(sites), mega)
	if total := hits + misses; total > 0 {
		fmt.Printf("aggregate hit rate: %.1f%%\n", float64(hits)*100/float64(total))
	}
}

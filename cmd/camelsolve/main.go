// Command camelsolve runs the probability solver against a board
// described on the command line and prints the resulting odds tables.
package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strconv"
	"strings"

	"github.com/GenerallyIntelligent/stockcamel/internal/accum"
	"github.com/GenerallyIntelligent/stockcamel/internal/camel"
	"github.com/GenerallyIntelligent/stockcamel/internal/solver"
	"github.com/GenerallyIntelligent/stockcamel/internal/transposition"
	"github.com/dustin/go-humanize"
)

var (
	depth      = flag.Int("depth", 6, "search depth, in plies")
	numWorkers = flag.Int("workers", runtime.NumCPU(), "number of solver goroutines")
	camelsFlag = flag.String("camels", "0:0,0:1,0:2,0:3,0:4", "comma-separated tile:position placements, one per camel in order")
	oasisFlag  = flag.String("oasis", "", "comma-separated oasis tile indices")
	desertFlag = flag.String("desert", "", "comma-separated desert tile indices")
	ttFlag     = flag.String("tt", "array", "transposition strategy: array, ristretto, or off")
	ttCapacity = flag.Int("tt-capacity", 1<<20, "transposition table capacity, in entries")
)

func main() {
	flag.Parse()

	placements, err := parsePlacements(*camelsFlag)
	if err != nil {
		log.Fatalf("invalid -camels: %v", err)
	}
	oasisTiles, err := parseTileSet(*oasisFlag)
	if err != nil {
		log.Fatalf("invalid -oasis: %v", err)
	}
	desertTiles, err := parseTileSet(*desertFlag)
	if err != nil {
		log.Fatalf("invalid -desert: %v", err)
	}

	root := camel.New(placements, oasisTiles, desertTiles)

	tables, closeTables, err := buildTables(*ttFlag, *ttCapacity)
	if err != nil {
		log.Fatalf("building transposition tables: %v", err)
	}
	if closeTables != nil {
		defer closeTables()
	}

	gameOdds, roundOdds, tileOdds, leaves, err := solver.SolveProbabilities(root, *depth, *numWorkers, tables)
	if err != nil {
		log.Fatalf("solve failed: %v", err)
	}

	fmt.Printf("solved depth=%d workers=%d (%s round-terminal leaves)\n\n", *depth, *numWorkers, humanize.Comma(int64(leaves)))
	fmt.Println("Round-finish odds:")
	fmt.Print(roundOdds)
	fmt.Println("\nGame-finish odds:")
	fmt.Print(gameOdds)
	fmt.Println("\nNext-tile-landing odds:")
	fmt.Print(tileOdds)
}

func buildTables(mode string, capacity int) (*solver.Tables, func(), error) {
	switch mode {
	case "off":
		return nil, nil, nil
	case "array":
		return &solver.Tables{
			Round: transposition.NewArrayTable[solver.RoundEntry](capacity),
			Game:  transposition.NewArrayTable[accum.PositionAccumulator](capacity),
		}, nil, nil
	case "ristretto":
		roundTable, err := transposition.NewRistrettoTable[solver.RoundEntry](int64(capacity))
		if err != nil {
			return nil, nil, err
		}
		gameTable, err := transposition.NewRistrettoTable[accum.PositionAccumulator](int64(capacity))
		if err != nil {
			roundTable.Close()
			return nil, nil, err
		}
		return &solver.Tables{Round: roundTable, Game: gameTable}, func() {
			roundTable.Close()
			gameTable.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown -tt value %q (want array, ristretto, or off)", mode)
	}
}

func parsePlacements(s string) ([camel.NumCamels]camel.Placement, error) {
	var out [camel.NumCamels]camel.Placement
	parts := strings.Split(s, ",")
	if len(parts) != camel.NumCamels {
		return out, fmt.Errorf("want %d tile:position pairs, got %d", camel.NumCamels, len(parts))
	}
	for i, p := range parts {
		tile, pos, err := parseTileColonPosition(p)
		if err != nil {
			return out, fmt.Errorf("camel %d: %w", i, err)
		}
		out[i] = camel.Placement{Tile: tile, Position: pos}
	}
	return out, nil
}

func parseTileColonPosition(s string) (tile, pos int, err error) {
	halves := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(halves) != 2 {
		return 0, 0, fmt.Errorf("expected tile:position, got %q", s)
	}
	tile, err = strconv.Atoi(halves[0])
	if err != nil {
		return 0, 0, err
	}
	pos, err = strconv.Atoi(halves[1])
	if err != nil {
		return 0, 0, err
	}
	return tile, pos, nil
}

func parseTileSet(s string) ([camel.TrackSize]bool, error) {
	var out [camel.TrackSize]bool
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	for _, field := range strings.Split(s, ",") {
		tile, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return out, err
		}
		if tile < 0 || tile >= camel.TrackSize {
			return out, fmt.Errorf("tile %d out of range [0,%d)", tile, camel.TrackSize)
		}
		out[tile] = true
	}
	return out, nil
}

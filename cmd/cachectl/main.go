// Command cachectl operates a cache segment file directly (create, put,
// get, delete, stats, compact), the same flag-parsing shape
// cmd/{mysqldef,psqldef,...} use for their own subcommand-free option sets.
package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"go.uber.org/zap"

	"github.com/mtgsearch/mtgsearch/cache"
	"github.com/mtgsearch/mtgsearch/util"
)

type options struct {
	Segment string `long:"segment" description:"Path to the cache segment file" value-name:"path" required:"true"`
	Create  bool   `long:"create" description:"Create a new segment instead of opening an existing one"`
	MaxItems uint64 `long:"max-items" description:"Segment capacity when creating" value-name:"n" default:"10000"`
	DryRun  bool   `long:"dry-run" description:"For the compact operation, report without mutating"`
	Help    bool   `long:"help" description:"Show this help"`
}

func parseOptions(args []string) (*options, []string) {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options] <get|put|delete|touch|stats|compact> [key] [value]"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	return &opts, rest
}

func openOrCreate(opts *options, logger *zap.Logger) (*cache.CacheSegment, error) {
	cfg := cache.Config{
		Path:   opts.Segment,
		Logger: logger,
		Layout: cache.LayoutParams{
			MaxItems:      opts.MaxItems,
			AvgKeyBytes:   32,
			AvgValueBytes: 256,
		},
	}
	if opts.Create {
		return cache.CreateSegment(cfg)
	}
	return cache.OpenSegment(cfg)
}

func main() {
	opts, args := parseOptions(os.Args[1:])
	if len(args) == 0 {
		fmt.Println("No operation given!")
		os.Exit(1)
	}

	logger, err := util.NewLogger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	cs, err := openOrCreate(opts, logger)
	if err != nil {
		log.Fatalf("attach segment: %v", err)
	}
	defer cs.Detach()

	op := args[0]
	rest := args[1:]

	switch op {
	case "get":
		if len(rest) != 1 {
			log.Fatal("get requires exactly one key argument")
		}
		val, err := cs.Get([]byte(rest[0]))
		if err != nil {
			log.Fatalf("get: %v", err)
		}
		if val == nil {
			fmt.Println("(miss)")
			return
		}
		fmt.Println(base64.StdEncoding.EncodeToString(val))
	case "put":
		if len(rest) != 2 {
			log.Fatal("put requires key and value arguments")
		}
		if err := cs.Put([]byte(rest[0]), []byte(rest[1])); err != nil {
			log.Fatalf("put: %v", err)
		}
	case "delete":
		if len(rest) != 1 {
			log.Fatal("delete requires exactly one key argument")
		}
		if err := cs.Delete([]byte(rest[0])); err != nil {
			log.Fatalf("delete: %v", err)
		}
	case "touch":
		if len(rest) != 1 {
			log.Fatal("touch requires exactly one key argument")
		}
		if err := cs.Touch([]byte(rest[0])); err != nil {
			log.Fatalf("touch: %v", err)
		}
	case "stats":
		stats, err := cs.Stats()
		if err != nil {
			log.Fatalf("stats: %v", err)
		}
		pp.Println(stats)
	case "compact":
		report, err := cs.Compact(opts.DryRun)
		if err != nil {
			log.Fatalf("compact: %v", err)
		}
		pp.Println(report)
	default:
		log.Fatalf("unknown operation %q", op)
	}
}

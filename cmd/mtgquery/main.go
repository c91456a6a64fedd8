// Command mtgquery compiles a card search query into a backend-agnostic
// plan and prints it, the way cmd/{mysqldef,psqldef,...} parse flags with
// go-flags and then hand off to the library packages that do the work.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mtgsearch/mtgsearch/compiler"
	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/query"
	"github.com/mtgsearch/mtgsearch/store"
	"github.com/mtgsearch/mtgsearch/util"
)

var version string

type options struct {
	Dialect string `long:"dialect" description:"Target SQL dialect for :pN placeholder substitution (mysql, postgres, mssql, sqlite)" value-name:"dialect" default:"postgres"`
	Prompt  bool   `long:"prompt" description:"Read the query interactively from stdin instead of argv"`
	Help    bool   `long:"help" description:"Show this help"`
	Version bool   `long:"version" description:"Show this version"`
}

func parseOptions(args []string) (*options, []string) {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options] 'query string'"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	return &opts, rest
}

func readQuery(opts *options, args []string) (string, error) {
	if opts.Prompt {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Print("query> ")
		}
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read query from stdin: %w", err)
			}
			return "", fmt.Errorf("no query string given on stdin")
		}
		return scanner.Text(), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no query string given")
	}
	if len(args) > 1 {
		return "", fmt.Errorf("multiple query strings given: %v", args)
	}
	return args[0], nil
}

func main() {
	logger, err := util.NewLogger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	opts, args := parseOptions(os.Args[1:])
	queryString, err := readQuery(opts, args)
	if err != nil {
		log.Fatal(err)
	}
	logger.Debug("parsed query string", zap.String("query", queryString))

	reg, err := fields.NewDefaultRegistry()
	if err != nil {
		log.Fatalf("build field registry: %v", err)
	}

	expr, directives, err := query.Parse(queryString, reg)
	if err != nil {
		log.Fatalf("parse query: %v", err)
	}

	p, err := compiler.Compile(expr, directives, reg)
	if err != nil {
		log.Fatalf("compile query: %v", err)
	}

	pp.Println(p)

	style, err := placeholderStyle(opts.Dialect)
	if err != nil {
		log.Fatal(err)
	}
	rendered, _ := store.BuildQuery(p, "cards", style)
	fmt.Println(rendered)
}

func placeholderStyle(dialect string) (store.PlaceholderStyle, error) {
	switch dialect {
	case "mysql", "sqlite":
		return store.PlaceholderQuestion, nil
	case "postgres":
		return store.PlaceholderDollar, nil
	case "mssql":
		return store.PlaceholderAtP, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", dialect)
	}
}

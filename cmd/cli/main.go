package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	gqlgraph "github.com/ritamzico/gqlgraph"
	"github.com/ritamzico/gqlgraph/internal/httpserver"
)

var (
	graphFile string
	port      int
	config    string
)

var rootCmd = &cobra.Command{
	Use:   "gqlgraph",
	Short: "gqlgraph — embeddable property-graph query engine",
}

var queryCmd = &cobra.Command{
	Use:   "query [gql-statement]",
	Short: "Run a single GQL statement and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := gqlgraph.New()
		if graphFile != "" {
			if err := eng.LoadFile(graphFile, "default"); err != nil {
				return fmt.Errorf("loading graph: %w", err)
			}
		}
		sess := eng.NewSession()
		res, err := eng.Query(sess, args[0])
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive GQL session",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := gqlgraph.New()
		if graphFile != "" {
			if err := eng.LoadFile(graphFile, "default"); err != nil {
				return fmt.Errorf("loading graph: %w", err)
			}
		}
		runRepl(eng)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := gqlgraph.New()
		if graphFile != "" {
			if err := eng.LoadFile(graphFile, "default"); err != nil {
				return fmt.Errorf("loading graph: %w", err)
			}
		}
		cfg, err := httpserver.LoadConfig(config)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		return httpserver.Serve(cfg, eng, eng.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&graphFile, "graph", "", "path to a JSON graph file to load as the default graph")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	serveCmd.Flags().StringVar(&config, "config", "", "path to a YAML server config file")

	rootCmd.AddCommand(queryCmd, replCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const helpText = `gqlgraph interactive REPL

Commands:
  new <name>            Create a new empty graph
  load <name> <file>    Load a graph from a JSON file into <name>
  save <name> <file>    Save graph <name> to a JSON file
  use <name>            Set the active graph for this session
  help                  Show this help message
  exit / quit           Exit the REPL

Any other input is sent as a GQL statement against the active graph, e.g.:
  MATCH (n:Person) RETURN n.name
  INSERT (:Person {name: 'Ada'})
  CALL db.labels()
`

func runRepl(eng *gqlgraph.Engine) {
	sess := eng.NewSession()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("gqlgraph — embeddable property-graph query engine")
	fmt.Println(`Type "help" for available commands.`)
	fmt.Println()

	for {
		fmt.Printf("[%s]> ", sess.CurrentGraph)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		switch strings.ToLower(parts[0]) {
		case "exit", "quit":
			return
		case "help":
			fmt.Print(helpText)
		case "new":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: new <name>")
				continue
			}
			if _, err := eng.Storage.CreateGraph(parts[1]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			sess.CurrentGraph = parts[1]
			fmt.Printf("created empty graph %q\n", parts[1])
		case "use":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: use <name>")
				continue
			}
			sess.CurrentGraph = parts[1]
		case "load":
			if len(parts) < 3 {
				fmt.Fprintln(os.Stderr, "usage: load <name> <file>")
				continue
			}
			if err := eng.LoadFile(parts[2], parts[1]); err != nil {
				fmt.Fprintf(os.Stderr, "error loading %q: %v\n", parts[2], err)
				continue
			}
			fmt.Printf("loaded %q from %s\n", parts[1], parts[2])
		case "save":
			if len(parts) < 3 {
				fmt.Fprintln(os.Stderr, "usage: save <name> <file>")
				continue
			}
			if err := eng.SaveFile(parts[2], parts[1]); err != nil {
				fmt.Fprintf(os.Stderr, "error saving %q: %v\n", parts[1], err)
				continue
			}
			fmt.Printf("saved %q to %s\n", parts[1], parts[2])
		default:
			res, err := eng.Query(sess, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "query error: %v\n", err)
				continue
			}
			printResult(res)
		}
	}
}

func printResult(res gqlgraph.Result) {
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	if len(res.Columns) == 0 {
		return
	}
	fmt.Println(strings.Join(res.Columns, " | "))
	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			if v, ok := row.Get(col); ok {
				cells[i] = v.Signature()
			} else {
				cells[i] = "null"
			}
		}
		fmt.Println(strings.Join(cells, " | "))
	}
}

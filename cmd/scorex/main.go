// Command scorex is the expression compiler CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thomasrohde/scorex/pkg/compiler"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
	"github.com/thomasrohde/scorex/pkg/help"
	"github.com/thomasrohde/scorex/pkg/runtime"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: scorex <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: eval, check, dump, fmt, funcs, repl, help")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "eval":
		os.Exit(cmdEval(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "dump":
		os.Exit(cmdDump(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "funcs":
		os.Exit(cmdFuncs())
	case "repl":
		os.Exit(cmdRepl())
	case "help", "--help", "-h":
		os.Exit(cmdHelp(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func cmdEval(args []string) int {
	var source string
	pretty := false
	bindings := make(map[string]float64)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--bind":
			if i+1 < len(args) {
				i++
				if !parseBinding(args[i], bindings) {
					fmt.Fprintf(os.Stderr, "invalid binding %q (want name=value)\n", args[i])
					return 1
				}
			}
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				source = args[i]
			}
		}
	}

	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: scorex eval <expr> [--bind name=value]... [--pretty]")
		return 1
	}

	source, exitCode := readSource(source, pretty)
	if exitCode != 0 {
		return exitCode
	}

	eng := runtime.New()
	value, err := eng.Evaluate(source, bindings)
	if err != nil {
		if ce, ok := err.(*compiler.CompileError); ok {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(ce.Diagnostics, pretty))
			return 2
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return 4
	}

	fmt.Println(strconv.FormatFloat(value, 'g', -1, 64))
	return 0
}

func cmdCheck(args []string) int {
	var source string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				source = args[i]
			}
		}
	}

	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: scorex check <expr> [--pretty]")
		return 1
	}

	source, exitCode := readSource(source, pretty)
	if exitCode != 0 {
		return exitCode
	}

	eng := runtime.New()
	diags := eng.Check(source)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}

	if pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return 0
}

func cmdDump(args []string) int {
	var source string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				source = args[i]
			}
		}
	}

	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: scorex dump <expr> [--pretty]")
		return 1
	}

	source, exitCode := readSource(source, pretty)
	if exitCode != 0 {
		return exitCode
	}

	eng := runtime.New()
	expr, err := eng.Compile(source)
	if err != nil {
		if ce, ok := err.(*compiler.CompileError); ok {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(ce.Diagnostics, pretty))
			return 2
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return 4
	}

	if vars := expr.Variables(); len(vars) > 0 {
		fmt.Printf("variables: %s\n", strings.Join(vars, ", "))
	}
	fmt.Print(expr.Disassemble())
	return 0
}

func cmdFmt(args []string) int {
	var source string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				source = args[i]
			}
		}
	}

	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: scorex fmt <expr>")
		return 1
	}

	source, exitCode := readSource(source, pretty)
	if exitCode != 0 {
		return exitCode
	}

	eng := runtime.New()
	formatted, err := eng.Format(source)
	if err != nil {
		if ce, ok := err.(*compiler.CompileError); ok {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(ce.Diagnostics, pretty))
			return 2
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return 4
	}

	fmt.Println(formatted)
	return 0
}

func cmdFuncs() int {
	fmt.Print(help.FunctionIndex())
	return 0
}

func cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if topic == "" {
		fmt.Print(help.QUICKREF)
		return 0
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return 1
	}
	fmt.Print(content)
	return 0
}

// parseBinding splits a name=value pair and records it.
func parseBinding(arg string, bindings map[string]float64) bool {
	name, valueStr, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		return false
	}
	bindings[strings.TrimSpace(name)] = value
	return true
}

func readSource(arg string, pretty bool) (string, int) {
	if arg != "-" {
		return arg, 0
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("error reading stdin: %s", err), nil, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", 1
	}
	return strings.TrimSpace(string(data)), 0
}

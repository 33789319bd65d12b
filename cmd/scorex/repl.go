package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/scorex/pkg/compiler"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
	"github.com/thomasrohde/scorex/pkg/runtime"
)

const prompt = ">> "

func cmdRepl() int {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	eng := runtime.New()
	bindings := make(map[string]float64)

	line.SetCompleter(func(input string) []string {
		return completions(eng, bindings, input)
	})

	historyFile := filepath.Join(os.TempDir(), ".scorex_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("scorex repl")
	fmt.Println("Type 'exit' or Ctrl+D to quit; 'name = value' binds a variable")
	fmt.Println("Type ':vars' to list bindings, ':dump <expr>' for a listing")
	fmt.Println("")

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Println("^C")
				continue
			}
			if err == io.EOF {
				fmt.Println("")
				return 0
			}
			fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			return 0
		}

		line.AppendHistory(trimmed)

		if strings.HasPrefix(trimmed, ":") {
			replCommand(eng, bindings, trimmed)
			continue
		}

		if name, value, ok := parseAssignment(trimmed); ok {
			bindings[name] = value
			continue
		}

		result, err := eng.Evaluate(trimmed, bindings)
		if err != nil {
			printReplError(err)
			continue
		}
		fmt.Println(strconv.FormatFloat(result, 'g', -1, 64))
	}
}

func replCommand(eng *runtime.Engine, bindings map[string]float64, cmd string) {
	switch {
	case cmd == ":help" || cmd == ":h" || cmd == ":?":
		fmt.Println("REPL commands:")
		fmt.Println("  :help            Show this help")
		fmt.Println("  :vars            List variable bindings")
		fmt.Println("  :clear           Drop all bindings")
		fmt.Println("  :funcs           List callable functions")
		fmt.Println("  :dump <expr>     Show the compiled listing")
		fmt.Println("  exit, quit       Exit the REPL")

	case cmd == ":vars":
		if len(bindings) == 0 {
			fmt.Println("(no bindings)")
			return
		}
		names := make([]string, 0, len(bindings))
		for name := range bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s = %s\n", name, strconv.FormatFloat(bindings[name], 'g', -1, 64))
		}

	case cmd == ":clear":
		for name := range bindings {
			delete(bindings, name)
		}
		fmt.Println("Bindings cleared")

	case cmd == ":funcs":
		fmt.Println(strings.Join(eng.FunctionNames(), ", "))

	case strings.HasPrefix(cmd, ":dump "):
		listing, err := eng.Disassemble(strings.TrimSpace(cmd[len(":dump "):]))
		if err != nil {
			printReplError(err)
			return
		}
		fmt.Print(listing)

	default:
		fmt.Printf("Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// parseAssignment recognizes a 'name = value' binding line. A lone '='
// never appears in expression syntax, so there is no ambiguity with
// '==', '<=' and friends.
func parseAssignment(input string) (string, float64, bool) {
	eq := strings.IndexByte(input, '=')
	if eq <= 0 || eq == len(input)-1 {
		return "", 0, false
	}
	if input[eq+1] == '=' || strings.ContainsAny(input[:eq], "<>!=&|^~?:+-*/%()") {
		return "", 0, false
	}
	name := strings.TrimSpace(input[:eq])
	if !isIdent(name) {
		return "", 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(input[eq+1:]), 64)
	if err != nil {
		return "", 0, false
	}
	return name, value, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func completions(eng *runtime.Engine, bindings map[string]float64, input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	if input[len(input)-1] == ' ' || input[len(input)-1] == '\t' {
		return nil
	}

	start := len(input)
	for start > 0 && isIdentByte(input[start-1]) {
		start--
	}
	partial := input[start:]
	if partial == "" {
		return nil
	}

	words := eng.FunctionNames()
	for name := range bindings {
		words = append(words, name)
	}
	sort.Strings(words)

	var matches []string
	for _, word := range words {
		if strings.HasPrefix(word, partial) {
			matches = append(matches, input[:start]+word)
		}
	}
	return matches
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '$'
}

func printReplError(err error) {
	if ce, ok := err.(*compiler.CompileError); ok {
		fmt.Println(diagnostics.FormatDiagnostics(ce.Diagnostics, true))
		return
	}
	fmt.Println(err.Error())
}

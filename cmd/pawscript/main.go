// Command pawscript runs PawScript source files or an interactive REPL,
// mirroring yaegi's own cmd/yaegi shape: a thin flag-parsing driver over
// the interpreter package, with nothing but glue living here.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/mod/semver"

	"github.com/pawscript-lang/pawscript/interp"
)

// version is overwritten at build time via -ldflags "-X main.version=...".
var version = "v0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pawscript", flag.ContinueOnError)
	file := fs.String("f", "", "run the script at path (\"-\" reads stdin)")
	interactive := fs.Bool("i", false, "start an interactive REPL")
	showVersion := fs.Bool("version", false, "print the interpreter version")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		v := version
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		fmt.Println(semver.Canonical(v))
		return 0
	}

	c := interp.New(interp.Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})

	switch {
	case *file != "":
		return runFile(c, *file)
	case *interactive || fs.NArg() == 0:
		return runREPL(c)
	default:
		fmt.Fprintln(os.Stderr, "pawscript: no script given; use -f or -i")
		return 2
	}
}

func runFile(c *interp.Context, path string) int {
	var err error
	if path == "-" {
		var src []byte
		src, err = io.ReadAll(os.Stdin)
		if err == nil {
			err = c.Run(string(src), "<stdin>")
		}
	} else {
		err = c.RunFile(path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runREPL drives an interactive session over a readline.Instance, buffering
// input across lines until braces, brackets, parens and string literals all
// close: PawScript statements end in ';' or '}' rather than being delimited
// by newline-sensitive grammar, so a single unterminated line is ordinary,
// not a syntax error worth reporting immediately.
func runREPL(c *interp.Context) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pawscript> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rl.Close()

	var buf strings.Builder
	depth := 0
	var quote rune
	escaped := false
	lineNo := 0

	for {
		prompt := "pawscript> "
		if buf.Len() > 0 {
			prompt = "........> "
		}
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buf.Reset()
			depth = 0
			quote = 0
			escaped = false
			continue
		}
		if err == io.EOF {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		depth, quote, escaped = scanDepth(line, depth, quote, escaped)

		if depth > 0 || quote != 0 {
			continue
		}

		src := buf.String()
		buf.Reset()
		if strings.TrimSpace(src) == "" {
			continue
		}
		lineNo++
		if err := c.Run(src, fmt.Sprintf("<repl:%d>", lineNo)); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// scanDepth updates the running bracket-depth and quote state across one
// more line of REPL input.
func scanDepth(line string, depth int, quote rune, escaped bool) (int, rune, bool) {
	for _, r := range line {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'':
			quote = r
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		}
	}
	return depth, quote, escaped
}

func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return dir + "/pawscript_history"
}

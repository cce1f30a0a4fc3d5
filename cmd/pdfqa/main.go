package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"pdfqa/internal/app"
	"pdfqa/internal/config"
	"pdfqa/internal/pdf"
	"pdfqa/internal/tui"
	"pdfqa/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var plain bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/pdfqa/config.yaml if not provided)")
	flag.BoolVar(&plain, "plain", false, "Use a line-based prompt instead of the full-screen UI")
	flag.Parse()
	if flag.NArg() > 1 {
		fmt.Println("Usage: pdfqa [--config=config.yaml] [--plain] [file.pdf]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The full-screen UI owns the terminal, so fallback notices are only logged in plain mode.
	logger := log.New(io.Discard, "", 0)
	if plain {
		logger = log.Default()
	}
	agent, err := app.NewAgent(cfg, logger)
	if err != nil {
		log.Fatalf("llm init failed: %v", err)
	}
	indexer, err := app.NewIndexer(cfg)
	if err != nil {
		log.Fatalf("indexer init failed: %v", err)
	}

	in := bufio.NewReader(os.Stdin)
	path := flag.Arg(0)
	if path == "" {
		path = promptPath(in, cfg.CLI.DefaultPDF)
	}

	text, err := pdf.ExtractFile(path)
	if err != nil {
		log.Fatalf("extract failed: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		log.Fatalf("no extractable text in %s", path)
	}
	doc, err := indexer.IndexDocument(path, text)
	if err != nil {
		log.Fatalf("index failed: %v", err)
	}

	if plain {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		chatLoop(ctx, in, os.Stdout, agent, doc.Store, doc.Summary)
		return
	}

	m := tui.New(agent, doc.Store, filepath.Base(path), doc.Summary)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

// promptPath asks for a PDF path until one names an existing file.
func promptPath(in *bufio.Reader, def string) string {
	for {
		if def != "" {
			fmt.Printf("Path to PDF [%s]: ", def)
		} else {
			fmt.Print("Path to PDF: ")
		}
		line, err := in.ReadString('\n')
		p := strings.Trim(strings.TrimSpace(line), `"'`)
		if p == "" {
			p = def
		}
		if p != "" {
			if info, statErr := os.Stat(p); statErr == nil && !info.IsDir() {
				return p
			}
			fmt.Printf("File not found: %s\n", p)
		}
		if err != nil {
			log.Fatalf("no PDF given: %v", err)
		}
	}
}

// answerer is the part of the QA agent the plain loop needs.
type answerer interface {
	Answer(ctx context.Context, question string, store vectorstore.Storage) (string, error)
}

// readLines delivers input lines until EOF, then closes the channel. The
// goroutine outlives ctx only while it is blocked on a read.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	r := bufio.NewReader(in)
	go func() {
		defer close(lines)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// chatLoop prompts for questions until exit/quit, EOF or ctx is cancelled.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, agent answerer, store vectorstore.Storage, summary string) {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	if summary != "" {
		fmt.Fprintln(out, summary)
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "Ask questions about the PDF. Type 'exit' or 'quit' to stop.")
	lines := readLines(ctx, in)
	for {
		fmt.Fprint(out, boldGreen("You: "))
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nShutting down...")
			return
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			return
		}
		q := strings.TrimSpace(line)
		if q == "" {
			continue
		}
		lower := strings.ToLower(q)
		if lower == "exit" || lower == "quit" {
			return
		}
		answer, err := agent.Answer(ctx, q, store)
		switch {
		case ctx.Err() != nil:
			fmt.Fprintln(out, "\nShutting down...")
			return
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		default:
			fmt.Fprintf(out, "%s %s\n\n", boldCyan("AI:"), answer)
		}
	}
}
